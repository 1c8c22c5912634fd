package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Number
	}{
		{"integer", `120`, NewNumber(120)},
		{"float", `-3.5`, NewNumber(-3.5)},
		{"numeric string", `"42.1"`, NewNumber(42.1)},
		{"thousands separator", `"1,250"`, NewNumber(1250)},
		{"null", `null`, Number{}},
		{"text", `"50% by 2030"`, Number{}},
		{"bool", `true`, Number{}},
		{"empty string", `""`, Number{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNumber_MissingField(t *testing.T) {
	var dp DataPoint
	require.NoError(t, json.Unmarshal([]byte(`{"security":"Acme","indicator_name":"Water Usage"}`), &dp))
	assert.False(t, dp.IsNumeric())
}

func TestNumber_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NewNumber(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(out))
}

func TestFlexString_Unmarshal(t *testing.T) {
	var ex SourceExcerpt
	require.NoError(t, json.Unmarshal([]byte(`{"page":12,"text":"Scope 1 fell"}`), &ex))
	assert.Equal(t, FlexString("12"), ex.Page)

	require.NoError(t, json.Unmarshal([]byte(`{"page":"iv","text":""}`), &ex))
	assert.Equal(t, FlexString("iv"), ex.Page)

	require.NoError(t, json.Unmarshal([]byte(`{"page":null}`), &ex))
	assert.Equal(t, FlexString(""), ex.Page)
}

func TestDataPoint_IsTarget(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Water Target", true},
		{"Net Zero TARGET ", true},
		{"emissions_target", true},
		{"Water Usage", false},
		{"Targeted Spend", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DataPoint{IndicatorName: tt.name}.IsTarget())
		})
	}
}

func TestReport_ID(t *testing.T) {
	a := Report{Security: "Acme", ReportYear: 2022, IndicatorName: "Scope 1", ReportURL: "https://a/1.pdf"}
	b := Report{Security: "Acme", ReportYear: 2022, IndicatorName: "Scope 1", ReportURL: "https://mirror/1.pdf"}
	c := Report{Security: "Acme", ReportYear: 2021, IndicatorName: "Scope 1"}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Len(t, a.ID(), 16)
}

func TestCompanyMatch_Token(t *testing.T) {
	m := CompanyMatch{CompanyName: "3M Company", Ticker: "MMM", ISIN: "US88579Y1010"}
	assert.Equal(t, "3M Company|MMM|US88579Y1010", m.Token())
	assert.Equal(t, "3M Company (MMM)", m.Label())
	assert.Equal(t, "Acme", CompanyMatch{CompanyName: "Acme"}.Label())
}
