package model

import "strings"

// TargetSuffix marks indicators whose values are textual commitments
const TargetSuffix = "target"

// DataPoint is one indicator reading for a company and year
type DataPoint struct {
	Security          string          `json:"security"`
	ReportYear        int             `json:"report_year"`
	IndicatorName     string          `json:"indicator_name"`
	ValueRaw          FlexString      `json:"value_raw,omitempty"`          // Text as it appears in the report
	ValueStandardized Number          `json:"value_standardized"`           // Normalized numeric reading, may be null
	UnitStandardized  string          `json:"unit_standardized,omitempty"`  // Unit of ValueStandardized
	SourceExcerpt     []SourceExcerpt `json:"source_excerpt,omitempty"`     // Supporting text snippets
	PDFPage           FlexString      `json:"pdf_page,omitempty"`           // Page the value was read from
}

// SourceExcerpt is a snippet of report text backing a data point
type SourceExcerpt struct {
	Page FlexString `json:"page"`
	Text string     `json:"text"`
}

// IsTarget reports whether the point is a forward-looking textual target
func (d DataPoint) IsTarget() bool {
	name := strings.ToLower(strings.TrimSpace(d.IndicatorName))
	return strings.HasSuffix(name, TargetSuffix)
}

// IsNumeric reports whether the point carries a usable standardized value
func (d DataPoint) IsNumeric() bool {
	return d.ValueStandardized.Valid
}
