package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Report represents one CSR report record published by the data API
type Report struct {
	Security      string `json:"security"`                 // Company/ticker identifier (join key)
	ReportYear    int    `json:"report_year"`              // Reporting year
	IndicatorName string `json:"indicator_name,omitempty"` // Indicator the report row belongs to
	ReportURL     string `json:"report_url"`               // Link to the PDF or landing page
}

// ID returns a stable identifier for the report.
// Two records with the same security, year and indicator share an ID even if
// their URLs differ.
func (r Report) ID() string {
	h := sha256.New()
	h.Write([]byte(r.Security))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.Itoa(r.ReportYear)))
	h.Write([]byte{'|'})
	h.Write([]byte(r.IndicatorName))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// CompanyMatch is a single hit from the company lookup endpoint
type CompanyMatch struct {
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker,omitempty"`
	ISIN        string `json:"isin,omitempty"`
}

// Token encodes the match the way selections are submitted: name|ticker|isin
func (m CompanyMatch) Token() string {
	return m.CompanyName + "|" + m.Ticker + "|" + m.ISIN
}

// Label is the display form used in result lists
func (m CompanyMatch) Label() string {
	if m.Ticker == "" {
		return m.CompanyName
	}
	return m.CompanyName + " (" + m.Ticker + ")"
}
