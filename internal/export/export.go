// Package export serialises report selections and search results to CSV.
package export

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/ppiankov/csrlens/internal/model"
)

// DefaultFilename is used when neither company nor year is known
const DefaultFilename = "selected_reports.csv"

type reportRow struct {
	Security      string `csv:"security"`
	ReportYear    int    `csv:"report_year"`
	IndicatorName string `csv:"indicator_name"`
	ReportURL     string `csv:"report_url"`
}

type dataPointRow struct {
	Security          string `csv:"security"`
	ReportYear        int    `csv:"report_year"`
	IndicatorName     string `csv:"indicator_name"`
	ValueRaw          string `csv:"value_raw"`
	ValueStandardized string `csv:"value_standardized"`
	UnitStandardized  string `csv:"unit_standardized"`
	PDFPage           string `csv:"pdf_page"`
	IsTarget          bool   `csv:"is_target"`
}

// EncodeReports renders reports as CSV with a header row.
// An empty slice still produces the header.
func EncodeReports(reports []model.Report) ([]byte, error) {
	rows := make([]reportRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, reportRow{
			Security:      r.Security,
			ReportYear:    r.ReportYear,
			IndicatorName: r.IndicatorName,
			ReportURL:     r.ReportURL,
		})
	}
	if len(rows) == 0 {
		return headerOnly(reportRow{})
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode reports")
	}
	return b, nil
}

// EncodeDataPoints renders raw search results as CSV
func EncodeDataPoints(points []model.DataPoint) ([]byte, error) {
	rows := make([]dataPointRow, 0, len(points))
	for _, p := range points {
		std := ""
		if p.IsNumeric() {
			std = strconv.FormatFloat(p.ValueStandardized.Value, 'f', -1, 64)
		}
		rows = append(rows, dataPointRow{
			Security:          p.Security,
			ReportYear:        p.ReportYear,
			IndicatorName:     p.IndicatorName,
			ValueRaw:          p.ValueRaw.String(),
			ValueStandardized: std,
			UnitStandardized:  p.UnitStandardized,
			PDFPage:           p.PDFPage.String(),
			IsTarget:          p.IsTarget(),
		})
	}
	if len(rows) == 0 {
		return headerOnly(dataPointRow{})
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode data points")
	}
	return b, nil
}

func headerOnly(v any) ([]byte, error) {
	header, err := csvutil.Header(v, "csv")
	if err != nil {
		return nil, eris.Wrap(err, "export: header")
	}
	return []byte(strings.Join(header, ",") + "\n"), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename builds "{company}_{year}.csv" with filesystem-unsafe runs
// collapsed to "_". Missing parts are left out.
func Filename(company string, year int) string {
	parts := make([]string, 0, 2)
	if c := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(company), "_"), "_"); c != "" {
		parts = append(parts, c)
	}
	if year != 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	if len(parts) == 0 {
		return DefaultFilename
	}
	return strings.Join(parts, "_") + ".csv"
}

// FileDownloader writes downloads into Dir
type FileDownloader struct {
	Dir string

	// Written holds the path of the last file written
	Written string
}

// Download writes data to Dir/filename, creating Dir if needed
func (d *FileDownloader) Download(filename string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create %s", dir)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	d.Written = path
	return nil
}
