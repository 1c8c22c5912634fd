// Probe program that calls every CSR data API endpoint once and reports
// what came back. Useful when pointing csrlens at a new backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "CSR data API base URL")
	flag.Parse()

	fmt.Printf("=== CSR data API probe: %s ===\n\n", *baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := api.NewClient(*baseURL, api.WithRetries(1))
	failed := 0
	check := func(name string, err error, detail string) {
		if err != nil {
			failed++
			fmt.Printf("  ✗ %-20s %v\n", name, err)
			return
		}
		fmt.Printf("  ✓ %-20s %s\n", name, detail)
	}

	reports, err := client.Reports(ctx, api.ReportQuery{})
	companies := dashboard.CompanyList(reports)
	check("GET /reports", err, fmt.Sprintf("%d reports, %d companies", len(reports), len(companies)))

	indicators, err := client.Indicators(ctx)
	check("GET /indicators", err, fmt.Sprintf("%d indicators, %d themes", len(indicators), len(dashboard.GroupByTheme(indicators))))

	if len(companies) > 0 {
		company := companies[0]
		years := dashboard.AvailableYears(reports, company)
		year := years[len(years)-1]

		points, err := client.SearchData(ctx, api.DataQuery{Security: company, Year: year})
		chart, targets := dashboard.Partition(points)
		check("GET /data/search", err, fmt.Sprintf("%s %d: %d points, %d charted, %d targets",
			company, year, len(points), len(chart), len(targets)))

		matches, err := client.SearchCompanies(ctx, firstWord(company))
		check("GET /api/search_companies", err, fmt.Sprintf("%d matches", len(matches)))

		resp, err := client.CompareData(ctx, model.CompareRequest{
			CompanyIDs: []string{company},
			ChartType:  string(model.ChartLine),
		})
		detail := ""
		if err == nil {
			cc := dashboard.BuildCompareChart(resp, model.ChartLine, "probe")
			detail = fmt.Sprintf("%d series over %d years", len(cc.Datasets), len(cc.Labels))
		}
		check("POST /api/compare_data", err, detail)
	} else {
		fmt.Println("  - no companies, skipping data and legacy endpoints")
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("=== %d endpoint(s) failed ===\n", failed)
		os.Exit(1)
	}
	fmt.Println("=== All endpoints responded ===")
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
