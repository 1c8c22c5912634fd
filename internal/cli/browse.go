package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/render"
)

var companiesCmd = &cobra.Command{
	Use:   "companies [term]",
	Short: "List companies, optionally filtered by name",
	Long: `List every company that has CSR reports, with the years reported.
A term keeps only companies whose name contains it (case-insensitive).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := newClient().Reports(cmd.Context(), api.ReportQuery{})
		if err != nil {
			return err
		}

		names := dashboard.CompanyList(reports)
		if len(args) == 1 {
			names = dashboard.MatchCompanies(names, args[0])
		}

		type row struct {
			Company string `json:"company"`
			Years   []int  `json:"years"`
		}
		rows := make([]row, 0, len(names))
		t := render.NewTable("", "Company", "Years")
		for _, n := range names {
			years := dashboard.AvailableYears(reports, n)
			rows = append(rows, row{Company: n, Years: years})
			t.AddRow(n, joinInts(years))
		}

		text := t.View(styles)
		if len(names) == 0 {
			text = render.Companies(styles, nil)
		}
		return emit(cmd.OutOrStdout(), rows, text)
	},
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators [term]",
	Short: "Show the indicator catalog grouped by theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		var (
			catalog []model.Indicator
			err     error
		)
		if len(args) == 1 {
			catalog, err = client.SearchIndicators(cmd.Context(), args[0])
		} else {
			catalog, err = client.Indicators(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(args) == 1 {
			// the server-side match may be broader than a name substring
			catalog = dashboard.FilterIndicators(catalog, args[0])
		}

		groups := dashboard.GroupByTheme(catalog)
		return emit(cmd.OutOrStdout(), groups, render.Indicators(styles, groups))
	},
}

var (
	reportsCompany string
	reportsYear    int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List report records",
	Long: `List report records, optionally narrowed to one company and/or year.
Reports in the saved selection are marked with '*'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reports, err := newClient().Reports(ctx, api.ReportQuery{Security: reportsCompany, Year: reportsYear})
		if err != nil {
			return err
		}
		reports = dashboard.FilteredReports(reports, reportsCompany, reportsYear)

		selected := map[string]bool{}
		if st, err := openStore(ctx); err != nil {
			zap.L().Warn("cli: selection unavailable", zap.Error(err))
		} else {
			defer st.Close()
			saved, err := st.ListReports(ctx)
			if err != nil {
				return err
			}
			for _, r := range saved {
				selected[r.ID()] = true
			}
		}

		isSelected := func(r model.Report) bool { return selected[r.ID()] }
		return emit(cmd.OutOrStdout(), reports, render.Reports(styles, reports, isSelected))
	},
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func init() {
	reportsCmd.Flags().StringVar(&reportsCompany, "company", "", "only this company")
	reportsCmd.Flags().IntVar(&reportsYear, "year", 0, "only this year")

	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(indicatorsCmd)
	rootCmd.AddCommand(reportsCmd)
}
