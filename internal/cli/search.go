package cli

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/render"
)

var chartPath string

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return 0, eris.Errorf("invalid year %q", s)
	}
	return y, nil
}

var searchCmd = &cobra.Command{
	Use:   "search <company> <year>",
	Short: "Show a company's indicators and targets for one year",
	Long: `Fetch every data point a company reported for a year.

Numeric indicators are drawn as bars; indicators whose name ends in
"target" are listed as textual targets. Use --chart to also write a PNG.

Example:
  csrlens search "3M Company" 2022
  csrlens search Acme 2023 --chart acme.png`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := args[0]
		year, err := parseYear(args[1])
		if err != nil {
			return err
		}

		sess := dashboard.NewSession(newClient())
		sess.SelectCompany(company)
		sess.SelectYear(year)
		st := sess.RunSearch(cmd.Context(), company, year)

		rememberLast(cmd, company, year)

		if chartPath != "" {
			png, err := chart.IndicatorBars(fmt.Sprintf("%s %d", company, year), st.IndicatorChart, chartSize())
			if err != nil {
				return err
			}
			if err := writeFile(chartPath, png); err != nil {
				return err
			}
		}

		out := struct {
			Company string                 `json:"company"`
			Year    int                    `json:"year"`
			Chart   []dashboard.ChartPoint `json:"chart"`
			Targets []dashboard.TargetItem `json:"targets"`
		}{company, year, st.IndicatorChart, st.Targets}
		return emit(cmd.OutOrStdout(), out, render.SearchResult(styles, st))
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend <company> <indicator>",
	Short: "Show one indicator's values over the years",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		company, indicator := args[0], args[1]

		sess := dashboard.NewSession(newClient())
		sess.SelectCompany(company)
		st := sess.SelectIndicator(cmd.Context(), indicator)

		if chartPath != "" {
			unit := ""
			if len(st.Trend) > 0 {
				unit = st.Trend[0].Unit
			}
			png, err := chart.Trend(company+": "+indicator, unit, st.Trend, chartSize())
			if err != nil {
				return err
			}
			if err := writeFile(chartPath, png); err != nil {
				return err
			}
		}
		return emit(cmd.OutOrStdout(), st.Trend, render.Trend(styles, indicator, st.Trend))
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <company> <year> <indicator>",
	Short: "Show the report page and excerpt an indicator value came from",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := parseYear(args[1])
		if err != nil {
			return err
		}

		sess := dashboard.NewSession(newClient())
		sess.SelectCompany(args[0])
		sess.SelectYear(year)
		d := sess.FetchSourceDetail(cmd.Context(), args[2])
		return emit(cmd.OutOrStdout(), d, render.Source(styles, d))
	},
}

// rememberLast records the company and year for later select/export commands
func rememberLast(cmd *cobra.Command, company string, year int) {
	st, err := openStore(cmd.Context())
	if err != nil {
		zap.L().Warn("cli: could not open selection store", zap.Error(err))
		return
	}
	defer st.Close()
	if err := st.SaveLast(cmd.Context(), company, year); err != nil {
		zap.L().Warn("cli: could not save last search", zap.Error(err))
	}
}

func init() {
	searchCmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG bar chart to this path")
	trendCmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG line chart to this path")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(sourceCmd)
}
