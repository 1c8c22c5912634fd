package cli

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/render"
)

var (
	compareType  string
	compareScope string
)

var compareCmd = &cobra.Command{
	Use:   "compare <company>...",
	Short: "Compare companies year by year (legacy endpoint)",
	Long: `Ask the legacy comparison endpoint for per-year values of several
companies and align them on the union of reported years. Years a
company did not report are shown as 0.

Example:
  csrlens compare Acme "3M Company" --scope "Scope 1" --chart compare.png`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ct := model.ChartType(strings.ToLower(compareType))
		if ct != model.ChartLine && ct != model.ChartBar {
			return eris.Errorf("invalid chart type %q (line or bar)", compareType)
		}

		cc, err := dashboard.NewSession(newClient()).Compare(cmd.Context(), args, ct, compareScope)
		if err != nil {
			return err
		}

		if chartPath != "" {
			png, err := chart.Compare(compareScope, cc, chartSize())
			if err != nil {
				return err
			}
			if err := writeFile(chartPath, png); err != nil {
				return err
			}
		}
		return emit(cmd.OutOrStdout(), cc, render.Compare(styles, cc))
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Look up companies by name, ticker or ISIN (legacy endpoint)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, _ := dashboard.NewSession(newClient()).LookupCompanies(cmd.Context(), args[0])
		return emit(cmd.OutOrStdout(), matches, render.CompanyMatches(styles, matches))
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareType, "type", string(model.ChartLine), "chart type: line or bar")
	compareCmd.Flags().StringVar(&compareScope, "scope", "", "scope sent to the endpoint and used in series labels")
	compareCmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG chart to this path")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(lookupCmd)
}
