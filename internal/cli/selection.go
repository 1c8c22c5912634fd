package cli

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/export"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/render"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Manage the saved report selection",
	Long: `The selection is kept in a local SQLite database (store.path) and is
exported as CSV with 'csrlens select export'. Searching a different
company clears it.`,
}

// matchingReports fetches the reports for company/year, narrowed to
// indicator when given
func matchingReports(cmd *cobra.Command, args []string) ([]model.Report, error) {
	year, err := parseYear(args[1])
	if err != nil {
		return nil, err
	}
	reports, err := newClient().Reports(cmd.Context(), api.ReportQuery{Security: args[0], Year: year})
	if err != nil {
		return nil, err
	}
	reports = dashboard.FilteredReports(reports, args[0], year)
	if len(args) == 3 {
		var out []model.Report
		for _, r := range reports {
			if strings.EqualFold(strings.TrimSpace(r.IndicatorName), strings.TrimSpace(args[2])) {
				out = append(out, r)
			}
		}
		reports = out
	}
	if len(reports) == 0 {
		return nil, eris.Errorf("no reports match %s", strings.Join(args, " "))
	}
	return reports, nil
}

var selectAddCmd = &cobra.Command{
	Use:   "add <company> <year> [indicator]",
	Short: "Add reports to the selection",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reports, err := matchingReports(cmd, args)
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveLast(ctx, reports[0].Security, reports[0].ReportYear); err != nil {
			return err
		}
		for _, r := range reports {
			if err := st.AddReport(ctx, r); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Selected %d reports.\n", len(reports))
		return nil
	},
}

var selectRemoveCmd = &cobra.Command{
	Use:   "remove <company> <year> [indicator]",
	Short: "Remove reports from the selection",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reports, err := matchingReports(cmd, args)
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		removed := 0
		for _, r := range reports {
			ok, err := st.RemoveReport(ctx, r)
			if err != nil {
				return err
			}
			if ok {
				removed++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d reports.\n", removed)
		return nil
	},
}

var selectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		reports, err := st.ListReports(cmd.Context())
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), reports, render.Reports(styles, reports, nil))
	},
}

var exportDir string

var selectExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the selection to {company}_{year}.csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		company, year, err := st.LoadLast(ctx)
		if err != nil {
			return err
		}
		reports, err := st.ListReports(ctx)
		if err != nil {
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Output.Dir
		}
		sess := dashboard.NewSession(newClient())
		sess.Restore(company, year, reports)
		dl := &export.FileDownloader{Dir: dir}
		ok, err := sess.ExportSelectedReports(dl)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reports to %s\n", len(reports), dl.Written)
		return nil
	},
}

var selectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.ClearReports(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d reports.\n", n)
		return nil
	},
}

func init() {
	selectExportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default: output.dir)")

	selectCmd.AddCommand(selectAddCmd, selectRemoveCmd, selectListCmd, selectExportCmd, selectClearCmd)
	rootCmd.AddCommand(selectCmd)
}
