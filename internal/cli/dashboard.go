package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/export"
	"github.com/ppiankov/csrlens/internal/server"
	"github.com/ppiankov/csrlens/internal/store"
	"github.com/ppiankov/csrlens/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Search companies, pick a year, inspect indicators, follow trends,
read source excerpts and select reports for export, all in the terminal.
The last company, year and selection are restored on start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sess := dashboard.NewSession(newClient())
		company, year, err := st.LoadLast(ctx)
		if err != nil {
			return err
		}
		if company != "" {
			saved, err := st.ListReports(ctx)
			if err != nil {
				return err
			}
			sess.Restore(company, year, saved)
		}

		m := tui.New(ctx, sess, tui.Options{
			Debounce:   cfg.Dashboard.Debounce,
			Downloader: &export.FileDownloader{Dir: cfg.Output.Dir},
			OnChange:   persistSelection(ctx, st),
		})
		return tui.Run(m)
	},
}

// persistSelection mirrors dashboard changes into the store
func persistSelection(ctx context.Context, st *store.Store) func(dashboard.State) {
	return func(s dashboard.State) {
		if s.SelectedCompany == "" {
			return
		}
		if err := st.SaveLast(ctx, s.SelectedCompany, s.SelectedYear); err != nil {
			zap.L().Warn("cli: save last selection", zap.Error(err))
			return
		}
		if _, err := st.ClearReports(ctx); err != nil {
			zap.L().Warn("cli: sync selection", zap.Error(err))
			return
		}
		for _, r := range dashboard.SelectedReportList(s) {
			if err := st.AddReport(ctx, r); err != nil {
				zap.L().Warn("cli: sync selection", zap.Error(err))
				return
			}
		}
	}
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dashboard views as JSON for a browser front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg := cfg.Server
		if serveAddr != "" {
			scfg.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(newClient(), scfg, chartSize()).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
}
