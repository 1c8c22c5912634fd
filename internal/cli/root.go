package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/config"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/render"
	"github.com/ppiankov/csrlens/internal/store"
)

// version is set at build time with -ldflags "-X github.com/ppiankov/csrlens/internal/cli.version=..."
var version = "0.3.0"

var (
	cfgFile    string
	verbose    bool
	apiURL     string
	noCache    bool
	jsonOutput bool

	// cfg is loaded before every command runs
	cfg *model.Config
	// cfgUsed is the config file that was read, if any
	cfgUsed string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "csrlens",
	Short: "csrlens - browse CSR indicator data from the terminal",
	Long: `csrlens searches companies, filters CSR report metadata and fetches
indicator data points from a CSR data API.

Numeric indicators are charted, textual targets are listed separately,
and any indicator can be followed over the years or traced back to the
report excerpt it was read from. Selected reports can be exported as CSV.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "csrlens v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.csrlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "CSR data API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, used, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if apiURL != "" {
		loaded.API.BaseURL = apiURL
	}
	if noCache {
		loaded.Cache.Enabled = false
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	if err := config.InitLogger(loaded.Log); err != nil {
		return err
	}

	cfg, cfgUsed = loaded, used
	if used != "" {
		zap.L().Debug("cli: using config file", zap.String("path", used))
	}
	return nil
}

func newClient() api.Client {
	return api.FromConfig(cfg)
}

func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func chartSize() chart.Size {
	return chart.Size{Width: cfg.Output.ChartWidth, Height: cfg.Output.ChartHeight}
}

var styles = render.DefaultStyles()

// emit prints v as JSON when --json is set, otherwise the rendered text
func emit(w io.Writer, v any, text string) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := io.WriteString(w, text)
	return err
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	zap.L().Info("cli: wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
