package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/csrlens/internal/config"
	"github.com/ppiankov/csrlens/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage csrlens configuration",
	Long: `Manage csrlens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CSRLENS_*, e.g. CSRLENS_API_BASE_URL)
3. Config file (~/.csrlens/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, config file, environment and flags are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgUsed != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", cfgUsed)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config: marshal")
		}
		_, err = cmd.OutOrStdout().Write(yamlData)
		return err
	},
}

var configInitPath string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.csrlens/config.yaml. An existing file is never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := configInitPath
		if configPath == "" {
			dir, err := config.HomeDir()
			if err != nil {
				return err
			}
			configPath = filepath.Join(dir, "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return eris.Errorf("config file already exists: %s\nUse 'csrlens config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return eris.Wrap(err, "config: create directory")
		}

		f, err := os.Create(configPath)
		if err != nil {
			return eris.Wrap(err, "config: create file")
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = eris.Wrap(closeErr, "config: close file")
			}
		}()

		printf := func(format string, a ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# csrlens configuration file\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (CSRLENS_*, '.' becomes '_')\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n")
		printf("#\n")
		printf("# cache.dir and store.path default to ~/.csrlens when left empty.\n")
		printf("# api.retries = 0 fails on the first error; a positive value retries\n")
		printf("# 429 and 5xx responses with exponential backoff.\n")
		printf("# rate_limiting.hosts overrides the limit per API host, e.g.\n")
		printf("#   hosts:\n")
		printf("#     - host: csr-api.example.com\n")
		printf("#       requests_per_second: 2\n")
		printf("#       burst_size: 1\n\n")

		yamlData, mErr := yaml.Marshal(model.DefaultConfig())
		if mErr != nil {
			return eris.Wrap(mErr, "config: marshal")
		}
		if err == nil {
			_, err = f.Write(yamlData)
		}
		if err != nil {
			return eris.Wrap(err, "config: write")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n  csrlens config show\n")
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "write the file here instead of ~/.csrlens/config.yaml")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
