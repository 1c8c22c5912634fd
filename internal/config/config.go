// Package config loads csrlens settings and sets up logging.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/csrlens/internal/model"
)

// EnvPrefix is the prefix for environment overrides (CSRLENS_API_BASE_URL, ...)
const EnvPrefix = "CSRLENS"

// Load reads configuration from defaults, the config file and the environment.
// When cfgFile is empty, $HOME/.csrlens/config.yaml is used if it exists.
// It returns the config and the path of the file that was read, if any.
func Load(cfgFile string) (*model.Config, string, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := HomeDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, model.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, "", eris.Wrap(err, "config: read file")
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", eris.Wrap(err, "config: unmarshal")
	}

	if err := resolvePaths(&cfg); err != nil {
		return nil, "", err
	}

	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.user_agent", d.API.UserAgent)
	v.SetDefault("api.max_body_bytes", d.API.MaxBodyBytes)
	v.SetDefault("api.retries", d.API.Retries)
	v.SetDefault("api.http_proxy", d.API.HTTPProxy)
	v.SetDefault("api.https_proxy", d.API.HTTPSProxy)
	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.chart_width", d.Output.ChartWidth)
	v.SetDefault("output.chart_height", d.Output.ChartHeight)
	v.SetDefault("dashboard.debounce", d.Dashboard.Debounce)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// HomeDir returns $HOME/.csrlens
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "config: find home directory")
	}
	return filepath.Join(home, ".csrlens"), nil
}

// resolvePaths fills in cache and store locations left empty
func resolvePaths(cfg *model.Config) error {
	if cfg.Cache.Dir != "" && cfg.Store.Path != "" {
		return nil
	}
	dir, err := HomeDir()
	if err != nil {
		return err
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(dir, "cache")
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dir, "csrlens.db")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg model.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
