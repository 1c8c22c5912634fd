package model

import "time"

// Config holds the full csrlens configuration
type Config struct {
	API          APIConfig          `yaml:"api" mapstructure:"api"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Dashboard    DashboardConfig    `yaml:"dashboard" mapstructure:"dashboard"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the CSR data API client
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Retries      int           `yaml:"retries" mapstructure:"retries"` // 0 = fail on first error
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// RateLimitingConfig throttles outbound API calls per host
type RateLimitingConfig struct {
	RequestsPerSecond float64          `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int              `yaml:"burst_size" mapstructure:"burst_size"`
	Hosts             []HostRateConfig `yaml:"hosts,omitempty" mapstructure:"hosts"` // Per-host overrides
}

// HostRateConfig overrides the rate limit for one API host (host[:port])
type HostRateConfig struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size,omitempty" mapstructure:"burst_size"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// StoreConfig configures the local selection database
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures exported files
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	ChartWidth  int    `yaml:"chart_width" mapstructure:"chart_width"`
	ChartHeight int    `yaml:"chart_height" mapstructure:"chart_height"`
}

// DashboardConfig configures the interactive dashboard
type DashboardConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// ServerConfig configures the JSON view server
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:8000",
			Timeout:      30 * time.Second,
			UserAgent:    "csrlens/0.3 (+https://github.com/ppiankov/csrlens)",
			MaxBodyBytes: 20_000_000,
			Retries:      0,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 10,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Store: StoreConfig{
			Path: "",
		},
		Output: OutputConfig{
			Dir:         ".",
			ChartWidth:  1024,
			ChartHeight: 512,
		},
		Dashboard: DashboardConfig{
			Debounce: 300 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8090",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
