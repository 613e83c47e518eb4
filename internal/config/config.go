package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Page namespaces.
const (
	PageLeaderboard   = "l"
	PageCounterPicker = "cc"
	PagePerformance   = "cp"
)

// Storage kinds.
const (
	StorageDataLake = "datalake"
	StorageDir      = "dir"
)

// DefaultConfigPath is where the CLI looks for its config file.
var DefaultConfigPath = filepath.Join(".aoedash", "config.yaml")

// Config holds all aoedash configuration.
type Config struct {
	Name string `yaml:"name"`

	// Where snapshots come from
	Storage StorageConfig `yaml:"storage"`

	// Per page namespace source paths
	Pages map[string]PageConfig `yaml:"pages"`

	// Local fallback copy of the last good snapshot
	Cache CacheConfig `yaml:"cache"`

	// Render loop limits
	Render RenderConfig `yaml:"render"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal dashboard
	UI UIConfig `yaml:"ui"`

	// Tracing
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig configures the snapshot source.
type StorageConfig struct {
	Kind      string `yaml:"kind"`      // datalake, dir
	Account   string `yaml:"account"`   // storage account name
	Container string `yaml:"container"` // filesystem (container) name
	Endpoint  string `yaml:"endpoint"`  // overrides https://{account}.dfs.core.windows.net
	Dir       string `yaml:"dir"`       // root for kind=dir
	Timeout   string `yaml:"timeout"`   // per download
	Prefetch  bool   `yaml:"prefetch"`  // download every page at startup
	Watch     bool   `yaml:"watch"`     // kind=dir: reload on file change
}

// PageConfig configures one dashboard page.
type PageConfig struct {
	Source string `yaml:"source"`
}

// CacheConfig configures the sqlite snapshot cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	MaxAge  string `yaml:"max_age"`
}

// RenderConfig configures the render loop driver.
type RenderConfig struct {
	MaxPasses int `yaml:"max_passes"`
}

// UIConfig configures the terminal dashboard.
type UIConfig struct {
	Theme    string `yaml:"theme"`     // auto, dark, light
	ChartDir string `yaml:"chart_dir"` // where chart exports are written
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"` // OTLP/HTTP endpoint, empty disables tracing
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "aoedash",

		Storage: StorageConfig{
			Kind:      StorageDataLake,
			Account:   "jonoaoedlext",
			Container: "dev",
			Dir:       "data",
			Timeout:   "60s",
			Prefetch:  true,
		},

		Pages: map[string]PageConfig{
			PageLeaderboard:   {Source: "consumption/vw_leaderboard_analysis.csv.gz"},
			PageCounterPicker: {Source: "consumption/vw_opponent_civ_analysis.csv.gz"},
			PagePerformance:   {Source: "consumption/vw_civ_performance_analysis.csv.gz"},
		},

		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".aoedash", "snapshots.db"),
			MaxAge:  "168h",
		},

		Render: RenderConfig{
			MaxPasses: 4,
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			File:      filepath.Join(".aoedash", "logs", "aoedash.log"),
			DebugMode: false,
		},

		UI: UIConfig{
			Theme:    "auto",
			ChartDir: ".",
		},

		Telemetry: TelemetryConfig{
			ServiceName: "aoedash",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if kind := os.Getenv("AOEDASH_STORAGE"); kind != "" {
		c.Storage.Kind = kind
	}
	if account := os.Getenv("AOEDASH_ACCOUNT"); account != "" {
		c.Storage.Account = account
	}
	if container := os.Getenv("AOEDASH_CONTAINER"); container != "" {
		c.Storage.Container = container
	}
	if endpoint := os.Getenv("AOEDASH_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
	}
	if dir := os.Getenv("AOEDASH_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
		if os.Getenv("AOEDASH_STORAGE") == "" {
			c.Storage.Kind = StorageDir
		}
	}

	if path := os.Getenv("AOEDASH_CACHE"); path != "" {
		c.Cache.Path = path
	}

	if v := os.Getenv("AOEDASH_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}

	if endpoint := os.Getenv("AOEDASH_OTEL_ENDPOINT"); endpoint != "" {
		c.Telemetry.Endpoint = endpoint
	}
}

// GetStorageTimeout returns the download timeout as a duration.
func (c *Config) GetStorageTimeout() time.Duration {
	d, err := time.ParseDuration(c.Storage.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetCacheMaxAge returns how old a cached snapshot may be before it is
// ignored. Zero means no limit.
func (c *Config) GetCacheMaxAge() time.Duration {
	if c.Cache.MaxAge == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil || d < 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// PageSource returns the configured source path of a page namespace.
func (c *Config) PageSource(page string) (string, bool) {
	p, ok := c.Pages[page]
	if !ok || p.Source == "" {
		return "", false
	}
	return p.Source, true
}

// PageNames returns the configured page namespaces, sorted.
func (c *Config) PageNames() []string {
	names := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Kind {
	case StorageDataLake:
		if c.Storage.Account == "" && c.Storage.Endpoint == "" {
			return fmt.Errorf("storage account not configured (set storage.account or AOEDASH_ACCOUNT)")
		}
		if c.Storage.Container == "" {
			return fmt.Errorf("storage container not configured (set storage.container or AOEDASH_CONTAINER)")
		}
	case StorageDir:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage dir not configured (set storage.dir or AOEDASH_DATA_DIR)")
		}
	default:
		return fmt.Errorf("invalid storage kind: %s (valid: %v)", c.Storage.Kind, []string{StorageDataLake, StorageDir})
	}

	if len(c.Pages) == 0 {
		return fmt.Errorf("no pages configured")
	}
	for _, name := range c.PageNames() {
		if c.Pages[name].Source == "" {
			return fmt.Errorf("page %q has no source", name)
		}
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache enabled but cache.path is empty")
	}
	if c.Render.MaxPasses < 0 {
		return fmt.Errorf("render.max_passes must not be negative")
	}

	return nil
}
