// Package config loads dispatchctl settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dispatch-dashboard/components/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
	"github.com/goliatone/go-dispatch-dashboard/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g. DISPATCH_DATA_PATH.
const EnvPrefix = "DISPATCH"

// Chart cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Addr        string `yaml:"addr" split_words:"true"`
	BasePath    string `yaml:"base_path" split_words:"true"`
	MetricsAddr string `yaml:"metrics_addr" split_words:"true"`
	Locale      string `yaml:"locale" split_words:"true"`
	DeltaScope  string `yaml:"delta_scope" split_words:"true"`
	// LayoutFile points at an optional area/widget manifest.
	LayoutFile string `yaml:"layout_file" split_words:"true"`

	Data  DataConfig     `yaml:"data" split_words:"true"`
	Cache CacheConfig    `yaml:"cache" split_words:"true"`
	Chart ChartConfig    `yaml:"chart" split_words:"true"`
	Log   logging.Config `yaml:"log" split_words:"true"`
}

// DataConfig locates the spreadsheet.
type DataConfig struct {
	Path     string        `yaml:"path" split_words:"true"`
	Sheet    string        `yaml:"sheet" split_words:"true"`
	CacheTTL time.Duration `yaml:"cache_ttl" split_words:"true"`
}

// CacheConfig selects the chart render cache.
type CacheConfig struct {
	Backend     string        `yaml:"backend" split_words:"true"`
	RedisAddr   string        `yaml:"redis_addr" split_words:"true"`
	RedisPrefix string        `yaml:"redis_prefix" split_words:"true"`
	ChartTTL    time.Duration `yaml:"chart_ttl" split_words:"true"`
}

// ChartConfig tunes the release bar chart. Empty values keep the renderer
// defaults.
type ChartConfig struct {
	Height string `yaml:"height" split_words:"true"`
	Theme  string `yaml:"theme" split_words:"true"`
}

// Default returns the settings used when neither file nor environment say
// otherwise.
func Default() Config {
	return Config{
		Addr:        ":8080",
		BasePath:    "/dispatch",
		MetricsAddr: ":9090",
		Locale:      dashboard.DefaultLocale,
		DeltaScope:  string(dispatch.DeltaScopeFleet),
		Data: DataConfig{
			Path:     "test_vipuskall.xlsx",
			CacheTTL: 10 * time.Minute,
		},
		Cache: CacheConfig{
			Backend:  CacheMemory,
			ChartTTL: dashboard.DefaultChartCacheTTL,
		},
		Log: logging.Default(),
	}
}

// Load applies the YAML file at path (optional) over Default, then the
// DISPATCH_* environment, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer file.Close()
		if err := decode(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("config: addr is required"))
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		errs = append(errs, fmt.Errorf("config: base_path %q must start with /", c.BasePath))
	}
	if strings.TrimSpace(c.Data.Path) == "" {
		errs = append(errs, errors.New("config: data.path is required"))
	}
	if _, err := dispatch.ParseDeltaScope(c.DeltaScope); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			errs = append(errs, errors.New("config: cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}

// ReportOptions converts the delta scope setting. Call after Validate.
func (c Config) ReportOptions() dispatch.ReportOptions {
	scope, _ := dispatch.ParseDeltaScope(c.DeltaScope)
	return dispatch.ReportOptions{DeltaScope: scope}
}
