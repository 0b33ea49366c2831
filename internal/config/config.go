package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Narrator NarratorConfig `yaml:"narrator"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int     `yaml:"port"`
	MetricsPort     int     `yaml:"metrics_port"`
	AdminToken      string  `yaml:"admin_token"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	ShutdownTimeout int     `yaml:"shutdown_timeout_ms"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite
	URL    string `yaml:"url"`
	Path   string `yaml:"path"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type NarratorConfig struct {
	URL       string  `yaml:"url"`
	TimeoutMs int     `yaml:"timeout_ms"`
	RPS       float64 `yaml:"rps"`
	Burst     int     `yaml:"burst"`
}

type CatalogConfig struct {
	RefreshIntervalMs int `yaml:"refresh_interval_ms"`
}

type ScoringConfig struct {
	CategoryWeights  CategoryWeights `yaml:"category_weights"`
	Budget           BudgetConfig    `yaml:"budget"`
	ParetoEnabled    bool            `yaml:"pareto_enabled"`
	SportsLocalities []string        `yaml:"sports_localities"`
	UpscalePrice     float64         `yaml:"upscale_price"`
}

type CategoryWeights struct {
	SchoolQuality    float64 `yaml:"school_quality"`
	Safety           float64 `yaml:"safety"`
	Commute          float64 `yaml:"commute"`
	Lifestyle        float64 `yaml:"lifestyle"`
	TaxBurden        float64 `yaml:"tax_burden"`
	ChildDevelopment float64 `yaml:"child_development"`
	TollConvenience  float64 `yaml:"toll_convenience"`
}

// Sum returns the total of all category weights.
func (w CategoryWeights) Sum() float64 {
	return w.SchoolQuality + w.Safety + w.Commute + w.Lifestyle +
		w.TaxBurden + w.ChildDevelopment + w.TollConvenience
}

type BudgetConfig struct {
	PrimaryStretch float64 `yaml:"primary_stretch"`
	RelaxedStretch float64 `yaml:"relaxed_stretch"`
	MinPrimary     int     `yaml:"min_primary"`
	MinRelaxed     int     `yaml:"min_relaxed"`
	Limit          int     `yaml:"limit"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Catalog.RefreshIntervalMs) * time.Millisecond
}

func (c *Config) NarratorTimeout() time.Duration {
	return time.Duration(c.Narrator.TimeoutMs) * time.Millisecond
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Millisecond
}

// Load reads defaults, then the YAML file at path (if any), then ZIPFIT_*
// environment variables. A .env file in the working directory is loaded into
// the environment first; variables already set win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            8700,
			MetricsPort:     8701,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			ShutdownTimeout: 10000,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "zipfit.db",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Narrator: NarratorConfig{
			TimeoutMs: 3000,
			RPS:       2,
			Burst:     4,
		},
		Catalog: CatalogConfig{
			RefreshIntervalMs: 60000,
		},
		Scoring: ScoringConfig{
			CategoryWeights: CategoryWeights{
				SchoolQuality:    0.20,
				Safety:           0.20,
				Commute:          0.15,
				Lifestyle:        0.15,
				TaxBurden:        0.10,
				ChildDevelopment: 0.15,
				TollConvenience:  0.05,
			},
			Budget: BudgetConfig{
				PrimaryStretch: 1.10,
				RelaxedStretch: 1.20,
				MinPrimary:     3,
				MinRelaxed:     3,
				Limit:          5,
			},
			ParetoEnabled: false,
			UpscalePrice:  750000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if sum := c.Scoring.CategoryWeights.Sum(); sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("scoring.category_weights sum to %.4f, must sum to 1.0", sum)
	}
	if b := c.Scoring.Budget; b.PrimaryStretch < 1 || b.RelaxedStretch < b.PrimaryStretch {
		return fmt.Errorf("scoring.budget stretches must satisfy 1 <= primary <= relaxed")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ZIPFIT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ZIPFIT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ZIPFIT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ZIPFIT_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimitRPS = f
		}
	}
	if v := os.Getenv("ZIPFIT_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("ZIPFIT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ZIPFIT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ZIPFIT_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ZIPFIT_NARRATOR_URL"); v != "" {
		cfg.Narrator.URL = v
	}
	if v := os.Getenv("ZIPFIT_REFRESH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.RefreshIntervalMs = n
		}
	}
	if v := os.Getenv("ZIPFIT_PARETO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.ParetoEnabled = b
		}
	}
	if v := os.Getenv("ZIPFIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ZIPFIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
