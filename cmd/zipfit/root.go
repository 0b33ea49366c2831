package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Zipfit/internal/config"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "zipfit",
	Short: "Rank localities against a household's priorities and budget",
	Long: `zipfit scores a catalog of postal-code localities against user priorities,
picks a budget-aware shortlist and explains it with a couple of insights.

Run "zipfit serve" for the HTTP service or "zipfit rank" to score files offline.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// engineConfig maps the scoring section of the config onto the engine.
func engineConfig(cfg config.ScoringConfig) scoring.EngineConfig {
	ec := scoring.DefaultEngineConfig()
	ec.Categories = scoring.CategoryWeightSet{
		SchoolQuality:    cfg.CategoryWeights.SchoolQuality,
		Safety:           cfg.CategoryWeights.Safety,
		Commute:          cfg.CategoryWeights.Commute,
		Lifestyle:        cfg.CategoryWeights.Lifestyle,
		TaxBurden:        cfg.CategoryWeights.TaxBurden,
		ChildDevelopment: cfg.CategoryWeights.ChildDevelopment,
		TollConvenience:  cfg.CategoryWeights.TollConvenience,
	}
	ec.Budget = scoring.BudgetPolicy{
		PrimaryStretch: cfg.Budget.PrimaryStretch,
		RelaxedStretch: cfg.Budget.RelaxedStretch,
		MinPrimary:     cfg.Budget.MinPrimary,
		MinRelaxed:     cfg.Budget.MinRelaxed,
		Limit:          cfg.Budget.Limit,
	}
	ec.SportsLocalities = cfg.SportsLocalities
	if cfg.UpscalePrice > 0 {
		ec.UpscalePrice = cfg.UpscalePrice
	}
	ec.ParetoEnabled = cfg.ParetoEnabled
	return ec
}
