package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Zipfit/internal/config"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

var (
	rankLocalitiesPath  string
	rankPreferencesPath string
	rankOverridesPath   string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score localities from JSON files and print the result",
	Long: `Runs the scoring engine offline, without a database or network.

Examples:
  zipfit rank --localities catalog.json --preferences prefs.json
  zipfit rank --localities catalog.json --preferences prefs.json --overrides live.json`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVar(&rankLocalitiesPath, "localities", "", "JSON array of localities (required)")
	rankCmd.Flags().StringVar(&rankPreferencesPath, "preferences", "", "JSON preferences document (required)")
	rankCmd.Flags().StringVar(&rankOverridesPath, "overrides", "", "JSON object of attribute overrides keyed by zip code")
	_ = rankCmd.MarkFlagRequired("localities")
	_ = rankCmd.MarkFlagRequired("preferences")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var localities []*store.Locality
	if err := readJSONFile(rankLocalitiesPath, &localities); err != nil {
		return err
	}
	var prefs scoring.Preferences
	if err := readJSONFile(rankPreferencesPath, &prefs); err != nil {
		return err
	}
	var overrides map[string]store.Attributes
	if rankOverridesPath != "" {
		if err := readJSONFile(rankOverridesPath, &overrides); err != nil {
			return err
		}
	}

	engine := scoring.NewEngine(engineConfig(cfg.Scoring), newLogger(config.LoggingConfig{Level: "error", Format: "text"}))
	result, err := engine.Run(scoring.Request{
		Localities:  localities,
		Preferences: prefs,
		Overrides:   overrides,
	})
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	return writeResult(cmd.OutOrStdout(), result)
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeResult(w io.Writer, result *scoring.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
