package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the embedding provider, cache and chunking settings.

Settings are stored as TOML in the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a settings key",
	Long: `Sets one settings key and saves the configuration file.

Available keys:
  ollama.url            embedding provider base URL
  ollama.model          embedding model name
  ollama.dimensions     expected embedding dimensions
  cache.capacity        embedding cache entry capacity
  chunking.strategy     chunking preset: default, technical or narrative`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settings == nil {
		return errors.New("settings not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Ollama]")
	cmd.Printf("  URL: %s\n", settings.Ollama.URL)
	cmd.Printf("  Model: %s\n", settings.Ollama.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Ollama.Dimensions)
	cmd.Printf("  Timeout: %s\n", settings.OllamaTimeout())
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Capacity: %d entries\n", settings.Cache.Capacity)
	cmd.Printf("  Time to live: %dm\n", settings.Cache.TTLMinutes)
	cmd.Printf("  Time to idle: %dm\n", settings.Cache.TTIMinutes)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Strategy: %s\n", settings.Chunking.Strategy)
	if settings.Chunking.SimilarityThreshold > 0 {
		cmd.Printf("  Similarity threshold: %.2f\n", settings.Chunking.SimilarityThreshold)
	}
	if settings.Chunking.Percentile > 0 {
		cmd.Printf("  Percentile: %.0f\n", settings.Chunking.Percentile)
	}
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  Workers: %d\n", settings.Indexing.Workers)
	cmd.Printf("  Extensions: %s\n", formatList(settings.Indexing.Extensions))

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settings == nil {
		return errors.New("settings not configured")
	}

	key, value := args[0], args[1]
	switch key {
	case "ollama.url":
		settings.Ollama.URL = value
	case "ollama.model":
		settings.Ollama.Model = value
	case "ollama.dimensions":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid dimensions %q", value)
		}
		settings.Ollama.Dimensions = n
	case "cache.capacity":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid capacity %q", value)
		}
		settings.Cache.Capacity = n
	case "chunking.strategy":
		if _, err := domain.ChunkingPreset(value); err != nil {
			return fmt.Errorf("invalid strategy %q", value)
		}
		settings.Chunking.Strategy = value
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}

	if err := settings.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}
