package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/matzpen-project/matzpen/internal/model"
)

// loadConfig builds the effective configuration: defaults, overridden
// by whatever the config file or MATZPEN_* environment set. The LLM
// API key comes from the environment only.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	intKeys := map[string]*int{
		"extraction.workers":        &cfg.Extraction.Workers,
		"sampling.positive":         &cfg.Sampling.Positive,
		"sampling.negative":         &cfg.Sampling.Negative,
		"sampling.edge":             &cfg.Sampling.Edge,
		"sampling.no_numbers":       &cfg.Sampling.NoNumbers,
		"sampling.non_six_digit":    &cfg.Sampling.NonSixDigit,
		"sampling.missed_six_digit": &cfg.Sampling.MissedSixDigit,
		"llm.max_tokens":            &cfg.LLM.MaxTokens,
	}
	for key, dst := range intKeys {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	stringKeys := map[string]*string{
		"store.path":   &cfg.Store.Path,
		"cache.dir":    &cfg.Cache.Dir,
		"llm.provider": &cfg.LLM.Provider,
		"llm.model":    &cfg.LLM.Model,
		"llm.base_url": &cfg.LLM.BaseURL,
	}
	for key, dst := range stringKeys {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	durationKeys := map[string]*time.Duration{
		"cache.memory_ttl": &cfg.Cache.MemoryTTL,
		"cache.disk_ttl":   &cfg.Cache.DiskTTL,
		"llm.timeout":      &cfg.LLM.Timeout,
	}
	for key, dst := range durationKeys {
		if viper.IsSet(key) {
			*dst = viper.GetDuration(key)
		}
	}

	if viper.IsSet("sampling.seed") {
		cfg.Sampling.Seed = viper.GetInt64("sampling.seed")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("llm.requests_per_minute") {
		cfg.LLM.RequestsPerMinute = viper.GetFloat64("llm.requests_per_minute")
	}
	if viper.IsSet("extraction.rules") {
		_ = viper.UnmarshalKey("extraction.rules", &cfg.Extraction.Rules)
	}
	if viper.IsSet("scoring.weights") {
		_ = viper.UnmarshalKey("scoring.weights", &cfg.Scoring.Weights)
	}

	if key := os.Getenv("MATZPEN_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	cfg.Output.Verbose = verbose
	return cfg
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage matzpen configuration",
	Long: `Manage matzpen configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (MATZPEN_*)
3. Config file (~/.matzpen/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if file := viper.ConfigFileUsed(); file != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", file)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(loadConfig())
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Println(string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.matzpen/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".matzpen")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'matzpen config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		header := `# Matzpen configuration file
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (MATZPEN_*)
#   3. This config file
#   4. Built-in defaults

`
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		if _, err := f.Write(yamlData); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		footer := `
# The LLM API key is read from the environment, never from this file:
#   export MATZPEN_LLM_API_KEY=sk-...
`
		if _, err := f.WriteString(footer); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n  matzpen config show\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
