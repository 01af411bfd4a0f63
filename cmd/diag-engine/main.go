// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the diag-engine CLI: symptom-driven
// vehicle diagnostics over a seeded knowledge base and component catalog.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfreytag/diag-engine/internal/secrets"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the diag-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "diag-engine",
	Short: "Symptom-driven diagnostics for armored vehicles",
	Long: `diag-engine diagnoses vehicle defects from free-text symptom reports.
A report is analyzed against the component catalog and a semantically
indexed knowledge base (technical manuals, defect records), ranked into
root-cause hypotheses, and assembled into a maintenance report with
priority, escalation path, and parts list.

Seed the knowledge base with "seed", inspect the catalog with "catalog",
and run a diagnosis with "diagnose".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; explicit environment wins.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./diag-engine.yaml or ~/.config/diag-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("diag-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "diag-engine"))
		}
	}

	viper.SetEnvPrefix("DIAG_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the stage configuration from viper, with the
// documented defaults filled in.
func engineConfig() types.EngineConfig {
	cfg := types.EngineConfig{
		Embedding: types.EmbeddingConfig{
			BaseURL:   viper.GetString("embedding.base_url"),
			Model:     viper.GetString("embedding.model"),
			APIKey:    secretDefault("openai-api-key", viper.GetString("embedding.api_key")),
			Dimension: viper.GetInt("embedding.dimension"),
			Timeout:   viper.GetDuration("embedding.timeout"),
		},
		Index: types.IndexConfig{
			URL:        viper.GetString("index.url"),
			APIKey:     secretDefault("qdrant-api-key", viper.GetString("index.api_key")),
			Collection: viper.GetString("index.collection"),
			Timeout:    viper.GetDuration("index.timeout"),
		},
		Retriever: types.RetrieverConfig{
			TopK:         viper.GetInt("retriever.top_k"),
			MinScore:     viper.GetFloat64("retriever.min_score"),
			Rerank:       viper.GetBool("retriever.rerank"),
			EmbeddingTTL: viper.GetDuration("retriever.embedding_ttl"),
			ResultTTL:    viper.GetDuration("retriever.result_ttl"),
		},
		Catalog: types.CatalogConfig{
			DBPath:   viper.GetString("catalog.db_path"),
			SeedPath: viper.GetString("catalog.seed_path"),
		},
		Seed: types.SeedConfig{
			DocsDir: viper.GetString("seed.docs_dir"),
		},
	}
	if cfg.Index.URL == "" {
		cfg.Index.URL = "http://localhost:6333"
	}
	return cfg.WithDefaults()
}

// localDimension is the vector size used by offline mode. Offline indexes
// and offline queries must agree on it.
const localDimension = 256

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
