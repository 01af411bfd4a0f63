// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfreytag/diag-engine/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Embed and index the knowledge documents",
	Long: `Seed reads the YAML knowledge documents (technical manuals, defect
records, checklists), embeds every section, and upserts them into the
vector index. Section identifiers are stable, so re-seeding overwrites
existing passages instead of duplicating them.

Use --truncate to drop the existing index content first.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	docsDir, _ := cmd.Flags().GetString("docs")
	truncate, _ := cmd.Flags().GetBool("truncate")
	offline, _ := cmd.Flags().GetBool("offline")

	cfg := engineConfig()
	if docsDir != "" {
		cfg.Seed.DocsDir = docsDir
	}

	provider, index, err := buildStack(cfg, offline)
	if err != nil {
		return err
	}
	if offline {
		fmt.Fprintln(os.Stderr, "Offline-Modus: Index ist flüchtig und dient nur der Dokumentprüfung")
	}

	summary, err := seed.New(provider, index, os.Stdout).Run(context.Background(), cfg.Seed.DocsDir, truncate)
	if err != nil {
		return err
	}
	for _, warning := range summary.Warnings {
		fmt.Fprintf(os.Stderr, "Warnung: %s\n", warning)
	}
	return nil
}

func init() {
	seedCmd.Flags().String("docs", "", "directory of YAML knowledge documents (default: config seed.docs_dir)")
	seedCmd.Flags().Bool("truncate", false, "drop existing index content before seeding")
	seedCmd.Flags().Bool("offline", false, "validate documents against an in-memory index")

	rootCmd.AddCommand(seedCmd)
}
