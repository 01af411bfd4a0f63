// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfreytag/diag-engine/internal/catalog"
	"github.com/mfreytag/diag-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the component catalog",
	Long: `Catalog lists the components known to the engine or shows one component
in full: systems, specifications, monitoring points, parts, and the
documented failure modes.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog components",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(engineConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	ids, err := store.ComponentIDs(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-45s  %s\n", "ID", "Name", "Systeme")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, id := range ids {
		rec, err := store.Component(ctx, id)
		if err != nil {
			return err
		}
		systems := make([]string, 0, len(rec.Systems))
		for _, tag := range rec.Systems {
			systems = append(systems, string(tag))
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-45s  %s\n", rec.ID, rec.Name, strings.Join(systems, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d Komponenten\n", len(ids))
	return nil
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [component-id]",
	Short: "Show one component in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(engineConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id := args[0]

	rec, err := store.Component(ctx, id)
	if err != nil {
		// The argument may be a hint rather than an exact ID.
		if matched, ok := store.MatchHint(ctx, id); ok {
			rec, err = store.Component(ctx, matched)
		}
		if err != nil {
			return fmt.Errorf("component %q not found", id)
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printComponent(rec)
	return nil
}

func printComponent(rec types.ComponentRecord) {
	fmt.Printf("%s (%s)\n", rec.Name, rec.ID)

	systems := make([]string, 0, len(rec.Systems))
	for _, tag := range rec.Systems {
		systems = append(systems, string(tag))
	}
	fmt.Printf("Systeme: %s\n", strings.Join(systems, ", "))

	if len(rec.Specs) > 0 {
		fmt.Println("\nKennwerte:")
		keys := make([]string, 0, len(rec.Specs))
		for key := range rec.Specs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  %s: %s\n", key, rec.Specs[key])
		}
	}
	if len(rec.MonitoringPoints) > 0 {
		fmt.Println("\nÜberwachung:")
		for _, point := range rec.MonitoringPoints {
			fmt.Printf("  - %s\n", point)
		}
	}
	if len(rec.Parts) > 0 {
		fmt.Println("\nErsatzteile:")
		for _, part := range rec.Parts {
			fmt.Printf("  - %s\n", part)
		}
	}
	if len(rec.CommonFailures) > 0 {
		fmt.Println("\nBekannte Fehlerbilder:")
		for _, failure := range rec.CommonFailures {
			fmt.Printf("  - %s\n", failure.Description)
			fmt.Printf("    Symptome: %s\n", strings.Join(failure.Symptoms, "; "))
		}
	}
}

func init() {
	catalogShowCmd.Flags().Bool("json", false, "output the component as JSON")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
