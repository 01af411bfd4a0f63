// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfreytag/diag-engine/internal/catalog"
	"github.com/mfreytag/diag-engine/internal/diagnose"
	"github.com/mfreytag/diag-engine/internal/retriever"
	"github.com/mfreytag/diag-engine/internal/seed"
	"github.com/mfreytag/diag-engine/pkg/types"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [symptom description]",
	Short: "Diagnose a symptom report into a maintenance report",
	Long: `Diagnose analyzes a free-text symptom report, gathers evidence from the
knowledge base and the component catalog, ranks root-cause hypotheses, and
prints the assembled maintenance report.

With --offline the pipeline runs fully in-process: deterministic local
embeddings and an in-memory index seeded from the knowledge documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	symptomText := strings.Join(args, " ")
	vehicleID, _ := cmd.Flags().GetString("vehicle")
	componentHint, _ := cmd.Flags().GetString("component")
	offline, _ := cmd.Flags().GetBool("offline")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := engineConfig()
	ctx := context.Background()

	provider, index, err := buildStack(cfg, offline)
	if err != nil {
		return err
	}

	var progress io.Writer = io.Discard
	if verbose {
		progress = os.Stderr
	}

	// Offline mode has no persistent index, so seed the in-memory one from
	// the knowledge documents when they are present.
	if offline {
		if _, statErr := os.Stat(cfg.Seed.DocsDir); statErr == nil {
			if _, err := seed.New(provider, index, progress).Run(ctx, cfg.Seed.DocsDir, false); err != nil {
				return err
			}
		}
	}

	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	search := retriever.New(provider, index, cfg.Retriever)
	engine := diagnose.New(search, store, progress)

	rep, err := engine.Diagnose(ctx, symptomText, vehicleID, componentHint)
	if err != nil {
		return err
	}

	if verbose {
		embStats, resStats := search.EmbedCacheStats(), search.ResultCacheStats()
		fmt.Fprintf(os.Stderr, "Cache: embeddings %d/%d hits, results %d/%d hits\n",
			embStats.Hits, embStats.Hits+embStats.Misses,
			resStats.Hits, resStats.Hits+resStats.Misses)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(os.Stdout, rep)
	return nil
}

func printReport(w io.Writer, rep types.DiagnosticReport) {
	fmt.Fprintf(w, "Diagnosebericht %s\n", rep.SessionID)
	fmt.Fprintf(w, "Fahrzeug: %s  Zeitpunkt: %s\n", rep.VehicleID, rep.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Symptom: %s\n", rep.SymptomDescription)

	systems := make([]string, 0, len(rep.AffectedSystems))
	for _, tag := range rep.AffectedSystems {
		systems = append(systems, string(tag))
	}
	fmt.Fprintf(w, "Betroffene Systeme: %s\n\n", strings.Join(systems, ", "))

	fmt.Fprintf(w, "Ursache: %s (Vertrauen %d%%)\n", rep.RootCause.Description, rep.RootCause.Confidence)
	if rep.RootCause.AffectedComponent != "" {
		fmt.Fprintf(w, "Komponente: %s\n", rep.RootCause.AffectedComponent)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Diagnoseschritte:")
	for _, step := range rep.DiagnosticSteps {
		fmt.Fprintf(w, "  %d. %s\n", step.StepNumber, step.Action)
		fmt.Fprintf(w, "     Erwartet: %s  Befund: %s  (%s)\n",
			step.ExpectedResult, step.ActualResult, step.Conclusion)
	}
	fmt.Fprintln(w)

	res := rep.Resolution
	fmt.Fprintf(w, "Priorität: %s  Instandsetzungsebene: %s\n", res.Priority, res.MaintenanceLevel)
	fmt.Fprintf(w, "Maßnahme: %s\n", res.RecommendedAction)
	if len(res.RequiredParts) > 0 {
		fmt.Fprintf(w, "Ersatzteile: %s\n", strings.Join(res.RequiredParts, ", "))
	}
	fmt.Fprintf(w, "Aufwand: %s  Ausführung: %s\n", res.EstimatedTime, res.RequiredExpertise)

	if len(rep.EvidenceTrail) > 0 {
		fmt.Fprintln(w, "\nEvidenz:")
		for _, line := range rep.EvidenceTrail {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
}

func init() {
	diagnoseCmd.Flags().String("vehicle", "", "vehicle identifier (default leopard2)")
	diagnoseCmd.Flags().String("component", "", "component hint, e.g. \"getriebe\"")
	diagnoseCmd.Flags().Bool("offline", false, "run without external services")
	diagnoseCmd.Flags().Bool("verbose", false, "print pipeline progress and cache statistics to stderr")
	diagnoseCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(diagnoseCmd)
}
