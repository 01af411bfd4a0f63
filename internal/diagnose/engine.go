// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diagnose runs the full diagnostic pipeline: symptom analysis,
// concurrent evidence gathering, hypothesis ranking, synthesis, defect
// classification, and report assembly.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mfreytag/diag-engine/internal/classify"
	"github.com/mfreytag/diag-engine/internal/gather"
	"github.com/mfreytag/diag-engine/internal/rank"
	"github.com/mfreytag/diag-engine/internal/report"
	"github.com/mfreytag/diag-engine/internal/symptom"
	"github.com/mfreytag/diag-engine/internal/synthesize"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// defaultVehicleID is assumed when the request does not name a vehicle.
const defaultVehicleID = "leopard2"

// Engine orchestrates one diagnostic request end to end. Stages run in a
// fixed order; only evidence gathering is internally concurrent.
type Engine struct {
	catalog  gather.Catalog
	gatherer *gather.Gatherer
	out      io.Writer
	now      func() time.Time
}

// New wires an engine from its collaborators. Progress is written to out;
// pass nil to silence it.
func New(searcher gather.Searcher, catalog gather.Catalog, out io.Writer) *Engine {
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		catalog:  catalog,
		gatherer: gather.New(searcher, catalog),
		out:      out,
		now:      time.Now,
	}
}

// Diagnose runs the pipeline for one symptom report and returns the
// assembled report. Degraded evidence sources surface as trail warnings,
// not as errors; only an empty symptom description fails the call.
func (e *Engine) Diagnose(ctx context.Context, rawText, vehicleID, componentHint string) (types.DiagnosticReport, error) {
	if strings.TrimSpace(rawText) == "" {
		return types.DiagnosticReport{}, errors.New("diagnose: empty symptom description")
	}
	if vehicleID == "" {
		vehicleID = defaultVehicleID
	}

	sctx := symptom.Analyze(rawText, vehicleID, componentHint)
	fmt.Fprintf(e.out, "Symptomanalyse: %d Systeme, %d Suchanfragen\n",
		len(sctx.AffectedSystems), len(sctx.SearchQueries))

	bundle := e.gatherer.Gather(ctx, sctx)
	fmt.Fprintf(e.out, "Evidenz: %d Wissenstreffer, %d Komponenten, %d Defektberichte",
		len(bundle.RelatedIssues), len(bundle.ComponentEvidence), len(bundle.FailureModes))
	if len(bundle.SourceErrors) > 0 {
		fmt.Fprintf(e.out, " (%d Quellen gestört)", len(bundle.SourceErrors))
	}
	fmt.Fprintln(e.out)

	hypotheses := rank.Rank(bundle.ComponentEvidence, bundle.FailureModes, bundle.RelatedIssues, rawText)
	fmt.Fprintf(e.out, "Hypothesen: %d\n", len(hypotheses))

	outcome := synthesize.Synthesize(hypotheses)

	description := rawText
	componentID := ""
	var component *types.ComponentRecord
	if outcome.Confirmed != nil {
		description = outcome.Confirmed.Description
		componentID = outcome.Confirmed.ComponentID
		component = e.resolveComponent(ctx, bundle, componentID)
	}

	classification := classify.Classify(description, componentID, checkpointFor(bundle, componentID))
	fmt.Fprintf(e.out, "Einstufung: %s (Vertrauen %.1f)\n",
		classification.Record.NameLocal, classification.Confidence)

	rep := report.Assemble(report.Input{
		VehicleID:       vehicleID,
		SymptomText:     rawText,
		AffectedSystems: sctx.AffectedSystems,
		Outcome:         outcome,
		Classification:  classification,
		Component:       component,
		Evidence:        evidenceLines(bundle),
		SourceErrors:    bundle.SourceErrors,
	}, e.now())

	return rep, nil
}

// resolveComponent prefers the gathered record and falls back to a direct
// catalog lookup. A failed lookup leaves the report without parts.
func (e *Engine) resolveComponent(ctx context.Context, bundle gather.Bundle, id string) *types.ComponentRecord {
	if id == "" {
		return nil
	}
	if rec, ok := bundle.ComponentEvidence[id]; ok {
		return &rec
	}
	rec, err := e.catalog.Component(ctx, id)
	if err != nil {
		return nil
	}
	return &rec
}

// checkpointFor picks the checkpoint number of the strongest evidence item
// tied to the confirmed component, zero when none carries one.
func checkpointFor(bundle gather.Bundle, componentID string) int {
	for _, item := range bundle.FailureModes {
		if item.CheckpointNumber != 0 && (componentID == "" || item.ComponentID == componentID) {
			return item.CheckpointNumber
		}
	}
	for _, item := range bundle.RelatedIssues {
		if item.CheckpointNumber != 0 {
			return item.CheckpointNumber
		}
	}
	return 0
}

// evidenceLines formats the gathered passages for the report trail.
func evidenceLines(bundle gather.Bundle) []string {
	lines := make([]string, 0, len(bundle.RelatedIssues)+len(bundle.FailureModes))
	for _, item := range bundle.RelatedIssues {
		lines = append(lines, fmt.Sprintf("Wissensbasis %s (Score %.2f): %s",
			item.SourceSectionID, item.Score, firstLine(item.Text)))
	}
	for _, item := range bundle.FailureModes {
		lines = append(lines, fmt.Sprintf("Defektbericht %s (Score %.2f): %s",
			item.SourceSectionID, item.Score, firstLine(item.Text)))
	}
	return lines
}

func firstLine(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 100 {
		text = strings.TrimSpace(text[:97]) + "..."
	}
	return text
}
