// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the terminal diagnostic report from the
// pipeline stages' outputs. Assembly is pure: the same inputs always
// produce the same root cause and resolution.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfreytag/diag-engine/internal/classify"
	"github.com/mfreytag/diag-engine/internal/synthesize"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// maintenanceLevels maps defect priority to the tier allowed to perform
// the repair.
var maintenanceLevels = map[types.DefectPriority]types.MaintenanceLevel{
	types.PriorityCritical: types.LevelDepot,
	types.PriorityHigh:     types.LevelField,
	types.PriorityMedium:   types.LevelField,
	types.PriorityLow:      types.LevelCrew,
	types.PriorityInfo:     types.LevelCrew,
}

// estimatedTimes is the fixed priority-keyed effort estimate.
var estimatedTimes = map[types.DefectPriority]string{
	types.PriorityCritical: "8-24 Stunden, abhängig von Ersatzteillage",
	types.PriorityHigh:     "4-8 Stunden",
	types.PriorityMedium:   "2-4 Stunden",
	types.PriorityLow:      "bis 1 Stunde",
	types.PriorityInfo:     "keine Arbeitszeit erforderlich",
}

// expertise maps maintenance level to who may perform the repair.
var expertise = map[types.MaintenanceLevel]string{
	types.LevelCrew:  "Besatzung",
	types.LevelField: "Instandsetzungsgruppe der Einheit",
	types.LevelDepot: "Systeminstandsetzung / Herstellerwerkstatt",
}

// Input bundles everything the assembler needs from the earlier stages.
type Input struct {
	VehicleID       string
	SymptomText     string
	AffectedSystems []types.SystemTag
	Outcome         synthesize.Outcome
	Classification  classify.Classification

	// Component is the resolved catalog record for the confirmed
	// hypothesis, nil when unresolved.
	Component *types.ComponentRecord

	// Evidence lists the retrieval evidence lines for the trail.
	Evidence []string

	// SourceErrors are the non-fatal gathering failures, recorded as
	// warnings in the trail.
	SourceErrors []string
}

// Assemble builds the immutable diagnostic report. The session identifier
// is the only non-deterministic field.
func Assemble(in Input, now time.Time) types.DiagnosticReport {
	now = now.UTC()

	root := types.RootCause{
		Description: "Ursache nicht eindeutig bestimmbar",
		Confidence:  in.Outcome.Confidence,
	}
	if in.Outcome.Confirmed != nil {
		root.Description = in.Outcome.Confirmed.Description
		root.AffectedComponent = in.Outcome.Confirmed.AffectedComponent
		root.ComponentID = in.Outcome.Confirmed.ComponentID
	}

	priority := in.Classification.Priority
	level := maintenanceLevel(priority)

	resolution := types.Resolution{
		Priority:          priority,
		MaintenanceLevel:  level,
		EstimatedTime:     estimatedTimes[priority],
		RequiredExpertise: expertise[level],
	}
	if len(in.Classification.Recommendations) > 0 {
		resolution.RecommendedAction = in.Classification.Recommendations[0]
	}
	if in.Component != nil {
		resolution.RequiredParts = append([]string(nil), in.Component.Parts...)
	}

	trail := make([]string, 0, len(in.Evidence)+len(in.SourceErrors)+len(in.Outcome.Notes))
	trail = append(trail, in.Evidence...)
	for _, note := range in.Outcome.Notes {
		trail = append(trail, "Hinweis: "+note)
	}
	for _, srcErr := range in.SourceErrors {
		trail = append(trail, "Warnung: "+srcErr)
	}

	return types.DiagnosticReport{
		VehicleID:          in.VehicleID,
		SessionID:          NewSessionID(now),
		Timestamp:          now,
		SymptomDescription: in.SymptomText,
		AffectedSystems:    in.AffectedSystems,
		DiagnosticSteps:    in.Outcome.Steps,
		RootCause:          root,
		Resolution:         resolution,
		EvidenceTrail:      trail,
	}
}

// NewSessionID produces a sortable, unique session identifier: the UTC
// timestamp plus a short random suffix.
func NewSessionID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("diag-%s-%s", now.UTC().Format("20060102-150405"), suffix)
}

// maintenanceLevel resolves the tier for a priority. An unmapped priority
// means the fixed table is corrupted.
func maintenanceLevel(p types.DefectPriority) types.MaintenanceLevel {
	level, ok := maintenanceLevels[p]
	if !ok {
		panic(fmt.Sprintf("report: no maintenance level for priority %q", p))
	}
	return level
}
