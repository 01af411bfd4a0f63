// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared domain types of the diagnostic engine:
// symptom contexts, evidence, hypotheses, defect taxonomy, and reports.
package types

// SystemTag identifies one vehicle subsystem. The set is closed; free-text
// symptom reports are mapped onto it by the symptom analyzer.
type SystemTag string

const (
	SystemEngine       SystemTag = "engine"
	SystemTransmission SystemTag = "transmission"
	SystemHydraulic    SystemTag = "hydraulic"
	SystemElectrical   SystemTag = "electrical"
	SystemTurret       SystemTag = "turret"
	SystemTracks       SystemTag = "tracks"
	SystemCooling      SystemTag = "cooling"
	SystemFuel         SystemTag = "fuel"
	SystemBrakes       SystemTag = "brakes"
	SystemElectronics  SystemTag = "electronics"
	SystemGeneral      SystemTag = "general"
)

// AllSystems lists every SystemTag except SystemGeneral, in the order the
// analyzer scans them.
var AllSystems = []SystemTag{
	SystemEngine,
	SystemTransmission,
	SystemHydraulic,
	SystemElectrical,
	SystemTurret,
	SystemTracks,
	SystemCooling,
	SystemFuel,
	SystemBrakes,
	SystemElectronics,
}

// SymptomContext is the analyzed form of one symptom report. It is built
// once per diagnostic request and never mutated afterwards.
type SymptomContext struct {
	// RawText is the operator's symptom description, verbatim.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// VehicleID identifies the vehicle the report concerns (e.g. "leopard2").
	VehicleID string `json:"vehicle_id" yaml:"vehicle_id"`

	// ComponentHint is an optional operator-supplied component name.
	ComponentHint string `json:"component_hint,omitempty" yaml:"component_hint,omitempty"`

	// AffectedSystems holds every subsystem implicated by the text. Never
	// empty: when no keyword matches, it contains SystemGeneral alone.
	AffectedSystems []SystemTag `json:"affected_systems" yaml:"affected_systems"`

	// Keywords are salient tokens from the text in first-seen order,
	// stop words removed, capped at ten.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// SearchQueries are the derived retrieval queries: the raw text, one
	// per affected system, and one for the hint when present.
	SearchQueries []string `json:"search_queries" yaml:"search_queries"`
}

// HasSystem reports whether tag is among the affected systems.
func (c SymptomContext) HasSystem(tag SystemTag) bool {
	for _, s := range c.AffectedSystems {
		if s == tag {
			return true
		}
	}
	return false
}
