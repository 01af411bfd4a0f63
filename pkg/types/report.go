// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RootCause is the confirmed (or best-available) explanation for the
// reported symptom.
type RootCause struct {
	// Description states the failure in one sentence.
	Description string `json:"description" yaml:"description"`

	// Confidence is an integer in [0, 100]. An inconclusive diagnosis
	// carries the fixed floor of 20, never zero.
	Confidence int `json:"confidence" yaml:"confidence"`

	// AffectedComponent is the human-readable component name.
	AffectedComponent string `json:"affected_component" yaml:"affected_component"`

	// ComponentID is the catalog identifier, when resolved.
	ComponentID string `json:"component_id,omitempty" yaml:"component_id,omitempty"`
}

// Resolution describes how the defect is to be handled.
type Resolution struct {
	// Priority is the classified defect severity.
	Priority DefectPriority `json:"priority" yaml:"priority"`

	// MaintenanceLevel is derived from the priority via a fixed table.
	MaintenanceLevel MaintenanceLevel `json:"maintenance_level" yaml:"maintenance_level"`

	// RecommendedAction is the first recommendation for the priority.
	RecommendedAction string `json:"recommended_action" yaml:"recommended_action"`

	// RequiredParts is the fixed parts list for the affected component,
	// empty when the component is unresolved.
	RequiredParts []string `json:"required_parts,omitempty" yaml:"required_parts,omitempty"`

	// EstimatedTime is a fixed priority-keyed duration description.
	EstimatedTime string `json:"estimated_time" yaml:"estimated_time"`

	// RequiredExpertise names who may perform the repair, derived from
	// the maintenance level.
	RequiredExpertise string `json:"required_expertise" yaml:"required_expertise"`
}

// DiagnosticReport is the terminal aggregate of one diagnostic request.
// It is assembled once and never mutated.
type DiagnosticReport struct {
	// VehicleID identifies the vehicle the report concerns.
	VehicleID string `json:"vehicle_id" yaml:"vehicle_id"`

	// SessionID is unique per report.
	SessionID string `json:"session_id" yaml:"session_id"`

	// Timestamp is the UTC assembly time.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// SymptomDescription is the operator's report, verbatim.
	SymptomDescription string `json:"symptom_description" yaml:"symptom_description"`

	// AffectedSystems lists the implicated subsystems.
	AffectedSystems []SystemTag `json:"affected_systems" yaml:"affected_systems"`

	// DiagnosticSteps is the ordered trace justifying the diagnosis.
	DiagnosticSteps []DiagnosticStep `json:"diagnostic_steps" yaml:"diagnostic_steps"`

	// RootCause is the confirmed or best-available cause.
	RootCause RootCause `json:"root_cause" yaml:"root_cause"`

	// Resolution describes priority, escalation, parts, and effort.
	Resolution Resolution `json:"resolution" yaml:"resolution"`

	// EvidenceTrail records the retrieval evidence and any source
	// failures encountered while gathering it.
	EvidenceTrail []string `json:"evidence_trail" yaml:"evidence_trail"`
}
