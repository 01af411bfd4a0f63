// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FailureMode is one documented failure of a component together with the
// symptom phrases the maintenance manuals associate with it.
type FailureMode struct {
	// Description states the failure.
	Description string `json:"description" yaml:"description"`

	// Symptoms are the documented symptom phrases, lower-case.
	Symptoms []string `json:"symptoms" yaml:"symptoms"`
}

// ComponentRecord is one entry of the static component catalog.
type ComponentRecord struct {
	// ID is the catalog identifier (e.g. "mtu_mb873").
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable component designation.
	Name string `json:"name" yaml:"name"`

	// Systems lists the subsystems the component belongs to. The
	// mapping is many-to-many.
	Systems []SystemTag `json:"systems" yaml:"systems"`

	// HintPatterns are lower-case substrings that resolve an operator's
	// component hint to this record.
	HintPatterns []string `json:"hint_patterns" yaml:"hint_patterns"`

	// Specs holds technical key figures.
	Specs map[string]string `json:"specs,omitempty" yaml:"specs,omitempty"`

	// MonitoringPoints lists the gauges and sensors to watch.
	MonitoringPoints []string `json:"monitoring_points,omitempty" yaml:"monitoring_points,omitempty"`

	// Parts is the fixed spares list used for resolution planning.
	Parts []string `json:"parts,omitempty" yaml:"parts,omitempty"`

	// CommonFailures are the documented failure modes.
	CommonFailures []FailureMode `json:"common_failures,omitempty" yaml:"common_failures,omitempty"`
}
