// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EvidenceItem is one retrieved knowledge passage with its relevance score
// and the structured tags carried in the index payload.
type EvidenceItem struct {
	// Text is the passage content.
	Text string `json:"text" yaml:"text"`

	// SourceSectionID identifies the manual section the passage came from.
	SourceSectionID string `json:"source_section_id" yaml:"source_section_id"`

	// Score is the retrieval relevance in [0, 1].
	Score float64 `json:"score" yaml:"score"`

	// ComponentID links the passage to a catalog component, when known.
	ComponentID string `json:"component_id,omitempty" yaml:"component_id,omitempty"`

	// Priority is the defect priority recorded on the passage, when known.
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`

	// CheckpointNumber is the maintenance checkpoint the passage belongs
	// to, zero when absent.
	CheckpointNumber int `json:"checkpoint_number,omitempty" yaml:"checkpoint_number,omitempty"`
}

// DedupKey returns the identity used when merging evidence lists: section
// plus component, with "n/a" standing in for an unresolved component. The
// first occurrence of a key wins regardless of score.
func (e EvidenceItem) DedupKey() string {
	component := e.ComponentID
	if component == "" {
		component = "n/a"
	}
	return e.SourceSectionID + "|" + component
}

// Hypothesis is one candidate root cause with its evidence.
type Hypothesis struct {
	// ID is unique within one diagnostic request.
	ID string `json:"id" yaml:"id"`

	// Description states the suspected failure.
	Description string `json:"description" yaml:"description"`

	// Likelihood is an integer score in [0, 100]; hypotheses are ranked
	// descending by it.
	Likelihood int `json:"likelihood" yaml:"likelihood"`

	// AffectedComponent is the human-readable component name.
	AffectedComponent string `json:"affected_component" yaml:"affected_component"`

	// ComponentID is the catalog identifier, when resolved.
	ComponentID string `json:"component_id,omitempty" yaml:"component_id,omitempty"`

	// DiagnosticActions are the checks that would confirm the hypothesis.
	DiagnosticActions []string `json:"diagnostic_actions" yaml:"diagnostic_actions"`

	// SupportingEvidence holds the matched symptom phrases or retrieved
	// passages backing the hypothesis.
	SupportingEvidence []string `json:"supporting_evidence" yaml:"supporting_evidence"`
}

// DiagnosticStep is one entry of the diagnostic trace.
type DiagnosticStep struct {
	// StepNumber is 1-based and contiguous within a trace.
	StepNumber int `json:"step_number" yaml:"step_number"`

	Action         string `json:"action" yaml:"action"`
	ExpectedResult string `json:"expected_result" yaml:"expected_result"`
	ActualResult   string `json:"actual_result" yaml:"actual_result"`
	Conclusion     string `json:"conclusion" yaml:"conclusion"`
}
