// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize turns the ranked hypotheses into a diagnostic trace
// and a root-cause confidence value.
package synthesize

import (
	"fmt"

	"github.com/mfreytag/diag-engine/pkg/types"
)

// inconclusiveConfidence is the fixed floor reported when no hypothesis
// was produced: inconclusive, but not absent.
const inconclusiveConfidence = 20

const (
	expectedDefault   = "Befund entspricht der Hypothese"
	conclusionDefault = "Hypothese gestützt"
)

// Outcome is the synthesized diagnosis.
type Outcome struct {
	// Steps is the ordered diagnostic trace. Step numbers are 1-based
	// and contiguous.
	Steps []types.DiagnosticStep

	// Confirmed is the accepted hypothesis, nil when none was produced.
	Confirmed *types.Hypothesis

	// Confidence is the root-cause confidence in [0, 100].
	Confidence int

	// Notes holds evidence-trail remarks (e.g. that manual diagnosis is
	// required).
	Notes []string
}

// Synthesize accepts the top-ranked hypothesis and derives the trace from
// its diagnostic actions and supporting evidence. With no hypotheses the
// pipeline still completes: a placeholder step, the fixed low-confidence
// floor, and a note that manual diagnosis is required.
func Synthesize(hypotheses []types.Hypothesis) Outcome {
	if len(hypotheses) == 0 {
		return Outcome{
			Steps: []types.DiagnosticStep{{
				StepNumber:     1,
				Action:         "Manuelle Fehlersuche durch Instandsetzungspersonal einleiten",
				ExpectedResult: "Fehlerbild wird eingegrenzt",
				ActualResult:   "Automatische Diagnose ohne belastbares Ergebnis",
				Conclusion:     "Manuelle Diagnose erforderlich",
			}},
			Confidence: inconclusiveConfidence,
			Notes:      []string{"Keine belastbare Hypothese gefunden, manuelle Diagnose erforderlich"},
		}
	}

	top := hypotheses[0]

	// The confirmed hypothesis's likelihood is the confidence, clamped to
	// the inconclusive floor so noise-level hypotheses never report less
	// certainty than no hypothesis at all.
	confidence := top.Likelihood
	if confidence < inconclusiveConfidence {
		confidence = inconclusiveConfidence
	}
	out := Outcome{
		Confirmed:  &top,
		Confidence: confidence,
	}

	if len(top.DiagnosticActions) == 0 {
		out.Steps = []types.DiagnosticStep{{
			StepNumber:     1,
			Action:         fmt.Sprintf("Komponente %s eingehend prüfen", top.AffectedComponent),
			ExpectedResult: expectedDefault,
			ActualResult:   top.Description,
			Conclusion:     conclusionDefault,
		}}
		return out
	}

	// Zip actions with evidence by index; the shorter array is backfilled
	// so every step has all four fields populated.
	n := len(top.DiagnosticActions)
	if len(top.SupportingEvidence) > n {
		n = len(top.SupportingEvidence)
	}
	for i := 0; i < n; i++ {
		step := types.DiagnosticStep{
			StepNumber:     i + 1,
			Action:         fmt.Sprintf("Prüfung zu %q fortsetzen", top.Description),
			ExpectedResult: expectedDefault,
			ActualResult:   top.Description,
			Conclusion:     conclusionDefault,
		}
		if i < len(top.DiagnosticActions) {
			step.Action = top.DiagnosticActions[i]
		}
		if i < len(top.SupportingEvidence) {
			step.ActualResult = top.SupportingEvidence[i]
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}
