// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank fuses the gathered evidence into a ranked list of root-cause
// hypotheses. Three generation passes run in decreasing evidentiary
// strength: documented component failures, failure-mode search hits, and
// general knowledge-base hits. Later passes skip components and sections
// already represented.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mfreytag/diag-engine/pkg/types"
)

const maxHypotheses = 5

const (
	componentMatchBase = 40
	componentMatchStep = 15
	componentMatchCap  = 90
	failureModeWeight  = 60
	relatedIssueWeight = 50
	failureModeTake    = 5
	relatedIssueTake   = 3
)

// Rank generates and orders the candidate hypotheses, capped to five,
// descending by likelihood. Ties keep derivation order: component-failure
// matches outrank failure-mode hits, which outrank general hits.
func Rank(components map[string]types.ComponentRecord, failureModes, relatedIssues []types.EvidenceItem, symptomText string) []types.Hypothesis {
	normalized := strings.ToLower(symptomText)
	textTokens := tokenSet(normalized)

	var (
		hypotheses       []types.Hypothesis
		coveredComponent = make(map[string]bool)
		coveredSection   = make(map[string]bool)
		nextID           = 1
	)
	emit := func(h types.Hypothesis) {
		h.ID = fmt.Sprintf("hyp_%d", nextID)
		nextID++
		hypotheses = append(hypotheses, h)
	}

	// Pass 1: documented component failures matched against the symptom
	// text. Strongest signal.
	for _, id := range sortedKeys(components) {
		comp := components[id]
		for _, failure := range comp.CommonFailures {
			matched := matchSymptoms(failure.Symptoms, normalized, textTokens)
			if len(matched) == 0 {
				continue
			}

			likelihood := componentMatchBase + componentMatchStep*len(matched)
			if likelihood > componentMatchCap {
				likelihood = componentMatchCap
			}

			actions := []string{fmt.Sprintf("Komponente %s sichtprüfen und Messwerte aufnehmen", comp.Name)}
			for _, sym := range failure.Symptoms {
				actions = append(actions, fmt.Sprintf("Symptom %q am Fahrzeug verifizieren", sym))
			}

			emit(types.Hypothesis{
				Description:        failure.Description,
				Likelihood:         likelihood,
				AffectedComponent:  comp.Name,
				ComponentID:        comp.ID,
				DiagnosticActions:  actions,
				SupportingEvidence: matched,
			})
			coveredComponent[comp.ID] = true
		}
	}

	// Pass 2: failure-mode search hits with a resolved component, for
	// components pass 1 did not cover.
	taken := 0
	for _, item := range failureModes {
		if taken == failureModeTake {
			break
		}
		if item.ComponentID == "" || coveredComponent[item.ComponentID] {
			continue
		}

		name := item.ComponentID
		if comp, ok := components[item.ComponentID]; ok {
			name = comp.Name
		}

		emit(types.Hypothesis{
			Description:       summarize(item.Text),
			Likelihood:        int(math.Round(item.Score * failureModeWeight)),
			AffectedComponent: name,
			ComponentID:       item.ComponentID,
			DiagnosticActions: []string{
				fmt.Sprintf("Fehlerbild gemäß Abschnitt %s prüfen", item.SourceSectionID),
			},
			SupportingEvidence: []string{item.Text},
		})
		coveredComponent[item.ComponentID] = true
		coveredSection[item.SourceSectionID] = true
		taken++
	}

	// Pass 3: general knowledge-base hits for sections and components not
	// already represented. Weakest signal.
	taken = 0
	for _, item := range relatedIssues {
		if taken == relatedIssueTake {
			break
		}
		if coveredSection[item.SourceSectionID] {
			continue
		}
		if item.ComponentID != "" && coveredComponent[item.ComponentID] {
			continue
		}

		name := item.ComponentID
		if comp, ok := components[item.ComponentID]; ok {
			name = comp.Name
		}
		if name == "" {
			name = "nicht zugeordnet"
		}

		emit(types.Hypothesis{
			Description:       summarize(item.Text),
			Likelihood:        int(math.Round(item.Score * relatedIssueWeight)),
			AffectedComponent: name,
			ComponentID:       item.ComponentID,
			DiagnosticActions: []string{
				fmt.Sprintf("Hinweis aus Abschnitt %s nachvollziehen", item.SourceSectionID),
			},
			SupportingEvidence: []string{item.Text},
		})
		coveredSection[item.SourceSectionID] = true
		if item.ComponentID != "" {
			coveredComponent[item.ComponentID] = true
		}
		taken++
	}

	// Stable sort keeps derivation order on equal likelihood.
	sort.SliceStable(hypotheses, func(i, j int) bool {
		return hypotheses[i].Likelihood > hypotheses[j].Likelihood
	})
	if len(hypotheses) > maxHypotheses {
		hypotheses = hypotheses[:maxHypotheses]
	}
	return hypotheses
}

// matchSymptoms returns the documented phrases found in the symptom text,
// either verbatim or by word overlap (at least half of a phrase's tokens).
func matchSymptoms(phrases []string, normalizedText string, textTokens map[string]bool) []string {
	var matched []string
	for _, phrase := range phrases {
		phrase = strings.ToLower(phrase)
		if phrase == "" {
			continue
		}
		if strings.Contains(normalizedText, phrase) {
			matched = append(matched, phrase)
			continue
		}

		phraseTokens := strings.Fields(phrase)
		hits := 0
		for _, token := range phraseTokens {
			if textTokens[token] {
				hits++
			}
		}
		if hits > 0 && hits*2 >= len(phraseTokens) {
			matched = append(matched, phrase)
		}
	}
	return matched
}

// summarize shortens passage text into a one-line description.
func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 120 {
		text = strings.TrimSpace(text[:117]) + "..."
	}
	return text
}

func sortedKeys(m map[string]types.ComponentRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(text) {
		set[strings.Trim(token, ".,;:!?()\"'")] = true
	}
	return set
}
