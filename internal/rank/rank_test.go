// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreytag/diag-engine/pkg/types"
)

func engineComponents() map[string]types.ComponentRecord {
	return map[string]types.ComponentRecord{
		"mtu_mb873": {
			ID:   "mtu_mb873",
			Name: "MTU MB 873 Ka-501 Dieselmotor",
			CommonFailures: []types.FailureMode{
				{
					Description: "Überhitzung durch gestörten Kühlmittelkreislauf",
					Symptoms:    []string{"überhitzt", "temperatur zu hoch"},
				},
				{
					Description: "Schwankender oder abfallender Öldruck",
					Symptoms:    []string{"öldruck schwankt", "ölwarnleuchte"},
				},
			},
		},
	}
}

func TestComponentFailureMatchLikelihood(t *testing.T) {
	hyps := Rank(engineComponents(), nil, nil, "Motor überhitzt beim Starten")

	require.NotEmpty(t, hyps)
	top := hyps[0]
	assert.Equal(t, 55, top.Likelihood, "one phrase match gives 40+15")
	assert.Equal(t, "mtu_mb873", top.ComponentID)
	assert.Equal(t, []string{"überhitzt"}, top.SupportingEvidence)
	// One generic inspect action plus one verify-action per documented symptom.
	assert.Len(t, top.DiagnosticActions, 3)
}

func TestComponentFailureTwoMatches(t *testing.T) {
	hyps := Rank(engineComponents(), nil, nil, "Motor überhitzt, Temperatur zu hoch")

	require.NotEmpty(t, hyps)
	assert.Equal(t, 70, hyps[0].Likelihood, "two matches give 40+30")
}

func TestComponentFailureLikelihoodCap(t *testing.T) {
	components := map[string]types.ComponentRecord{
		"c": {
			ID:   "c",
			Name: "Testkomponente",
			CommonFailures: []types.FailureMode{{
				Description: "Vielfachsymptom",
				Symptoms:    []string{"alpha", "bravo", "charlie", "delta", "echo"},
			}},
		},
	}

	hyps := Rank(components, nil, nil, "alpha bravo charlie delta echo")
	require.NotEmpty(t, hyps)
	assert.Equal(t, 90, hyps[0].Likelihood, "likelihood is capped at 90")
}

func TestWordOverlapMatch(t *testing.T) {
	// "öldruck schwankt" is not a verbatim substring, but both words
	// appear in the text.
	hyps := Rank(engineComponents(), nil, nil, "der öldruck im motor schwankt stark")

	require.NotEmpty(t, hyps)
	assert.Equal(t, "Schwankender oder abfallender Öldruck", hyps[0].Description)
}

func TestFailureModePassSkipsCoveredComponents(t *testing.T) {
	failureHits := []types.EvidenceItem{
		{SourceSectionID: "d1", Text: "Kühlmittelpumpe fördert nicht", Score: 0.9, ComponentID: "mtu_mb873"},
		{SourceSectionID: "d2", Text: "Getriebeölstand zu niedrig", Score: 0.8, ComponentID: "renk_hswl354"},
	}

	hyps := Rank(engineComponents(), failureHits, nil, "Motor überhitzt")

	// mtu_mb873 is covered by pass 1; only the transmission hit emits.
	var ids []string
	for _, h := range hyps {
		ids = append(ids, h.ComponentID)
	}
	assert.Contains(t, ids, "renk_hswl354")

	count := 0
	for _, h := range hyps {
		if h.ComponentID == "mtu_mb873" {
			count++
		}
	}
	assert.Equal(t, 1, count, "pass 2 must not re-emit a covered component")
}

func TestFailureModeLikelihoodScaling(t *testing.T) {
	failureHits := []types.EvidenceItem{
		{SourceSectionID: "d1", Text: "Druckspeicher defekt", Score: 0.75, ComponentID: "hydraulikanlage"},
	}

	hyps := Rank(nil, failureHits, nil, "Hydraulik schwach")
	require.Len(t, hyps, 1)
	assert.Equal(t, 45, hyps[0].Likelihood, "round(0.75*60)")
}

func TestFailureModeSkipsUnresolvedComponents(t *testing.T) {
	failureHits := []types.EvidenceItem{
		{SourceSectionID: "d1", Text: "ohne Komponente", Score: 0.9},
	}

	hyps := Rank(nil, failureHits, nil, "irgendwas")
	assert.Empty(t, hyps)
}

func TestRelatedIssuePass(t *testing.T) {
	related := []types.EvidenceItem{
		{SourceSectionID: "k1", Text: "Allgemeiner Wartungshinweis", Score: 0.8},
	}

	hyps := Rank(nil, nil, related, "irgendwas")
	require.Len(t, hyps, 1)
	assert.Equal(t, 40, hyps[0].Likelihood, "round(0.8*50)")
	assert.Equal(t, "nicht zugeordnet", hyps[0].AffectedComponent)
}

func TestRelatedIssueSkipsCoveredSections(t *testing.T) {
	failureHits := []types.EvidenceItem{
		{SourceSectionID: "shared", Text: "Defektbericht", Score: 0.9, ComponentID: "bordnetz"},
	}
	related := []types.EvidenceItem{
		{SourceSectionID: "shared", Text: "derselbe Abschnitt", Score: 0.9},
		{SourceSectionID: "other", Text: "anderer Abschnitt", Score: 0.6},
	}

	hyps := Rank(nil, failureHits, related, "irgendwas")

	require.Len(t, hyps, 2)
	assert.Equal(t, "Defektbericht", hyps[0].Description)
	assert.Equal(t, "anderer Abschnitt", hyps[1].Description)
}

func TestRankOrderingAndCap(t *testing.T) {
	var failureHits []types.EvidenceItem
	for i := 0; i < 8; i++ {
		failureHits = append(failureHits, types.EvidenceItem{
			SourceSectionID: fmt.Sprintf("d%d", i),
			Text:            fmt.Sprintf("Fehler %d", i),
			Score:           0.9 - float64(i)*0.05,
			ComponentID:     fmt.Sprintf("comp%d", i),
		})
	}
	var related []types.EvidenceItem
	for i := 0; i < 5; i++ {
		related = append(related, types.EvidenceItem{
			SourceSectionID: fmt.Sprintf("k%d", i),
			Text:            fmt.Sprintf("Hinweis %d", i),
			Score:           0.8 - float64(i)*0.1,
		})
	}

	hyps := Rank(engineComponents(), failureHits, related, "Motor überhitzt")

	assert.LessOrEqual(t, len(hyps), 5)
	for i := 1; i < len(hyps); i++ {
		assert.GreaterOrEqual(t, hyps[i-1].Likelihood, hyps[i].Likelihood,
			"likelihood must be non-increasing")
	}
}

func TestRankEmptyEvidence(t *testing.T) {
	hyps := Rank(nil, nil, nil, "völlig unbekanntes Verhalten")
	assert.Empty(t, hyps)
}

func TestRankUniqueIDs(t *testing.T) {
	failureHits := []types.EvidenceItem{
		{SourceSectionID: "d1", Text: "a", Score: 0.9, ComponentID: "c1"},
		{SourceSectionID: "d2", Text: "b", Score: 0.8, ComponentID: "c2"},
	}
	hyps := Rank(nil, failureHits, nil, "x")

	seen := make(map[string]bool)
	for _, h := range hyps {
		assert.False(t, seen[h.ID], "duplicate id %s", h.ID)
		seen[h.ID] = true
	}
}
