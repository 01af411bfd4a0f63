// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symptom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreytag/diag-engine/pkg/types"
)

func TestAnalyzeMultipleSystems(t *testing.T) {
	ctx := Analyze("Motor überhitzt beim Starten, Öldruck schwankt", "leopard2", "")

	assert.True(t, ctx.HasSystem(types.SystemEngine))
	assert.True(t, ctx.HasSystem(types.SystemCooling))
	assert.False(t, ctx.HasSystem(types.SystemGeneral))
	assert.Equal(t, "leopard2", ctx.VehicleID)
}

func TestAnalyzeDefaultsToGeneral(t *testing.T) {
	tests := []string{
		"irgendetwas stimmt nicht",
		"",
		"klappert vorne links",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			ctx := Analyze(text, "leopard2", "")
			require.NotEmpty(t, ctx.AffectedSystems, "affected systems must never be empty")
			assert.Equal(t, []types.SystemTag{types.SystemGeneral}, ctx.AffectedSystems)
		})
	}
}

func TestAnalyzeHintAddsSystems(t *testing.T) {
	ctx := Analyze("verliert Leistung bergauf", "leopard2", "Getriebe HSWL 354")

	assert.True(t, ctx.HasSystem(types.SystemTransmission))
}

func TestAnalyzeHintDoesNotDuplicate(t *testing.T) {
	ctx := Analyze("Getriebe schaltet hart", "leopard2", "Getriebe")

	count := 0
	for _, tag := range ctx.AffectedSystems {
		if tag == types.SystemTransmission {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractKeywords(t *testing.T) {
	ctx := Analyze("Der Motor überhitzt beim Starten und der Öldruck schwankt!", "leopard2", "")

	assert.Contains(t, ctx.Keywords, "motor")
	assert.Contains(t, ctx.Keywords, "überhitzt")
	assert.Contains(t, ctx.Keywords, "öldruck")
	assert.NotContains(t, ctx.Keywords, "der", "stop words are dropped")
	assert.NotContains(t, ctx.Keywords, "und")

	// First-seen order is preserved.
	assert.Equal(t, "motor", ctx.Keywords[0])
}

func TestExtractKeywordsCap(t *testing.T) {
	ctx := Analyze(
		"alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima",
		"leopard2", "")
	assert.Len(t, ctx.Keywords, 10)
}

func TestExtractKeywordsDropsShortTokens(t *testing.T) {
	ctx := Analyze("öl im up ab Motorraum", "leopard2", "")
	assert.NotContains(t, ctx.Keywords, "öl")
	assert.NotContains(t, ctx.Keywords, "up")
}

func TestSearchQueries(t *testing.T) {
	raw := "Motor überhitzt beim Starten"
	ctx := Analyze(raw, "leopard2", "Kühler")

	require.NotEmpty(t, ctx.SearchQueries)
	assert.Equal(t, raw, ctx.SearchQueries[0], "raw text is always the first query")

	// One derived query per affected system.
	for _, tag := range ctx.AffectedSystems {
		assert.Contains(t, ctx.SearchQueries, SystemQuery(tag))
	}

	// The hint adds one more query at the end.
	assert.Contains(t, ctx.SearchQueries[len(ctx.SearchQueries)-1], "Kühler")
}

func TestSearchQueriesWithoutHint(t *testing.T) {
	ctx := Analyze("Kette schlägt", "leopard2", "")
	assert.Len(t, ctx.SearchQueries, 1+len(ctx.AffectedSystems))
}
