// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreytag/diag-engine/pkg/types"
)

func memoryWithPoints(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.EnsureCollection(context.Background(), 3))

	err := m.Upsert(context.Background(), []Point{
		{ID: "a", Vector: []float64{1, 0, 0}, Payload: Payload{SectionID: "s1", Text: "engine overheats", ComponentID: "mtu_mb873", DataType: "defect"}},
		{ID: "b", Vector: []float64{0.9, 0.1, 0}, Payload: Payload{SectionID: "s2", Text: "coolant loss", DataType: "manual"}},
		{ID: "c", Vector: []float64{0, 1, 0}, Payload: Payload{SectionID: "s3", Text: "track tension", ComponentID: "diehl_570", DataType: "defect"}},
	})
	require.NoError(t, err)
	return m
}

func TestMemoryQueryRanksBySimilarity(t *testing.T) {
	m := memoryWithPoints(t)

	matches, err := m.Query(context.Background(), []float64{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "s1", matches[0].Payload.SectionID)
	assert.Equal(t, "s2", matches[1].Payload.SectionID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryQueryFilter(t *testing.T) {
	m := memoryWithPoints(t)

	matches, err := m.Query(context.Background(), []float64{1, 0, 0}, 10, map[string]string{"data_type": "defect"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, match := range matches {
		assert.Equal(t, "defect", match.Payload.DataType)
	}
}

func TestMemoryQueryFilterComposition(t *testing.T) {
	m := memoryWithPoints(t)

	matches, err := m.Query(context.Background(), []float64{1, 0, 0}, 10, map[string]string{
		"data_type":    "defect",
		"component_id": "diehl_570",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "s3", matches[0].Payload.SectionID)
}

func TestMemoryUpsertDimensionMismatch(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.EnsureCollection(context.Background(), 3))

	err := m.Upsert(context.Background(), []Point{{ID: "x", Vector: []float64{1, 0}}})
	assert.Error(t, err)
}

func TestMemoryTruncate(t *testing.T) {
	m := memoryWithPoints(t)
	require.NoError(t, m.Truncate(context.Background()))
	assert.Equal(t, 0, m.Len())
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosine(tt.a, tt.b), 1e-9)
		})
	}
}

// --- Qdrant REST client ---

func qdrantServer(t *testing.T, handler http.HandlerFunc) *Qdrant {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewQdrant(types.IndexConfig{
		URL:        ts.URL,
		Collection: "test",
		Timeout:    5 * time.Second,
	})
}

func TestQdrantQueryBuildsFilter(t *testing.T) {
	var captured map[string]any
	q := qdrantServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/test/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.92, "payload": map[string]any{"section_id": "s1", "text": "engine overheats"}},
			},
		})
	})

	matches, err := q.Query(context.Background(), []float64{1, 0}, 5, map[string]string{"data_type": "defect"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "s1", matches[0].Payload.SectionID)
	assert.InDelta(t, 0.92, matches[0].Score, 1e-9)

	filter, ok := captured["filter"].(map[string]any)
	require.True(t, ok, "filter clause should be present")
	must := filter["must"].([]any)
	require.Len(t, must, 1)
}

func TestQdrantQueryOmitsEmptyFilter(t *testing.T) {
	var captured map[string]any
	q := qdrantServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{}})
	})

	_, err := q.Query(context.Background(), []float64{1, 0}, 5, nil)
	require.NoError(t, err)
	_, hasFilter := captured["filter"]
	assert.False(t, hasFilter)
}

func TestQdrantErrorStatus(t *testing.T) {
	q := qdrantServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := q.Query(context.Background(), []float64{1, 0}, 5, nil)
	assert.Error(t, err)
}

func TestQdrantUpsertAndEnsure(t *testing.T) {
	var paths []string
	q := qdrantServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, q.EnsureCollection(context.Background(), 4))
	require.NoError(t, q.Upsert(context.Background(), []Point{
		{ID: "a", Vector: []float64{1, 0, 0, 0}, Payload: Payload{SectionID: "s1"}},
	}))
	require.NoError(t, q.Truncate(context.Background()))

	assert.Equal(t, []string{
		"PUT /collections/test",
		"PUT /collections/test/points",
		"POST /collections/test/points/delete",
	}, paths)
}
