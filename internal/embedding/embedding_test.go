// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreytag/diag-engine/internal/httputil"
	"github.com/mfreytag/diag-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func openaiClient(t *testing.T, handler http.HandlerFunc, dimension int) *OpenAI {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewOpenAI(types.EmbeddingConfig{
		BaseURL:   ts.URL,
		APIKey:    "sk-test",
		Dimension: dimension,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestOpenAIEmbed(t *testing.T) {
	var gotAuth string
	c := openaiClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/embeddings", r.URL.Path)

		var body struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "motor überhitzt", body.Input)
		assert.NotEmpty(t, body.Model)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.1, 0.2, 0.3}}},
		})
	}, 3)

	vec, err := c.Embed(context.Background(), "motor überhitzt")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestOpenAIEmbedRetriesOn429(t *testing.T) {
	var calls int32
	c := openaiClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 0}}},
		})
	}, 2)

	vec, err := c.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vec, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIEmbedDimensionMismatch(t *testing.T) {
	c := openaiClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 0}}},
		})
	}, 4)

	_, err := c.Embed(context.Background(), "text")
	assert.Error(t, err)
}

func TestOpenAIEmbedEmptyResponse(t *testing.T) {
	c := openaiClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}, 3)

	_, err := c.Embed(context.Background(), "text")
	assert.Error(t, err)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(types.EmbeddingConfig{})
	assert.Error(t, err)
}

func TestLocalEmbedDeterministic(t *testing.T) {
	l := NewLocal(64)

	a, err := l.Embed(context.Background(), "Motor überhitzt beim Starten")
	require.NoError(t, err)
	b, err := l.Embed(context.Background(), "Motor überhitzt beim Starten")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestLocalEmbedNormalized(t *testing.T) {
	l := NewLocal(64)

	vec, err := l.Embed(context.Background(), "kette gerissen")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestLocalEmbedEmptyText(t *testing.T) {
	l := NewLocal(8)

	vec, err := l.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
}
