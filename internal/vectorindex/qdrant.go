// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mfreytag/diag-engine/pkg/types"
)

// Qdrant is a minimal REST client for a Qdrant collection using cosine
// distance. One long-lived client is shared per process; the engine never
// reconnects per call.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

// NewQdrant returns a client for the configured collection.
func NewQdrant(cfg types.IndexConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist. Qdrant
// answers 200 when the collection already exists with the same schema.
func (q *Qdrant) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, nil)
}

// Upsert writes points and waits for them to be indexed.
func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	qpoints := make([]map[string]any, len(points))
	for i, p := range points {
		qpoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": qpoints}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collection), body, nil)
}

// Query runs a nearest-neighbor search with an optional exact-match filter.
func (q *Qdrant) Query(ctx context.Context, vector []float64, topK int, filter map[string]string) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if len(filter) > 0 {
		var must []map[string]any
		for key, value := range filter {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}

	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload Payload `json:"payload"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collection), body, &resp)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, Match{Payload: r.Payload, Score: r.Score})
	}
	return matches, nil
}

// Truncate deletes every point in the collection via an empty filter.
func (q *Qdrant) Truncate(ctx context.Context) error {
	body := map[string]any{"filter": map[string]any{}}
	return q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collection), body, nil)
}

func (q *Qdrant) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: HTTP %s", method, path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("parsing qdrant response: %w", err)
		}
	}
	return nil
}
