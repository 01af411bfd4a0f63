// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mfreytag/diag-engine/internal/httputil"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// OpenAI is an OpenAI-compatible embeddings client.
type OpenAI struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// NewOpenAI returns a client for the configured endpoint. The API key must
// be non-empty.
func NewOpenAI(cfg types.EmbeddingConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding provider: missing API key")
	}
	cfg = types.EngineConfig{Embedding: cfg}.WithDefaults().Embedding

	return &OpenAI{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Dimension returns the configured vector dimensionality.
func (o *OpenAI) Dimension() int { return o.dimension }

// Embed requests one embedding vector for text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	body := struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: o.model}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := httputil.DoWithRetry(ctx, o.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned no vector")
	}

	vec := out.Data[0].Embedding
	if o.dimension > 0 && len(vec) != o.dimension {
		return nil, fmt.Errorf("embeddings API returned %d dimensions, want %d", len(vec), o.dimension)
	}
	return vec, nil
}

var _ Provider = (*OpenAI)(nil)
