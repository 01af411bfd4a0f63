// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns text into vectors. The OpenAI-compatible client
// is the production provider; Local is a deterministic in-process fallback
// for offline mode and tests.
package embedding

import "context"

// Provider produces fixed-dimensionality embedding vectors.
type Provider interface {
	// Embed returns the vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimension returns the vector dimensionality.
	Dimension() int
}
