// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Local is a deterministic in-process embedder: tokens are hashed into
// dimension buckets and the resulting term-frequency vector is normalized.
// Texts sharing vocabulary land close under cosine similarity, which is
// enough for offline mode and tests; it is no substitute for a learned
// model.
type Local struct {
	dimension int
}

// NewLocal returns a local embedder with the given dimensionality.
func NewLocal(dimension int) *Local {
	if dimension <= 0 {
		dimension = 256
	}
	return &Local{dimension: dimension}
}

// Dimension returns the vector dimensionality.
func (l *Local) Dimension() int { return l.dimension }

// Embed maps text onto a normalized hashed bag-of-words vector.
func (l *Local) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, l.dimension)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%l.dimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

var _ Provider = (*Local)(nil)
