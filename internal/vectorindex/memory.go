// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process cosine-similarity index. It backs tests and the
// CLI's offline mode.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]Point
}

// NewMemory returns an empty in-process index.
func NewMemory() *Memory {
	return &Memory{points: make(map[string]Point)}
}

// EnsureCollection records the expected vector dimensionality.
func (m *Memory) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dimension
	return nil
}

// Upsert inserts or replaces points by ID.
func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range points {
		if m.dimension > 0 && len(p.Vector) != m.dimension {
			return fmt.Errorf("point %s: vector has %d dimensions, want %d", p.ID, len(p.Vector), m.dimension)
		}
		m.points[p.ID] = p
	}
	return nil
}

// Query returns the topK points passing the filter, ranked by cosine
// similarity to vector.
func (m *Memory) Query(_ context.Context, vector []float64, topK int, filter map[string]string) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.points))
	for _, p := range m.points {
		if !matchesFilter(p.Payload, filter) {
			continue
		}
		matches = append(matches, Match{Payload: p.Payload, Score: cosine(vector, p.Vector)})
	}

	// Ties break on section ID so results do not depend on map order.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Payload.SectionID < matches[j].Payload.SectionID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Truncate drops every point but keeps the collection.
func (m *Memory) Truncate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = make(map[string]Point)
	return nil
}

// Len returns the number of stored points.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
