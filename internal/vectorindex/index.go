// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorindex abstracts the nearest-neighbor store holding the
// vehicle knowledge base. The Qdrant backend talks REST; the memory
// backend serves tests and offline mode.
package vectorindex

import "context"

// Payload carries the structured tags stored alongside each vector.
type Payload struct {
	Text             string `json:"text"`
	SectionID        string `json:"section_id"`
	ComponentID      string `json:"component_id,omitempty"`
	Priority         string `json:"priority,omitempty"`
	DataType         string `json:"data_type,omitempty"`
	VehicleType      string `json:"vehicle_type,omitempty"`
	Variant          string `json:"variant,omitempty"`
	CrewRole         string `json:"crew_role,omitempty"`
	MaintenanceLevel string `json:"maintenance_level,omitempty"`
	CheckpointNumber int    `json:"checkpoint_number,omitempty"`
}

// Field returns the payload value for a filter key, or "" for unknown keys.
func (p Payload) Field(key string) string {
	switch key {
	case "vehicle_type":
		return p.VehicleType
	case "variant":
		return p.Variant
	case "crew_role":
		return p.CrewRole
	case "maintenance_level":
		return p.MaintenanceLevel
	case "priority":
		return p.Priority
	case "component_id":
		return p.ComponentID
	case "data_type":
		return p.DataType
	}
	return ""
}

// Point is one indexed knowledge passage.
type Point struct {
	ID      string
	Vector  []float64
	Payload Payload
}

// Match is one query result: the stored payload and its cosine similarity.
type Match struct {
	Payload Payload
	Score   float64
}

// Index is the nearest-neighbor search contract. Filters are exact-match
// on payload fields; an empty filter map means no restriction.
type Index interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []Point) error
	Query(ctx context.Context, vector []float64, topK int, filter map[string]string) ([]Match, error)
	Truncate(ctx context.Context) error
}

// matchesFilter reports whether every filter entry equals the payload field.
func matchesFilter(p Payload, filter map[string]string) bool {
	for key, want := range filter {
		if p.Field(key) != want {
			return false
		}
	}
	return true
}
