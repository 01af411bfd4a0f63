// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the static component/taxonomy knowledge tables.
// The tables are versioned YAML, loaded into SQLite at process start and
// queried by ID or subsystem during diagnosis.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/mfreytag/diag-engine/pkg/types"
)

//go:embed components.yaml
var defaultSeed []byte

// seedFile is the YAML shape of the component seed.
type seedFile struct {
	FallbackComponent string                  `yaml:"fallback_component"`
	Components        []types.ComponentRecord `yaml:"components"`
}

// Store is the component catalog backed by SQLite.
type Store struct {
	db       *sql.DB
	fallback string
}

// NewStore opens (or creates in-memory) the catalog database and loads the
// seed. When cfg.SeedPath is empty the embedded seed is used.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	// An in-memory SQLite database lives per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	seed := defaultSeed
	if cfg.SeedPath != "" {
		seed, err = os.ReadFile(cfg.SeedPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("reading catalog seed: %w", err)
		}
	}
	if err := s.load(seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading catalog seed: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FallbackComponentID returns the canonical fallback component used when
// no component can be resolved from a symptom report.
func (s *Store) FallbackComponentID() string {
	return s.fallback
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hint_patterns TEXT,
			specs TEXT,
			monitoring_points TEXT,
			parts TEXT,
			common_failures TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS component_systems (
			system TEXT NOT NULL,
			component_id TEXT NOT NULL REFERENCES components(id),
			PRIMARY KEY (system, component_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_component_systems_system ON component_systems(system)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) load(seed []byte) error {
	var f seedFile
	if err := yaml.Unmarshal(seed, &f); err != nil {
		return fmt.Errorf("parsing seed YAML: %w", err)
	}
	if len(f.Components) == 0 {
		return fmt.Errorf("seed contains no components")
	}
	s.fallback = f.FallbackComponent
	if s.fallback == "" {
		s.fallback = f.Components[0].ID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO components
			(id, name, hint_patterns, specs, monitoring_points, parts, common_failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range f.Components {
		if c.ID == "" {
			return fmt.Errorf("seed component without id")
		}
		patternsJSON, _ := json.Marshal(c.HintPatterns)
		specsJSON, _ := json.Marshal(c.Specs)
		pointsJSON, _ := json.Marshal(c.MonitoringPoints)
		partsJSON, _ := json.Marshal(c.Parts)
		failuresJSON, _ := json.Marshal(c.CommonFailures)

		if _, err := stmt.Exec(c.ID, c.Name,
			string(patternsJSON), string(specsJSON), string(pointsJSON),
			string(partsJSON), string(failuresJSON)); err != nil {
			return fmt.Errorf("inserting component %s: %w", c.ID, err)
		}

		for _, system := range c.Systems {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO component_systems (system, component_id) VALUES (?, ?)`,
				string(system), c.ID); err != nil {
				return fmt.Errorf("mapping component %s to system %s: %w", c.ID, system, err)
			}
		}
	}

	return tx.Commit()
}

// ComponentsForSystem returns the component IDs mapped to a subsystem, in
// insertion order.
func (s *Store) ComponentsForSystem(ctx context.Context, tag types.SystemTag) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT component_id FROM component_systems WHERE system = ? ORDER BY rowid`, string(tag))
	if err != nil {
		return nil, fmt.Errorf("querying components for system %s: %w", tag, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning component id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Component returns the full record for one component ID.
func (s *Store) Component(ctx context.Context, id string) (types.ComponentRecord, error) {
	var (
		rec                                                       types.ComponentRecord
		patternsJSON, specsJSON, pointsJSON, partsJSON, failsJSON sql.NullString
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, hint_patterns, specs, monitoring_points, parts, common_failures
		 FROM components WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &patternsJSON, &specsJSON, &pointsJSON, &partsJSON, &failsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.ComponentRecord{}, fmt.Errorf("component %s not found", id)
		}
		return types.ComponentRecord{}, fmt.Errorf("looking up component %s: %w", id, err)
	}

	if patternsJSON.Valid {
		json.Unmarshal([]byte(patternsJSON.String), &rec.HintPatterns)
	}
	if specsJSON.Valid {
		json.Unmarshal([]byte(specsJSON.String), &rec.Specs)
	}
	if pointsJSON.Valid {
		json.Unmarshal([]byte(pointsJSON.String), &rec.MonitoringPoints)
	}
	if partsJSON.Valid {
		json.Unmarshal([]byte(partsJSON.String), &rec.Parts)
	}
	if failsJSON.Valid {
		json.Unmarshal([]byte(failsJSON.String), &rec.CommonFailures)
	}

	systems, err := s.systemsFor(ctx, id)
	if err != nil {
		return types.ComponentRecord{}, err
	}
	rec.Systems = systems

	return rec, nil
}

func (s *Store) systemsFor(ctx context.Context, id string) ([]types.SystemTag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT system FROM component_systems WHERE component_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying systems for component %s: %w", id, err)
	}
	defer rows.Close()

	var systems []types.SystemTag
	for rows.Next() {
		var system string
		if err := rows.Scan(&system); err != nil {
			return nil, fmt.Errorf("scanning system: %w", err)
		}
		systems = append(systems, types.SystemTag(system))
	}
	return systems, rows.Err()
}

// ComponentIDs returns every catalog ID in insertion order.
func (s *Store) ComponentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM components ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying component ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning component id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MatchHint resolves an operator-supplied component hint to a catalog ID
// via case-insensitive substring matching of the hint patterns. The first
// matching component in catalog order wins.
func (s *Store) MatchHint(ctx context.Context, hint string) (string, bool) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return "", false
	}

	ids, err := s.ComponentIDs(ctx)
	if err != nil {
		return "", false
	}

	for _, id := range ids {
		rec, err := s.Component(ctx, id)
		if err != nil {
			continue
		}
		for _, pattern := range rec.HintPatterns {
			if pattern != "" && strings.Contains(hint, pattern) {
				return id, true
			}
		}
	}
	return "", false
}
