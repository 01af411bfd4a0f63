// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seed loads YAML knowledge documents, embeds their sections, and
// upserts them into the vector index.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/mfreytag/diag-engine/internal/embedding"
	"github.com/mfreytag/diag-engine/internal/vectorindex"
)

// Document is one YAML knowledge file: shared metadata plus sections.
type Document struct {
	VehicleType string    `yaml:"vehicle_type"`
	Variant     string    `yaml:"variant"`
	DataType    string    `yaml:"data_type"`
	Sections    []Section `yaml:"sections"`
}

// Section is one indexable passage.
type Section struct {
	ID               string `yaml:"id"`
	Text             string `yaml:"text"`
	ComponentID      string `yaml:"component_id"`
	Priority         string `yaml:"priority"`
	CrewRole         string `yaml:"crew_role"`
	MaintenanceLevel string `yaml:"maintenance_level"`
	Checkpoint       int    `yaml:"checkpoint"`
}

// Summary reports what one seeding run did.
type Summary struct {
	Files    int
	Sections int
	Skipped  int
	Warnings []string
}

// Seeder embeds and indexes knowledge documents.
type Seeder struct {
	provider embedding.Provider
	index    vectorindex.Index
	out      io.Writer
}

// New wires a seeder. Progress goes to out; pass nil to silence it.
func New(provider embedding.Provider, index vectorindex.Index, out io.Writer) *Seeder {
	if out == nil {
		out = io.Discard
	}
	return &Seeder{provider: provider, index: index, out: out}
}

// Run seeds every YAML document under docsDir. Point identifiers are
// derived from section IDs, so re-seeding the same documents overwrites
// rather than duplicates. Malformed sections are skipped with a warning;
// a malformed file or a failed embed aborts the run.
func (s *Seeder) Run(ctx context.Context, docsDir string, truncate bool) (Summary, error) {
	var summary Summary

	files, err := listDocs(docsDir)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		return summary, fmt.Errorf("seed: no yaml documents under %s", docsDir)
	}

	if err := s.index.EnsureCollection(ctx, s.provider.Dimension()); err != nil {
		return summary, fmt.Errorf("seed: ensure collection: %w", err)
	}
	if truncate {
		if err := s.index.Truncate(ctx); err != nil {
			return summary, fmt.Errorf("seed: truncate: %w", err)
		}
		fmt.Fprintln(s.out, "Bestand geleert")
	}

	for _, path := range files {
		doc, err := loadDocument(path)
		if err != nil {
			return summary, err
		}

		points, skipped, warnings := s.buildPoints(ctx, doc, path)
		if len(points) > 0 {
			if err := s.index.Upsert(ctx, points); err != nil {
				return summary, fmt.Errorf("seed: upsert %s: %w", filepath.Base(path), err)
			}
		}

		summary.Files++
		summary.Sections += len(points)
		summary.Skipped += skipped
		summary.Warnings = append(summary.Warnings, warnings...)
		fmt.Fprintf(s.out, "%s: %d Abschnitte indexiert\n", filepath.Base(path), len(points))
	}

	fmt.Fprintf(s.out, "Fertig: %d Dateien, %d Abschnitte, %d übersprungen\n",
		summary.Files, summary.Sections, summary.Skipped)
	return summary, nil
}

func (s *Seeder) buildPoints(ctx context.Context, doc Document, path string) ([]vectorindex.Point, int, []string) {
	var (
		points   []vectorindex.Point
		skipped  int
		warnings []string
	)
	for i, section := range doc.Sections {
		if strings.TrimSpace(section.ID) == "" || strings.TrimSpace(section.Text) == "" {
			skipped++
			warnings = append(warnings,
				fmt.Sprintf("%s: Abschnitt %d ohne id oder text übersprungen", filepath.Base(path), i))
			continue
		}

		vector, err := s.provider.Embed(ctx, section.Text)
		if err != nil {
			skipped++
			warnings = append(warnings,
				fmt.Sprintf("%s: Abschnitt %s nicht eingebettet: %v", filepath.Base(path), section.ID, err))
			continue
		}

		points = append(points, vectorindex.Point{
			ID:     PointID(section.ID),
			Vector: vector,
			Payload: vectorindex.Payload{
				Text:             section.Text,
				SectionID:        section.ID,
				ComponentID:      section.ComponentID,
				Priority:         section.Priority,
				DataType:         doc.DataType,
				VehicleType:      doc.VehicleType,
				Variant:          doc.Variant,
				CrewRole:         section.CrewRole,
				MaintenanceLevel: section.MaintenanceLevel,
				CheckpointNumber: section.Checkpoint,
			},
		})
	}
	return points, skipped, warnings
}

// PointID derives a stable UUID from a section identifier.
func PointID(sectionID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sectionID)).String()
}

func listDocs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadDocument(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("seed: read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("seed: parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
