// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreytag/diag-engine/internal/embedding"
	"github.com/mfreytag/diag-engine/internal/vectorindex"
)

const manualDoc = `vehicle_type: leopard2
data_type: manual
sections:
  - id: tdv-4.2
    text: Bei Überhitzung Kühlmittelstand und Thermostat prüfen
    component_id: mtu_mb873
    checkpoint: 42
  - id: tdv-9.1
    text: Kettenspannung nach Geländefahrt kontrollieren
`

const defectDoc = `vehicle_type: leopard2
data_type: defect
sections:
  - id: defekt-118
    text: Kühlmittelpumpe fördert nicht
    component_id: mtu_mb873
    priority: high
  - id: ""
    text: Abschnitt ohne Kennung
`

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestSeedRun(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"manual.yaml":  manualDoc,
		"defects.yaml": defectDoc,
	})

	index := vectorindex.NewMemory()
	var out bytes.Buffer
	seeder := New(embedding.NewLocal(32), index, &out)

	summary, err := seeder.Run(context.Background(), dir, false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 3, summary.Sections)
	assert.Equal(t, 1, summary.Skipped, "the id-less section is skipped")
	assert.Len(t, summary.Warnings, 1)
	assert.Equal(t, 3, index.Len())
	assert.Contains(t, out.String(), "Fertig: 2 Dateien, 3 Abschnitte, 1 übersprungen")
}

func TestSeedIsIdempotent(t *testing.T) {
	dir := writeDocs(t, map[string]string{"manual.yaml": manualDoc})
	index := vectorindex.NewMemory()
	seeder := New(embedding.NewLocal(32), index, nil)

	_, err := seeder.Run(context.Background(), dir, false)
	require.NoError(t, err)
	_, err = seeder.Run(context.Background(), dir, false)
	require.NoError(t, err)

	assert.Equal(t, 2, index.Len(), "stable point ids overwrite instead of duplicating")
}

func TestSeedTruncate(t *testing.T) {
	dir := writeDocs(t, map[string]string{"manual.yaml": manualDoc})
	index := vectorindex.NewMemory()
	seeder := New(embedding.NewLocal(32), index, nil)

	ctx := context.Background()
	require.NoError(t, index.EnsureCollection(ctx, 32))
	require.NoError(t, index.Upsert(ctx, []vectorindex.Point{{
		ID:      "stale",
		Vector:  make([]float64, 32),
		Payload: vectorindex.Payload{SectionID: "alt"},
	}}))

	_, err := seeder.Run(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len(), "truncation removed the stale point")
}

func TestSeedEmptyDir(t *testing.T) {
	seeder := New(embedding.NewLocal(32), vectorindex.NewMemory(), nil)

	_, err := seeder.Run(context.Background(), t.TempDir(), false)
	assert.Error(t, err)
}

func TestSeedMalformedYAML(t *testing.T) {
	dir := writeDocs(t, map[string]string{"broken.yaml": "sections: [\n"})
	seeder := New(embedding.NewLocal(32), vectorindex.NewMemory(), nil)

	_, err := seeder.Run(context.Background(), dir, false)
	assert.Error(t, err)
}

func TestPointIDStable(t *testing.T) {
	assert.Equal(t, PointID("tdv-4.2"), PointID("tdv-4.2"))
	assert.NotEqual(t, PointID("tdv-4.2"), PointID("tdv-9.1"))
}
