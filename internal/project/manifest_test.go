package project

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_RoundTrip(t *testing.T) {
	p, err := loadProject(t, customersProject(t))
	require.NoError(t, err)

	generated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, NewManifest(p, generated).Write(&buf))

	m, err := DecodeManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, generated, m.GeneratedAt)
	assert.Equal(t, p.Nodes(), m.Nodes())
	for _, n := range p.Nodes() {
		assert.Equal(t, p.Parents(n.ID), m.Parents(n.ID), n.ID)
	}

	// Both graphs classify identically.
	eng := propagate.New(propagate.Config{})
	fromProject, err := eng.Run(p)
	require.NoError(t, err)
	fromManifest, err := eng.Run(m)
	require.NoError(t, err)
	assert.Equal(t, fromProject.Entries, fromManifest.Entries)
}

func TestDecodeManifest_KeepsDanglingParents(t *testing.T) {
	in := `{
  "version": 1,
  "nodes": [
    {"id": "model.b", "name": "b", "type": "model", "columns": [{"name": "x"}], "parents": ["model.gone"]},
    {"id": "seed.s", "name": "s", "type": "seed", "columns": []}
  ]
}`
	m, err := DecodeManifest(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"model.gone"}, m.Parents("model.b"))

	report, err := propagate.New(propagate.Config{}).Run(m)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, propagate.StatusNoSource, report.Entries[0].Status)
}

func TestDecodeManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"not json", "nope", "decode manifest"},
		{"wrong version", `{"version": 7, "nodes": []}`, "unsupported manifest version 7"},
		{"missing id", `{"version": 1, "nodes": [{"name": "a"}]}`, "node 0 has no id"},
		{"duplicate id", `{"version": 1, "nodes": [{"id": "a"}, {"id": "a"}]}`, `duplicate node id "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir() + "/missing.json")
	require.ErrorIs(t, err, propagate.ErrGraphUnavailable)
}
