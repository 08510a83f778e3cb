package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/leapstack-labs/docprop/internal/propagate"
)

// ManifestVersion is the manifest format written by this package.
const ManifestVersion = 1

// Manifest is a serialized project graph.
type Manifest struct {
	Version     int            `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Entries     []ManifestNode `json:"nodes"`

	parents map[string][]string
}

// ManifestNode is one node with its parent IDs.
type ManifestNode struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Type     propagate.NodeType `json:"type"`
	FilePath string             `json:"file_path,omitempty"`
	Columns  []propagate.Column `json:"columns"`
	Parents  []string           `json:"parents,omitempty"`
}

// NewManifest snapshots any graph.
func NewManifest(g propagate.Graph, generatedAt time.Time) *Manifest {
	m := &Manifest{
		Version:     ManifestVersion,
		GeneratedAt: generatedAt.UTC(),
	}
	for _, n := range g.Nodes() {
		cols := n.Columns
		if cols == nil {
			cols = []propagate.Column{}
		}
		m.Entries = append(m.Entries, ManifestNode{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			FilePath: n.FilePath,
			Columns:  cols,
			Parents:  g.Parents(n.ID),
		})
	}
	m.index()
	return m
}

// ReadManifest loads a manifest file.
// Every failure is wrapped with propagate.ErrGraphUnavailable.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-supplied by design
	if err != nil {
		return nil, fmt.Errorf("%w: %w", propagate.ErrGraphUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	m, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", propagate.ErrGraphUnavailable, path, err)
	}
	return m, nil
}

// DecodeManifest parses and validates a manifest.
// Parent IDs are kept as written, including ones that name no node.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (expected %d)", m.Version, ManifestVersion)
	}

	seen := make(map[string]struct{}, len(m.Entries))
	for i, n := range m.Entries {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	m.index()
	return &m, nil
}

// Write encodes the manifest as indented JSON.
func (m *Manifest) Write(w io.Writer) error {
	if m == nil {
		return errors.New("nil manifest")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Nodes returns the manifest nodes sorted by ID.
func (m *Manifest) Nodes() []propagate.Node {
	out := make([]propagate.Node, 0, len(m.Entries))
	for _, n := range m.Entries {
		out = append(out, propagate.Node{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			FilePath: n.FilePath,
			Columns:  n.Columns,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Parents returns the parent IDs recorded for id.
func (m *Manifest) Parents(id string) []string {
	return m.parents[id]
}

func (m *Manifest) index() {
	m.parents = make(map[string][]string, len(m.Entries))
	for _, n := range m.Entries {
		m.parents[n.ID] = n.Parents
	}
}
