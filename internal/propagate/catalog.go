package propagate

import (
	"log/slog"
	"strings"
)

// entityKind maps documentable node types to entity kinds.
// Node types absent from this map are excluded from the catalog.
var entityKind = map[NodeType]Kind{
	NodeModel:  KindDerived,
	NodeSource: KindRoot,
}

// BuildCatalog flattens the graph into a catalog of entities.
// Unsupported node types are skipped by type, never by position.
func BuildCatalog(g Graph, logger *slog.Logger) Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	nodes := g.Nodes()
	cat := make(Catalog, len(nodes))

	for _, n := range nodes {
		kind, ok := entityKind[n.Type]
		if !ok {
			logger.Debug("skipping undocumentable node", "id", n.ID, "type", n.Type)
			continue
		}

		e := &Entity{
			ID:          n.ID,
			Name:        n.Name,
			Kind:        kind,
			FilePath:    NormalizePath(n.FilePath),
			ParentIDs:   []string{},
			Columns:     make(map[string]Column, len(n.Columns)),
			ColumnOrder: make([]string, 0, len(n.Columns)),
		}

		for _, c := range n.Columns {
			if _, dup := e.Columns[c.Name]; dup {
				logger.Debug("ignoring duplicate column", "entity", n.Name, "column", c.Name)
				continue
			}
			e.Columns[c.Name] = c
			e.ColumnOrder = append(e.ColumnOrder, c.Name)
		}

		if kind == KindDerived {
			e.ParentIDs = uniqueStrings(g.Parents(n.ID))
		}

		cat[n.ID] = e
	}

	return cat
}

// NormalizePath strips a leading "<scheme>://" from a file path.
func NormalizePath(p string) string {
	if i := strings.Index(p, "://"); i > 0 && isScheme(p[:i]) {
		return p[i+len("://"):]
	}
	return p
}

// isScheme checks the RFC 3986 scheme grammar: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// uniqueStrings returns s without duplicates, keeping first occurrences.
func uniqueStrings(s []string) []string {
	out := make([]string, 0, len(s))
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
