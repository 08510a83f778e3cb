package propagate

import (
	"log/slog"
	"sort"
	"strings"
)

// resolveDirective classifies a column whose description is a directive.
func resolveDirective(cat Catalog, entry Entry, desc string, logger *slog.Logger) Entry {
	d, err := DecodeDirective(desc)
	if err != nil {
		logger.Debug("unresolvable directive", "column", entry.Key(), "error", err)
		return unresolved(entry, d)
	}

	for _, cand := range directiveCandidates(cat, d.Target) {
		col, ok := cand.Column(d.Column)
		if !ok || !isInheritable(col.Description) {
			continue
		}
		entry.Status = StatusResolved
		entry.Description = col.Description
		entry.SourceEntity = cand.Name
		entry.SourceColumn = col.Name
		entry.SourceFile = cand.FilePath
		return entry
	}

	return unresolved(entry, d)
}

func unresolved(entry Entry, d Directive) Entry {
	entry.Status = StatusUnresolved
	entry.Description = ""
	entry.SourceEntity = d.Target
	entry.SourceColumn = d.Column
	entry.SourceFile = ""
	return entry
}

// directiveCandidates returns the entities a directive target may name:
// exact display-name matches first, then entities whose name ends with
// "."+target. Each group is ordered by entity ID.
func directiveCandidates(cat Catalog, target string) []*Entity {
	var exact, suffix []*Entity
	for _, e := range cat {
		switch {
		case e.Name == target:
			exact = append(exact, e)
		case strings.HasSuffix(e.Name, directiveSep+target):
			suffix = append(suffix, e)
		}
	}
	byID := func(s []*Entity) {
		sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	}
	byID(exact)
	byID(suffix)
	return append(exact, suffix...)
}
