package propagate

import "log/slog"

// BuildParentIndex indexes the inheritable columns of e's direct parents by
// column name. Only real descriptions count: empty values and directives are
// left out. Parents missing from the catalog contribute nothing.
func BuildParentIndex(cat Catalog, e *Entity, logger *slog.Logger) ParentIndex {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	idx := make(ParentIndex)
	for _, pid := range e.ParentIDs {
		parent, ok := cat[pid]
		if !ok {
			logger.Debug("dangling parent reference", "entity", e.Name, "parent", pid)
			continue
		}

		for _, name := range parent.ColumnOrder {
			col := parent.Columns[name]
			if !isInheritable(col.Description) {
				continue
			}
			idx[name] = append(idx[name], ParentMatch{
				ParentID:    parent.ID,
				ParentName:  parent.Name,
				Description: col.Description,
				FilePath:    parent.FilePath,
			})
		}
	}
	return idx
}

// isInheritable reports whether a description is real text.
func isInheritable(desc string) bool {
	return desc != "" && !IsDirective(desc)
}
