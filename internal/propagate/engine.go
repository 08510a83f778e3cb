package propagate

import (
	"log/slog"
	"sort"
)

// Config holds engine configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine classifies columns of a graph. It keeps no state between runs.
type Engine struct {
	logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger}
}

// Run builds a fresh catalog from g and classifies every column of every
// derived entity. The only error is ErrGraphUnavailable for a nil graph.
func (e *Engine) Run(g Graph) (*Report, error) {
	if g == nil {
		return nil, ErrGraphUnavailable
	}

	cat := BuildCatalog(g, e.logger)
	report := newReport()

	for _, id := range derivedIDs(cat) {
		ent := cat[id]
		idx := BuildParentIndex(cat, ent, e.logger)
		for _, name := range ent.ColumnOrder {
			report.add(classify(cat, idx, ent, ent.Columns[name], e.logger))
		}
	}

	report.sort()

	e.logger.Debug("propagation complete",
		"entities", len(cat),
		"columns", report.Total(),
		"summary", report.Summary(),
	)

	return report, nil
}

// classify assigns exactly one status to a column.
func classify(cat Catalog, idx ParentIndex, ent *Entity, col Column, logger *slog.Logger) Entry {
	entry := Entry{
		EntityName: ent.Name,
		ColumnName: col.Name,
		TargetFile: ent.FilePath,
	}

	switch {
	case IsDirective(col.Description):
		return resolveDirective(cat, entry, col.Description, logger)
	case col.Description == "":
		return autoMatch(idx, entry)
	default:
		entry.Status = StatusAlreadyDocumented
		entry.Description = col.Description
		return entry
	}
}

// derivedIDs returns the IDs of derived entities in sorted order.
func derivedIDs(cat Catalog) []string {
	ids := make([]string, 0, len(cat))
	for id, ent := range cat {
		if ent.Kind == KindDerived {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
