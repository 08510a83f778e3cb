package propagate

import "errors"

// ErrGraphUnavailable is returned when no graph can be read. It is the only
// failure that aborts a run; every per-column problem becomes a Status.
var ErrGraphUnavailable = errors.New("graph unavailable")

// NodeType is the type of a node as reported by a graph provider.
type NodeType string

// Node types known to the catalog builder.
const (
	NodeModel  NodeType = "model"
	NodeSource NodeType = "source"
	NodeSeed   NodeType = "seed"
	NodeTest   NodeType = "test"
	NodeMacro  NodeType = "macro"
)

// Node is one unit supplied by a graph provider.
type Node struct {
	// ID is the unique identifier (e.g. "model.stg_customers")
	ID string
	// Name is the display name: "<group>.<member>" for sources, the model name otherwise
	Name string
	// Type decides whether the node becomes an entity
	Type NodeType
	// FilePath is the declaration location, possibly with a scheme prefix
	FilePath string
	// Columns in declaration order
	Columns []Column
}

// Graph is the read-only view of the host DAG the engine consumes.
// Implementations must return nodes and parents in a stable order.
type Graph interface {
	Nodes() []Node
	Parents(id string) []string
}

// Kind distinguishes root entities from derived ones.
type Kind string

// Entity kinds.
const (
	KindRoot    Kind = "root"
	KindDerived Kind = "derived"
)

// Column is a named, described field of one entity.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Entity is a documentable unit in the catalog.
type Entity struct {
	ID        string
	Name      string
	Kind      Kind
	FilePath  string
	ParentIDs []string
	Columns   map[string]Column
	// ColumnOrder preserves declaration order for display.
	ColumnOrder []string
}

// Column returns the named column.
func (e *Entity) Column(name string) (Column, bool) {
	c, ok := e.Columns[name]
	return c, ok
}

// Catalog maps entity IDs to entities. It is read-only once built.
type Catalog map[string]*Entity

// ParentMatch is an inheritable description offered by one direct parent.
type ParentMatch struct {
	ParentName  string
	Description string
	FilePath    string
	// ParentID is kept for de-duplication and provenance.
	ParentID string
}

// ParentIndex maps column names to the matches offered by direct parents,
// in parent-iteration order.
type ParentIndex map[string][]ParentMatch

// Status is the inheritance outcome of one column.
type Status string

// Inheritance outcomes. Exhaustive and mutually exclusive.
const (
	StatusInherited         Status = "inherited"
	StatusResolved          Status = "resolved"
	StatusAmbiguous         Status = "ambiguous"
	StatusNoSource          Status = "no_source"
	StatusUnresolved        Status = "unresolved"
	StatusAlreadyDocumented Status = "already_documented"
)

// Statuses lists every status in report order.
var Statuses = []Status{
	StatusInherited,
	StatusResolved,
	StatusAmbiguous,
	StatusNoSource,
	StatusUnresolved,
	StatusAlreadyDocumented,
}

// IsActionable reports whether entries with this status need review.
func (s Status) IsActionable() bool {
	return s != StatusAlreadyDocumented
}

// Entry is the classification of one column of a derived entity.
type Entry struct {
	EntityName   string   `json:"entity"`
	ColumnName   string   `json:"column"`
	Status       Status   `json:"status"`
	Candidates   []string `json:"candidates,omitempty"`
	Description  string   `json:"description,omitempty"`
	TargetFile   string   `json:"target_file,omitempty"`
	SourceEntity string   `json:"source_entity,omitempty"`
	SourceColumn string   `json:"source_column,omitempty"`
	SourceFile   string   `json:"source_file,omitempty"`
}

// Key returns "entity.column".
func (e Entry) Key() string {
	return e.EntityName + "." + e.ColumnName
}
