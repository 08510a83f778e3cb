package project

import (
	"strings"

	"github.com/leapstack-labs/docprop/internal/propagate"
)

// ModelDecl is a derived entity declared by a SQL file.
type ModelDecl struct {
	// Name defaults to the file name without ".sql"
	Name string
	// Folder is the directory below the models dir, dot-separated ("staging.orders")
	Folder string
	// File is the path relative to the project root, slash-separated
	File        string
	Description string
	DependsOn   []string
	Columns     []propagate.Column
}

// QualifiedName returns "folder.name", or the name for top-level models.
func (m *ModelDecl) QualifiedName() string {
	if m.Folder == "" {
		return m.Name
	}
	return m.Folder + "." + m.Name
}

// ID returns the entity ID.
func (m *ModelDecl) ID() string {
	return "model." + m.QualifiedName()
}

// Node converts the declaration for the engine.
func (m *ModelDecl) Node() propagate.Node {
	return propagate.Node{
		ID:       m.ID(),
		Name:     m.Name,
		Type:     propagate.NodeModel,
		FilePath: m.File,
		Columns:  m.Columns,
	}
}

// SourceDecl is a root entity declared in a sources YAML file.
type SourceDecl struct {
	Group   string
	Member  string
	File    string
	Columns []propagate.Column
}

// Name returns "group.member".
func (s *SourceDecl) Name() string {
	return s.Group + "." + s.Member
}

// ID returns the entity ID.
func (s *SourceDecl) ID() string {
	return "source." + s.Name()
}

// Node converts the declaration for the engine.
func (s *SourceDecl) Node() propagate.Node {
	return propagate.Node{
		ID:       s.ID(),
		Name:     s.Name(),
		Type:     propagate.NodeSource,
		FilePath: s.File,
		Columns:  s.Columns,
	}
}

// folderOf turns a slash-separated directory into a dotted folder name.
func folderOf(dir string) string {
	if dir == "." || dir == "" {
		return ""
	}
	return strings.ReplaceAll(dir, "/", ".")
}

// checkColumns rejects repeated column names.
func checkColumns(file, entity string, cols []propagate.Column) error {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c.Name]; dup {
			return &DuplicateColumnError{File: file, Entity: entity, Column: c.Name}
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
