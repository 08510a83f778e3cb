package project

import (
	"sort"
	"strings"
)

// Registry maps the names a declaration may use in depends_on to entity IDs.
//
// Models are reachable as "name" and as their folder-qualified name
// ("staging.stg_orders" for models/staging/stg_orders.sql). Sources are
// reachable as "group.member".
type Registry struct {
	// byRef maps every accepted reference to an entity ID
	byRef map[string]string
	// files maps entity IDs to their declaring files
	files map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byRef: make(map[string]string),
		files: make(map[string]string),
	}
}

// RegisterModel adds a model under its name and folder-qualified name.
func (r *Registry) RegisterModel(m *ModelDecl) error {
	if err := r.claim(m.Name, m.ID(), m.File); err != nil {
		return err
	}
	if m.Folder != "" {
		return r.claim(m.QualifiedName(), m.ID(), m.File)
	}
	return nil
}

// RegisterSource adds a source table under "group.member".
func (r *Registry) RegisterSource(s *SourceDecl) error {
	return r.claim(s.Name(), s.ID(), s.File)
}

func (r *Registry) claim(ref, id, file string) error {
	if prev, ok := r.byRef[ref]; ok && prev != id {
		return &DuplicateEntityError{Name: ref, First: r.files[prev], Second: file}
	}
	r.byRef[ref] = id
	r.files[id] = file
	return nil
}

// Resolve returns the entity ID a reference names.
func (r *Registry) Resolve(ref string) (string, bool) {
	id, ok := r.byRef[strings.TrimSpace(ref)]
	return id, ok
}

// ResolveAll resolves refs in order, dropping repeats of the same entity.
// The first reference that names nothing is returned as unknown.
func (r *Registry) ResolveAll(refs []string) (ids []string, unknown string) {
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		id, ok := r.Resolve(ref)
		if !ok {
			return nil, ref
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, ""
}

// Refs returns every accepted reference, sorted.
func (r *Registry) Refs() []string {
	refs := make([]string, 0, len(r.byRef))
	for ref := range r.byRef {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
