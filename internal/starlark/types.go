// Package starlark evaluates {{ expr }} blocks inside declared column
// descriptions.
package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ThisInfo describes the entity whose declaration is being evaluated.
// Exposed as the "this" global.
type ThisInfo struct {
	Name string // Display name ("stg_orders", "raw.orders")
	Kind string // "model" or "source"
	File string // Declaring file, relative to the project root
}

// ToStarlark converts ThisInfo to a Starlark struct value.
func (t *ThisInfo) ToStarlark() starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("this"), starlark.StringDict{
		"name": starlark.String(t.Name),
		"kind": starlark.String(t.Kind),
		"file": starlark.String(t.File),
	})
}

// EvalError represents an error during expression evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}
