package starlark

import (
	"github.com/leapstack-labs/docprop/internal/propagate"
	"go.starlark.net/starlark"
)

// Predeclared returns the globals visible to description expressions:
// env, this and inherit.
func Predeclared(env string, this *ThisInfo) starlark.StringDict {
	globals := starlark.StringDict{
		"env":     starlark.String(env),
		"inherit": starlark.NewBuiltin("inherit", inherit),
	}
	if this != nil {
		globals["this"] = this.ToStarlark()
	}
	return globals
}

// inherit(target, column) returns the encoded directive asking for
// target.column's description.
func inherit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target, column string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "target", &target, "column", &column); err != nil {
		return nil, err
	}
	return starlark.String(propagate.EncodeDirective(target, column)), nil
}
