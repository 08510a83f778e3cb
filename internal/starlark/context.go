package starlark

import (
	"regexp"
	"strings"

	"go.starlark.net/starlark"
)

// exprPattern matches {{ expr }} blocks.
var exprPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// ExecutionContext holds the globals for evaluating one declaration file.
type ExecutionContext struct {
	Env     string
	This    *ThisInfo
	globals starlark.StringDict
}

// NewExecutionContext creates a context for the given environment and entity.
func NewExecutionContext(env string, this *ThisInfo) *ExecutionContext {
	return &ExecutionContext{
		Env:     env,
		This:    this,
		globals: Predeclared(env, this),
	}
}

// Globals returns the predeclared globals.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	return ctx.globals
}

// EvalExpr evaluates a single expression.
func (ctx *ExecutionContext) EvalExpr(expr, filename string, line int) (starlark.Value, error) {
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	result, err := starlark.Eval(thread, filename, expr, ctx.globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{File: filename, Line: line, Expr: expr, Message: err.Error()}
	}
	return result, nil
}

// EvalExprString evaluates an expression and renders the result as text.
// None renders as the empty string.
func (ctx *ExecutionContext) EvalExprString(expr, filename string, line int) (string, error) {
	result, err := ctx.EvalExpr(expr, filename, line)
	if err != nil {
		return "", err
	}

	switch v := result.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return result.String(), nil
	}
}

// Render replaces every {{ expr }} block in text with its value.
// Text without blocks is returned unchanged.
func (ctx *ExecutionContext) Render(text, filename string, line int) (string, error) {
	if !HasExpr(text) {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range exprPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		expr := strings.TrimSpace(text[m[2]:m[3]])
		val, err := ctx.EvalExprString(expr, filename, line)
		if err != nil {
			return "", err
		}
		b.WriteString(val)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// HasExpr reports whether text contains a {{ expr }} block.
func HasExpr(text string) bool {
	return strings.Contains(text, "{{") && exprPattern.MatchString(text)
}
