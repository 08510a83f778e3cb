package propagate

import (
	"errors"
	"fmt"
	"strings"
)

// DirectivePrefix marks a description as an explicit inheritance request.
const DirectivePrefix = "Inherited: "

// directiveSep separates the target name from the column in a payload.
const directiveSep = "."

// Directive decoding errors. Both are recovered into StatusUnresolved.
var (
	ErrMalformedDirective = errors.New("malformed directive")
	ErrCompoundTarget     = errors.New("directive target is compound")
)

// Directive is a decoded explicit inheritance request.
type Directive struct {
	Target string
	Column string
}

// String returns the encoded form.
func (d Directive) String() string {
	return EncodeDirective(d.Target, d.Column)
}

// EncodeDirective returns the description placeholder that asks for
// target.column's description to be inherited.
//
// The returned value is a literal placeholder. Tools that read descriptions
// verbatim, without running propagation, will show "Inherited: ..." rather
// than the upstream text.
func EncodeDirective(target, column string) string {
	return DirectivePrefix + target + directiveSep + column
}

// IsDirective reports whether desc carries the directive prefix.
func IsDirective(desc string) bool {
	return strings.HasPrefix(desc, DirectivePrefix)
}

// DecodeDirective decodes a directive description.
//
// The payload is split at the first separator. A single-segment target
// ("stg_customers.user_id") decodes cleanly. A compound target such as
// "raw.customers.id" cannot be told apart from a one-segment target followed
// by a dotted column, so it is reported with ErrCompoundTarget instead of
// guessing where the target ends. Compound root entities can still be
// reached through their member name ("customers.id").
//
// On error the partially decoded directive is returned for reporting.
func DecodeDirective(desc string) (Directive, error) {
	if !IsDirective(desc) {
		return Directive{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedDirective, DirectivePrefix)
	}

	payload := strings.TrimSpace(strings.TrimPrefix(desc, DirectivePrefix))
	target, column, found := strings.Cut(payload, directiveSep)
	d := Directive{Target: target, Column: column}

	if !found || target == "" || column == "" {
		return d, fmt.Errorf("%w: %q", ErrMalformedDirective, payload)
	}
	if strings.Contains(column, directiveSep) {
		return d, fmt.Errorf("%w: %q", ErrCompoundTarget, payload)
	}
	return d, nil
}
