package project

import "fmt"

// FrontmatterParseError represents a declaration parsing error.
type FrontmatterParseError struct {
	File    string
	Line    int
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an unknown frontmatter field.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in frontmatter, use \"meta\" field for custom fields", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}

// DuplicateColumnError is returned when an entity declares a column twice.
type DuplicateColumnError struct {
	File   string
	Entity string
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: column %q declared more than once in %s", e.File, e.Column, e.Entity)
}

// DuplicateEntityError is returned when two declarations claim the same name.
type DuplicateEntityError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%q declared in both %s and %s", e.Name, e.First, e.Second)
}

// UnknownReferenceError is returned when depends_on names nothing declared.
type UnknownReferenceError struct {
	File string
	Ref  string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: depends_on %q does not name a model or source", e.File, e.Ref)
}
