package propagate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Placeholder is shown in place of an empty description or path.
const Placeholder = "-"

// Report is the outcome of one run.
type Report struct {
	// Counts holds a count for every status, zero included.
	Counts map[Status]int `json:"counts"`
	// Entries holds every column of every derived entity, sorted by entity then column.
	Entries []Entry `json:"entries"`
}

func newReport() *Report {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	return &Report{Counts: counts, Entries: []Entry{}}
}

func (r *Report) add(e Entry) {
	r.Counts[e.Status]++
	r.Entries = append(r.Entries, e)
}

func (r *Report) sort() {
	sort.SliceStable(r.Entries, func(i, j int) bool {
		a, b := r.Entries[i], r.Entries[j]
		if a.EntityName != b.EntityName {
			return a.EntityName < b.EntityName
		}
		return a.ColumnName < b.ColumnName
	})
}

// Actionable returns the entries that need review, i.e. all but already_documented.
func (r *Report) Actionable() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Status.IsActionable() {
			out = append(out, e)
		}
	}
	return out
}

// Total returns the number of classified columns.
func (r *Report) Total() int {
	return len(r.Entries)
}

// Has reports whether any column ended with one of the given statuses.
func (r *Report) Has(statuses ...Status) bool {
	for _, s := range statuses {
		if r.Counts[s] > 0 {
			return true
		}
	}
	return false
}

// Summary returns the counts in report order:
// "inherited=N resolved=N ambiguous=N no_source=N unresolved=N already_documented=N".
func (r *Report) Summary() string {
	parts := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", s, r.Counts[s]))
	}
	return strings.Join(parts, " ")
}

// StatusLabel renders the status cell, listing contenders for ambiguous entries.
func (e Entry) StatusLabel() string {
	if e.Status == StatusAmbiguous && len(e.Candidates) > 0 {
		return fmt.Sprintf("%s (%s)", e.Status, strings.Join(e.Candidates, ", "))
	}
	return string(e.Status)
}

// Preview bounds s to maxLen runes for display, marking cut text with "...".
// Newlines are flattened. Empty input yields Placeholder.
func Preview(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Placeholder
	}
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// OrPlaceholder returns s, or Placeholder when s is empty.
func OrPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
