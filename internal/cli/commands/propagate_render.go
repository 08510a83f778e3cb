package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/propagate"
)

// reportColumns are the table headers of the propagate report.
var reportColumns = []string{"entity.column", "status", "inherited_description", "target_file", "source_file"}

// reportView selects what part of a report is rendered.
type reportView struct {
	RunID         string
	All           bool
	PreviewLength int
}

// PropagateOutput is the JSON output for the propagate command.
type PropagateOutput struct {
	RunID   string                   `json:"run_id"`
	Summary string                   `json:"summary"`
	Total   int                      `json:"total"`
	Counts  map[propagate.Status]int `json:"counts"`
	Entries []propagate.Entry        `json:"entries"`
}

func renderReport(r *output.Renderer, report *propagate.Report, view reportView) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return reportJSON(r, report, view)
	case output.ModeMarkdown:
		reportMarkdown(r, report, view)
	default:
		reportText(r, report, view)
	}
	return nil
}

// visibleEntries returns the rows shown in the table.
func visibleEntries(report *propagate.Report, all bool) []propagate.Entry {
	if all {
		return report.Entries
	}
	return report.Actionable()
}

// reportRow renders the cells of one table row.
func reportRow(e propagate.Entry, previewLength int) []string {
	return []string{
		e.Key(),
		e.StatusLabel(),
		propagate.Preview(e.Description, previewLength),
		propagate.OrPlaceholder(e.TargetFile),
		propagate.OrPlaceholder(e.SourceFile),
	}
}

// statusTitle turns "no_source" into "No Source".
func statusTitle(s propagate.Status) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// statusStyle colors a status cell in text mode.
func statusStyle(styles *output.Styles, s propagate.Status) lipgloss.Style {
	switch s {
	case propagate.StatusInherited, propagate.StatusResolved:
		return styles.Success
	case propagate.StatusAmbiguous, propagate.StatusNoSource:
		return styles.Warning
	case propagate.StatusUnresolved:
		return styles.Error
	default:
		return styles.Muted
	}
}

func reportText(r *output.Renderer, report *propagate.Report, view reportView) {
	styles := r.Styles()

	r.Header(1, "Column Description Propagation")
	r.Println(report.Summary())
	r.Println("")

	entries := visibleEntries(report, view.All)
	if len(entries) == 0 {
		r.Println(styles.Success.Render("No columns need review."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(reportColumns))
	for i, c := range reportColumns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, e := range entries {
		cells := reportRow(e, view.PreviewLength)
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		row[1] = statusStyle(styles, e.Status).Render(cells[1])
		t.AppendRow(row)
	}
	t.Render()

	r.Println("")
	for _, s := range propagate.Statuses {
		if n := report.Counts[s]; n > 0 {
			r.Printf("  %s %d\n", styles.Muted.Render(statusTitle(s)+":"), n)
		}
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d columns, %d need review", report.Total(), len(report.Actionable()))))
}

func reportMarkdown(r *output.Renderer, report *propagate.Report, view reportView) {
	r.Println(output.FormatHeader(1, "Column Description Propagation"))
	r.Println("")
	r.Println(report.Summary())
	r.Println("")

	entries := visibleEntries(report, view.All)
	if len(entries) == 0 {
		r.Println("No columns need review.")
		r.Println("")
	} else {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, reportRow(e, view.PreviewLength))
		}
		r.Println(output.FormatMarkdownTable(reportColumns, rows))
	}

	r.Println(output.FormatHeader(2, "Summary"))
	for _, s := range propagate.Statuses {
		r.Println(output.FormatKeyValue(statusTitle(s), fmt.Sprintf("%d", report.Counts[s])))
	}
	r.Println(output.FormatKeyValue("Total Columns", fmt.Sprintf("%d", report.Total())))
}

func reportJSON(r *output.Renderer, report *propagate.Report, view reportView) error {
	return r.JSON(PropagateOutput{
		RunID:   view.RunID,
		Summary: report.Summary(),
		Total:   report.Total(),
		Counts:  report.Counts,
		Entries: visibleEntries(report, view.All),
	})
}
