// Package propagate resolves column descriptions across a model DAG.
//
// A description written once on an upstream column can flow to downstream
// columns in two ways:
//
//   - auto-match: a downstream column with an empty description inherits from
//     the single direct parent that declares a column of the same name with a
//     real description;
//   - directive: a description of the form "Inherited: <target>.<column>"
//     (see EncodeDirective) names the upstream column explicitly.
//
// Every column of every derived entity is classified exactly once into one of
// the statuses in Statuses. The engine never mutates the graph and never
// follows grandparents: only direct parents take part in auto-matching.
//
// Usage:
//
//	eng := propagate.New(propagate.Config{Logger: logger})
//	report, err := eng.Run(graph)
//	if err != nil {
//	    return err // the graph could not be read
//	}
//	fmt.Println(report.Summary())
//	for _, e := range report.Actionable() {
//	    ...
//	}
package propagate
