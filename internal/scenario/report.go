package scenario

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"
)

// WriteText writes a human-readable summary of the report.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "scenario %s (%d steps, %s)\n", r.Scenario, len(r.Steps), r.Duration)
	writeState(tw, "init", r.Initial)
	for _, st := range r.Steps {
		writeState(tw, fmt.Sprintf("%d %s", st.Index, st.Action), st.State)
		for _, f := range st.Failures {
			fmt.Fprintf(tw, "\tFAIL\t%s\n", f)
		}
	}
	return tw.Flush()
}

func writeState(w io.Writer, label string, s Snapshot) {
	fmt.Fprintf(w, "%s", label)
	for _, name := range slices.Sorted(maps.Keys(s.Values)) {
		fmt.Fprintf(w, "\t%s=%d", name, s.Values[name])
	}
	fmt.Fprintln(w)

	if len(s.Runs) > 0 {
		fmt.Fprintf(w, "\truns")
		for _, name := range slices.Sorted(maps.Keys(s.Runs)) {
			fmt.Fprintf(w, "\t%s=%d", name, s.Runs[name])
		}
		fmt.Fprintln(w)
	}
	for _, name := range slices.Sorted(maps.Keys(s.Selected)) {
		fmt.Fprintf(w, "\tselected\t%s=%v\n", name, s.Selected[name])
	}
}
