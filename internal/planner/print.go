package planner

import (
	"fmt"
	"io"
	"strings"
	"time"
)

func Render(w io.Writer, plan Plan) {
	fmt.Fprintf(w, "Project: %s\n", plan.Project)
	fmt.Fprintf(w, "Course: %s\n", plan.Course)
	fmt.Fprintf(w, "Point time: %s\n", plan.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Metrics:")
	for _, m := range plan.Metrics {
		value := "no point"
		if m.HasValue {
			if m.ValueType == ValueInt64 {
				value = fmt.Sprintf("%d", int64(m.Value))
			} else {
				value = fmt.Sprintf("%.2f", m.Value)
			}
		}
		fmt.Fprintf(w, "- %s (%s, %s)\n", m.Type, m.ValueType, value)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Dashboard: %s\n", plan.Dashboard.DisplayName)
	fmt.Fprintf(w, "Labels: %s\n", strings.Join(SortedLabels(plan.Dashboard.Labels), ", "))
}
