package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
)

type Options struct {
	Explain  bool
	Timezone *time.Location
}

func WriteMarkdownSummary(path string, result analyze.Result, opts Options) error {
	return os.WriteFile(path, []byte(MarkdownSummary(result, opts)), 0644)
}

func MarkdownSummary(result analyze.Result, opts Options) string {
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	var b strings.Builder
	q := result.Query
	p := result.Projection

	fmt.Fprintf(&b, "# Attendance projection\n\n")
	if result.Name != "" {
		fmt.Fprintf(&b, "- Course: %s\n", result.Name)
	}
	if result.Student != "" {
		fmt.Fprintf(&b, "- Student: %s\n", result.Student)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", result.GeneratedAt.In(opts.Timezone).Format(time.RFC3339))
	fmt.Fprintf(&b, "- Attendance: %d/%d\n", q.Present, q.Total)
	fmt.Fprintf(&b, "- Status: %s\n\n", result.Status)

	fmt.Fprintf(&b, "| Metric | Value |\n")
	fmt.Fprintf(&b, "| --- | --- |\n")
	if p.Status == attendance.StatusUndefined {
		fmt.Fprintf(&b, "| Current attendance | undefined |\n")
	} else {
		fmt.Fprintf(&b, "| Current attendance | %.2f%% |\n", p.CurrentPercentage)
	}
	fmt.Fprintf(&b, "| Required attendance | %.2f%% |\n", q.RequiredPercentage)
	switch p.Status {
	case attendance.StatusBelow:
		if p.Unreachable {
			fmt.Fprintf(&b, "| Classes needed | unreachable |\n")
		} else {
			fmt.Fprintf(&b, "| Classes needed | %d |\n", p.NeededClasses)
		}
	case attendance.StatusAbove:
		if p.Unlimited {
			fmt.Fprintf(&b, "| Bunkable classes | unlimited |\n")
		} else {
			fmt.Fprintf(&b, "| Bunkable classes | %d |\n", p.BunkableClasses)
			fmt.Fprintf(&b, "| Total after bunking | %d |\n", p.FinalTotal)
			fmt.Fprintf(&b, "| Attendance after bunking | %.2f%% |\n", p.FinalPercentage)
		}
	}

	if len(result.Notes) > 0 {
		fmt.Fprintf(&b, "\n## Notes & assumptions\n")
		for _, note := range result.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	if opts.Explain && result.Explain != nil {
		fmt.Fprintf(&b, "\n## How computed\n")
		fmt.Fprintf(&b, "\nFormula: %s\n", result.Explain.Formula)
	}

	return b.String()
}
