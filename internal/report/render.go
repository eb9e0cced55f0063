package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
)

const barWidth = 40

// Render writes the narrative feedback followed by a text bar chart of
// current against required attendance.
func Render(w io.Writer, result analyze.Result) {
	for _, line := range Narrative(result) {
		fmt.Fprintln(w, line)
	}
	if result.Projection.Status == attendance.StatusUndefined {
		return
	}
	for _, note := range result.Notes {
		fmt.Fprintf(w, "note: %s\n", note)
	}

	fmt.Fprintln(w, "")
	renderBar(w, "Current", result.Chart.Current, result.Chart.YMax)
	renderBar(w, "Required", result.Chart.Required, result.Chart.YMax)
}

// Narrative is the user-facing feedback for a result, one sentence per line.
func Narrative(result analyze.Result) []string {
	q := result.Query
	p := result.Projection

	if p.Status == attendance.StatusUndefined {
		return []string{"No classes held yet; attendance is undefined."}
	}

	lines := []string{fmt.Sprintf("Current attendance: %d/%d -> %.2f%%", q.Present, q.Total, p.CurrentPercentage)}
	switch p.Status {
	case attendance.StatusBelow:
		lines = append(lines, "Your attendance is below the required threshold.")
		if p.Unreachable {
			lines = append(lines, fmt.Sprintf("%.2f%% can no longer be reached, even without missing another class.", q.RequiredPercentage))
		} else {
			lines = append(lines, fmt.Sprintf("You must attend %d more classes without missing any to reach %.2f%%.", p.NeededClasses, q.RequiredPercentage))
		}
	case attendance.StatusAbove:
		switch {
		case p.Unlimited:
			lines = append(lines, "You can bunk every remaining class.")
		case p.BunkableClasses == 0:
			lines = append(lines, "You can't bunk any more classes without dropping below the required attendance.")
		default:
			lines = append(lines,
				fmt.Sprintf("You can bunk %d more classes.", p.BunkableClasses),
				fmt.Sprintf("After bunking: %d/%d -> %.2f%%", q.Present, p.FinalTotal, p.FinalPercentage),
			)
		}
	}
	return lines
}

// BarFill returns how many of width cells a value fills on an axis ending at max.
func BarFill(value, max float64, width int) int {
	if max <= 0 {
		return 0
	}
	fill := int(math.Round(value / max * float64(width)))
	if fill < 0 {
		return 0
	}
	if fill > width {
		return width
	}
	return fill
}

func renderBar(w io.Writer, label string, value, max float64) {
	fill := BarFill(value, max, barWidth)
	fmt.Fprintf(w, "%-8s |%s%s| %6.2f%%\n", label, strings.Repeat("#", fill), strings.Repeat(" ", barWidth-fill), value)
}
