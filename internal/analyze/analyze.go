package analyze

import (
	"fmt"
	"strings"
	"time"

	"github.com/bayneri/bunk/internal/attendance"
)

const (
	StatusOK          = "ok"
	StatusBelow       = "below"
	StatusUnreachable = "unreachable"
	StatusUndefined   = "undefined"
)

type Options struct {
	Name    string
	Student string
	Query   attendance.Query
	Explain bool
	Now     time.Time
}

func Run(opts Options) (Result, error) {
	if err := opts.Query.Validate(); err != nil {
		return Result{}, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	projection := opts.Query.Project()
	status, notes := classify(opts.Query, projection)

	projection.CurrentPercentage = round4(projection.CurrentPercentage)
	projection.FinalPercentage = round4(projection.FinalPercentage)

	result := Result{
		SchemaVersion: SchemaVersion,
		Name:          strings.TrimSpace(opts.Name),
		Student:       strings.TrimSpace(opts.Student),
		GeneratedAt:   now.UTC().Truncate(time.Second),
		Query:         opts.Query,
		Status:        status,
		Projection:    projection,
		Chart: Chart{
			Current:  projection.CurrentPercentage,
			Required: round4(opts.Query.RequiredPercentage),
			YMax:     round4(chartBounds(projection.CurrentPercentage, opts.Query.RequiredPercentage)),
		},
		Notes: notes,
	}
	if opts.Explain {
		result.Explain = &Explain{
			Formula: formulaFor(projection),
			Notes:   notes,
		}
	}
	return result, nil
}

func classify(q attendance.Query, p attendance.Projection) (string, []string) {
	var notes []string
	switch p.Status {
	case attendance.StatusUndefined:
		notes = append(notes, "no classes held yet; attendance percentage is undefined")
		return StatusUndefined, notes
	case attendance.StatusBelow:
		if p.Unreachable {
			notes = append(notes, fmt.Sprintf("%.2f%% cannot be reached once a class has been missed", q.RequiredPercentage))
			return StatusUnreachable, notes
		}
		return StatusBelow, notes
	}
	ratio := float64(q.Present) / float64(q.Total)
	if ratio < q.RequiredPercentage/100 {
		notes = append(notes, "current attendance is within tolerance of the requirement and counts as meeting it")
	}
	if p.Unlimited {
		notes = append(notes, "requirement allows every future class to be skipped")
	}
	return StatusOK, notes
}

func formulaFor(p attendance.Projection) string {
	switch p.Status {
	case attendance.StatusBelow:
		return "r = required / 100; needed = ceil((r * total - present) / (1 - r))"
	case attendance.StatusAbove:
		return "r = required / 100; bunkable = max(floor(present / r) - total, 0); finalTotal = total + bunkable"
	default:
		return "current = present / total * 100 (undefined when total = 0)"
	}
}
