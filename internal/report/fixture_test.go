package report

import (
	"time"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
)

func aboveResult() analyze.Result {
	return analyze.Result{
		SchemaVersion: analyze.SchemaVersion,
		Name:          "physics-101",
		Student:       "asha",
		GeneratedAt:   time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
		Query:         attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75},
		Status:        analyze.StatusOK,
		Projection: attendance.Projection{
			Status:             attendance.StatusAbove,
			CurrentPercentage:  87.5,
			RequiredPercentage: 75,
			BunkableClasses:    6,
			FinalTotal:         46,
			FinalPercentage:    76.087,
		},
		Chart: analyze.Chart{Current: 87.5, Required: 75, YMax: 97.5},
	}
}
