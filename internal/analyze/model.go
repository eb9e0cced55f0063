package analyze

import (
	"time"

	"github.com/bayneri/bunk/internal/attendance"
)

const SchemaVersion = "1.0"

type Result struct {
	SchemaVersion string                `json:"schemaVersion"`
	Name          string                `json:"name,omitempty"`
	Student       string                `json:"student,omitempty"`
	GeneratedAt   time.Time             `json:"generatedAt"`
	Query         attendance.Query      `json:"query"`
	Status        string                `json:"status"`
	Projection    attendance.Projection `json:"projection"`
	Chart         Chart                 `json:"chart"`
	Notes         []string              `json:"notes,omitempty"`
	Explain       *Explain              `json:"explain,omitempty"`
}

// Chart holds the two bars handed to whatever draws the comparison, plus
// the upper bound of the value axis.
type Chart struct {
	Current  float64 `json:"current"`
	Required float64 `json:"required"`
	YMax     float64 `json:"yMax"`
}

type Explain struct {
	Formula string   `json:"formula"`
	Notes   []string `json:"notes"`
}
