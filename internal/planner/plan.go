package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
)

const ManagedByLabel = "managed-by"
const ManagedByValue = "bunk"

const (
	MetricPrefix = "custom.googleapis.com/bunk/"

	ValueDouble = "double"
	ValueInt64  = "int64"
)

type Plan struct {
	Project     string
	Course      string
	CourseID    string
	Student     string
	GeneratedAt time.Time
	Required    float64
	// SeriesLabels are attached to every written point and must match the
	// label keys declared on the metric descriptors.
	SeriesLabels map[string]string
	Metrics      []MetricPlan
	Dashboard    DashboardPlan
}

type MetricPlan struct {
	ID          string
	Type        string
	DisplayName string
	Description string
	Unit        string
	ValueType   string
	Value       float64
	HasValue    bool
}

type DashboardPlan struct {
	ID          string
	DisplayName string
	Course      string
	Labels      map[string]string
}

type Options struct {
	ProjectOverride string
	Project         string
	Labels          map[string]string
	ExtraLabels     map[string]string
}

func Build(result analyze.Result, opts Options) Plan {
	labels := mergeLabels(opts.Labels, opts.ExtraLabels)
	courseID := sanitizeID(result.Name)
	labels[ManagedByLabel] = ManagedByValue
	labels["course"] = courseID

	project := opts.Project
	if opts.ProjectOverride != "" {
		project = opts.ProjectOverride
	}

	seriesLabels := map[string]string{"course": courseID}
	if result.Student != "" {
		seriesLabels["student"] = result.Student
	}

	return Plan{
		Project:      project,
		Course:       result.Name,
		CourseID:     courseID,
		Student:      result.Student,
		GeneratedAt:  result.GeneratedAt,
		Required:     result.Query.RequiredPercentage,
		SeriesLabels: seriesLabels,
		Metrics:      metricPlans(result),
		Dashboard: DashboardPlan{
			ID:          fmt.Sprintf("%s-attendance", courseID),
			DisplayName: fmt.Sprintf("%s attendance", result.Name),
			Course:      result.Name,
			Labels:      labels,
		},
	}
}

func metricPlans(result analyze.Result) []MetricPlan {
	p := result.Projection
	current := MetricPlan{
		ID:          "current_percentage",
		DisplayName: "Current attendance",
		Description: "Classes attended as a percentage of classes held",
		Unit:        "%",
		ValueType:   ValueDouble,
		Value:       p.CurrentPercentage,
		HasValue:    p.Status != attendance.StatusUndefined,
	}
	required := MetricPlan{
		ID:          "required_percentage",
		DisplayName: "Required attendance",
		Description: "Minimum attendance percentage required by policy",
		Unit:        "%",
		ValueType:   ValueDouble,
		Value:       result.Query.RequiredPercentage,
		HasValue:    true,
	}
	needed := MetricPlan{
		ID:          "needed_classes",
		DisplayName: "Classes needed",
		Description: "Consecutive classes to attend to reach the requirement",
		Unit:        "1",
		ValueType:   ValueInt64,
		Value:       float64(p.NeededClasses),
		HasValue:    p.Status == attendance.StatusBelow && !p.Unreachable,
	}
	bunkable := MetricPlan{
		ID:          "bunkable_classes",
		DisplayName: "Bunkable classes",
		Description: "Classes that can be missed while staying at or above the requirement",
		Unit:        "1",
		ValueType:   ValueInt64,
		Value:       float64(p.BunkableClasses),
		HasValue:    p.Status == attendance.StatusAbove && !p.Unlimited,
	}
	plans := []MetricPlan{current, required, needed, bunkable}
	for i := range plans {
		plans[i].Type = MetricPrefix + plans[i].ID
	}
	return plans
}

// Metric looks up a planned metric by ID.
func (p Plan) Metric(id string) (MetricPlan, bool) {
	for _, m := range p.Metrics {
		if m.ID == id {
			return m, true
		}
	}
	return MetricPlan{}, false
}

func mergeLabels(base, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func sanitizeID(input string) string {
	normalized := strings.ToLower(input)
	var out []rune
	lastDash := false
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			lastDash = false
			continue
		}
		if !lastDash {
			out = append(out, '-')
			lastDash = true
		}
	}
	result := strings.Trim(string(out), "-")
	if result == "" {
		return "course"
	}
	return result
}

func SortedLabels(labels map[string]string) []string {
	var out []string
	for k, v := range labels {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
