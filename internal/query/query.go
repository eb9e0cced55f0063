package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bayneri/bunk/internal/attendance"
)

const (
	APIVersionV1        = "bunk.dev/v1"
	KindAttendanceQuery = "AttendanceQuery"
)

type Document struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   Metadata         `yaml:"metadata"`
	Attendance attendance.Query `yaml:"attendance"`
}

type Metadata struct {
	Name    string            `yaml:"name"`
	Student string            `yaml:"student"`
	Project string            `yaml:"project"`
	Labels  map[string]string `yaml:"labels"`
}

var labelKeyRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,99}$`)

func (d Document) Validate() error {
	var errs []string
	if d.APIVersion != APIVersionV1 {
		errs = append(errs, fmt.Sprintf("apiVersion must be %q", APIVersionV1))
	}
	if d.Kind != KindAttendanceQuery {
		errs = append(errs, fmt.Sprintf("kind must be %q", KindAttendanceQuery))
	}
	for key := range d.Metadata.Labels {
		if !labelKeyRe.MatchString(key) {
			errs = append(errs, fmt.Sprintf("metadata.labels key %q must be lowercase letters, digits, or underscores", key))
		}
	}
	if err := d.Attendance.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("attendance: %s", err))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// RequireName is enforced only by commands that publish or export, since
// those key their resources on the course name.
func (d Document) RequireName() error {
	if strings.TrimSpace(d.Metadata.Name) == "" {
		return errors.New("metadata.name is required")
	}
	return nil
}
