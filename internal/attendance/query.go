package attendance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Query is one attendance snapshot. The tags mirror the checks a caller
// must make before handing the snapshot to Project.
type Query struct {
	Present            int     `json:"present" yaml:"present" validate:"gte=0,ltefield=Total"`
	Total              int     `json:"total" yaml:"total" validate:"gte=0"`
	RequiredPercentage float64 `json:"required" yaml:"required" validate:"gt=0,lte=100"`
}

var validate = validator.New()

// Validate reports every violated precondition in a single error.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate query: %w", err)
	}
	var msgs []string
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Project runs the projector on the snapshot.
func (q Query) Project() Projection {
	return Project(q.Present, q.Total, q.RequiredPercentage)
}

func describe(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Present":
		if fe.Tag() == "ltefield" {
			return "classes present cannot be more than total classes"
		}
		return "classes present must not be negative"
	case "Total":
		return "total classes must not be negative"
	case "RequiredPercentage":
		return "required percentage must be greater than 0 and at most 100"
	default:
		return fe.Error()
	}
}
