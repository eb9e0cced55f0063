package server

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
	"github.com/bayneri/bunk/internal/report"
)

type projectionRequest struct {
	Name     string  `json:"name" form:"name" query:"name" validate:"max=100"`
	Student  string  `json:"student" form:"student" query:"student" validate:"max=100"`
	Present  int     `json:"present" form:"present" query:"present"`
	Total    int     `json:"total" form:"total" query:"total"`
	Required float64 `json:"required" form:"required" query:"required"`
}

func (r projectionRequest) query() attendance.Query {
	return attendance.Query{Present: r.Present, Total: r.Total, RequiredPercentage: r.Required}
}

var validate = validator.New()

type page struct {
	Request     projectionRequest
	Error       string
	Result      *analyze.Result
	Narrative   []string
	GeneratedAt string
}

func (s *server) form(c *fiber.Ctx) error {
	return c.Render("index", page{Request: projectionRequest{
		Present:  s.defaults.Present,
		Total:    s.defaults.Total,
		Required: s.defaults.Required,
	}})
}

func (s *server) submit(c *fiber.Ctx) error {
	var req projectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("index", page{
			Request: req,
			Error:   "please enter whole numbers for classes and a number for the percentage",
		})
	}
	result, err := s.project(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).Render("index", page{Request: req, Error: err.Error()})
	}
	return c.Render("index", page{
		Request:     req,
		Result:      &result,
		Narrative:   report.Narrative(result),
		GeneratedAt: result.GeneratedAt.In(s.location).Format(time.RFC1123),
	})
}

func (s *server) createProjection(c *fiber.Ctx) error {
	var req projectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	result, err := s.project(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *server) getProjection(c *fiber.Ctx) error {
	var req projectionRequest
	if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	result, err := s.project(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(result)
}

func (s *server) project(req projectionRequest) (analyze.Result, error) {
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var msgs []string
			for _, fe := range fieldErrs {
				msgs = append(msgs, strings.ToLower(fe.Field())+" must be at most "+fe.Param()+" characters")
			}
			return analyze.Result{}, errors.New(strings.Join(msgs, "; "))
		}
		return analyze.Result{}, err
	}
	return analyze.Run(analyze.Options{
		Name:    req.Name,
		Student: req.Student,
		Query:   req.query(),
		Now:     s.now(),
	})
}
