package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
	"github.com/bayneri/bunk/internal/config"
	"github.com/bayneri/bunk/internal/report"
)

type projectOptions struct {
	file      string
	present   int
	total     int
	required  float64
	name      string
	student   string
	out       string
	format    string
	explain   bool
	timezone  string
	failBelow bool
}

func runProject(args []string) error {
	defaults, err := config.LoadDefaults(config.DotEnvFile)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := &projectOptions{}
	fs.StringVar(&opts.file, "f", "", "path to attendance query (flags override its values)")
	fs.IntVar(&opts.present, "present", defaults.Present, "classes attended")
	fs.IntVar(&opts.total, "total", defaults.Total, "classes held")
	fs.Float64Var(&opts.required, "required", defaults.Required, "required attendance percentage")
	fs.StringVar(&opts.name, "name", "", "course name")
	fs.StringVar(&opts.student, "student", "", "student name")
	fs.StringVar(&opts.out, "out", defaults.OutDir, "output directory for reports")
	fs.StringVar(&opts.format, "format", "md,json", "comma-separated report formats")
	fs.BoolVar(&opts.explain, "explain", false, "include formulas and notes")
	fs.StringVar(&opts.timezone, "timezone", defaults.Timezone, "IANA timezone for reports")
	fs.BoolVar(&opts.failBelow, "fail-below", false, "exit 2 when attendance is below the requirement")

	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	analyzeOpts, err := projectInput(fs, opts)
	if err != nil {
		return err
	}
	result, err := analyze.Run(analyzeOpts)
	if err != nil {
		return err
	}

	report.Render(os.Stdout, result)
	if opts.explain && result.Explain != nil {
		fmt.Fprintf(os.Stdout, "\nformula: %s\n", result.Explain.Formula)
	}

	if opts.out != "" {
		if err := writeReports(opts.out, parseFormat(opts.format), result, report.Options{Explain: opts.explain, Timezone: loc}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote reports to %s\n", opts.out)
	}

	if opts.failBelow && result.Projection.Status == attendance.StatusBelow {
		return exitError{code: 2, err: errors.New("attendance is below the requirement")}
	}
	return nil
}

// projectInput starts from the query file when one is given and lets any
// flag set on the command line override it.
func projectInput(fs *flag.FlagSet, opts *projectOptions) (analyze.Options, error) {
	in := analyze.Options{
		Name:    opts.name,
		Student: opts.student,
		Explain: opts.explain,
		Query: attendance.Query{
			Present:            opts.present,
			Total:              opts.total,
			RequiredPercentage: opts.required,
		},
	}
	if opts.file == "" {
		return in, nil
	}

	doc, err := loadDocument(opts.file)
	if err != nil {
		return analyze.Options{}, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	q := doc.Attendance
	if set["present"] {
		q.Present = opts.present
	}
	if set["total"] {
		q.Total = opts.total
	}
	if set["required"] {
		q.RequiredPercentage = opts.required
	}
	in.Query = q
	if !set["name"] {
		in.Name = doc.Metadata.Name
	}
	if !set["student"] {
		in.Student = doc.Metadata.Student
	}
	return in, nil
}

func writeReports(outDir string, formats []string, result analyze.Result, opts report.Options) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if includesFormat(formats, "md") {
		if err := report.WriteMarkdownSummary(filepath.Join(outDir, "summary.md"), result, opts); err != nil {
			return err
		}
	}
	if includesFormat(formats, "json") {
		if err := report.WriteSummaryJSON(filepath.Join(outDir, "summary.json"), result); err != nil {
			return err
		}
	}
	return nil
}

func parseFormat(input string) []string {
	if strings.TrimSpace(input) == "" {
		return []string{"md", "json"}
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return []string{"md", "json"}
	}
	return out
}

func includesFormat(formats []string, value string) bool {
	for _, format := range formats {
		if format == value {
			return true
		}
	}
	return false
}
