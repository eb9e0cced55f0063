package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/config"
	"github.com/bayneri/bunk/internal/explain"
	"github.com/bayneri/bunk/internal/monitoring"
	"github.com/bayneri/bunk/internal/planner"
	"github.com/bayneri/bunk/internal/query"
)

const version = "0.1.0"

type commandOptions struct {
	file    string
	project string
	dryRun  bool
	verbose bool
	labels  string

	defaultProject string
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "project":
		err = runProject(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "explain":
		err = runExplain(os.Args[2:])
	case "publish":
		err = runPublish(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "bunk - how many classes can you skip?")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  bunk project  --present 30 --total 40 --required 75")
	fmt.Fprintln(os.Stderr, "  bunk project  -f course.yaml --out out --format md,json")
	fmt.Fprintln(os.Stderr, "  bunk validate -f course.yaml")
	fmt.Fprintln(os.Stderr, "  bunk explain  needed|bunk|edges")
	fmt.Fprintln(os.Stderr, "  bunk publish  -f course.yaml --project my-gcp-project")
	fmt.Fprintln(os.Stderr, "  bunk export   terraform|monitoring-json -f course.yaml")
	fmt.Fprintln(os.Stderr, "  bunk delete   -f course.yaml")
	fmt.Fprintln(os.Stderr, "  bunk serve    --addr :8080")
}

func baseFlags(cmd string) (*flag.FlagSet, *commandOptions, error) {
	defaults, err := config.LoadDefaults(config.DotEnvFile)
	if err != nil {
		return nil, nil, err
	}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := &commandOptions{defaultProject: defaults.Project}
	fs.StringVar(&opts.file, "f", "", "path to attendance query")
	fs.StringVar(&opts.project, "project", "", "GCP project ID (overrides metadata.project, falls back to BUNK_PROJECT)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "show planned changes without applying")
	fs.BoolVar(&opts.verbose, "verbose", false, "verbose output")
	fs.StringVar(&opts.labels, "labels", "", "extra labels in key=value,key=value format")
	return fs, opts, nil
}

func runValidate(args []string) error {
	fs, opts, err := baseFlags("validate")
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	doc, err := loadDocument(opts.file)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Query %q is valid.\n", doc.Metadata.Name)
	return nil
}

func runExplain(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("explain requires a topic: %s", strings.Join(explain.Topics(), "|"))
	}
	text, err := explain.Topic(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}

func runPublish(args []string) error {
	fs, opts, err := baseFlags("publish")
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := buildPlan(opts)
	if err != nil {
		return err
	}
	if opts.dryRun {
		planner.Render(os.Stdout, plan)
		return nil
	}
	ctx := context.Background()
	client, err := monitoring.NewGCPClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := monitoring.Publish(ctx, client, plan); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Published %d metrics and 1 dashboard for %s in project %s.\n", len(plan.Metrics), plan.Course, plan.Project)
	fmt.Fprintf(os.Stdout, "Cloud Console: https://console.cloud.google.com/monitoring/dashboards?project=%s\n", plan.Project)
	if opts.verbose {
		planner.Render(os.Stdout, plan)
	}
	return nil
}

func runDelete(args []string) error {
	fs, opts, err := baseFlags("delete")
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := buildPlan(opts)
	if err != nil {
		return err
	}
	if opts.dryRun {
		fmt.Fprintf(os.Stdout, "Delete would remove the %s dashboard in project %s.\n", plan.Dashboard.DisplayName, plan.Project)
		return nil
	}
	ctx := context.Background()
	client, err := monitoring.NewGCPClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := monitoring.DeletePlan(ctx, client, plan); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted managed dashboards for %s in project %s.\n", plan.Course, plan.Project)
	return nil
}

func loadDocument(path string) (query.Document, error) {
	if strings.TrimSpace(path) == "" {
		return query.Document{}, errors.New("-f is required")
	}
	doc, err := query.Load(path)
	if err != nil {
		return query.Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return query.Document{}, err
	}
	return doc, nil
}

func buildPlan(opts *commandOptions) (planner.Plan, error) {
	labels, err := query.ParseLabels(opts.labels)
	if err != nil {
		return planner.Plan{}, err
	}
	doc, err := loadDocument(opts.file)
	if err != nil {
		return planner.Plan{}, err
	}
	if err := doc.RequireName(); err != nil {
		return planner.Plan{}, err
	}
	project := doc.Metadata.Project
	if strings.TrimSpace(project) == "" {
		project = opts.defaultProject
	}
	if strings.TrimSpace(opts.project) == "" && strings.TrimSpace(project) == "" {
		return planner.Plan{}, errors.New("project is required via --project, metadata.project, or BUNK_PROJECT")
	}
	if opts.project != "" && doc.Metadata.Project != "" && opts.project != doc.Metadata.Project {
		return planner.Plan{}, fmt.Errorf("--project %q does not match metadata.project %q", opts.project, doc.Metadata.Project)
	}

	result, err := analyze.Run(analyze.Options{
		Name:    doc.Metadata.Name,
		Student: doc.Metadata.Student,
		Query:   doc.Attendance,
	})
	if err != nil {
		return planner.Plan{}, err
	}
	return planner.Build(result, planner.Options{
		ProjectOverride: opts.project,
		Project:         project,
		Labels:          doc.Metadata.Labels,
		ExtraLabels:     labels,
	}), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	type exitCoder interface {
		ExitCode() int
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		os.Exit(coded.ExitCode())
	}
	os.Exit(1)
}
