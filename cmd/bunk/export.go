package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bayneri/bunk/internal/export/monitoringjson"
	"github.com/bayneri/bunk/internal/export/terraform"
)

func runExport(args []string) error {
	if len(args) == 0 {
		return errors.New("export requires a format: terraform|monitoring-json")
	}
	switch args[0] {
	case "terraform":
		return runExportTerraform(args[1:])
	case "monitoring-json":
		return runExportMonitoringJSON(args[1:])
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
}

func runExportTerraform(args []string) error {
	fs, opts, err := baseFlags("export terraform")
	if err != nil {
		return err
	}
	outDir := fs.String("out", "out/terraform", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := buildPlan(opts)
	if err != nil {
		return err
	}
	path, err := terraform.Write(plan, *outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote Terraform export to %s\n", path)
	return nil
}

func runExportMonitoringJSON(args []string) error {
	fs, opts, err := baseFlags("export monitoring-json")
	if err != nil {
		return err
	}
	outDir := fs.String("out", "out/monitoring-json", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, err := buildPlan(opts)
	if err != nil {
		return err
	}
	path, err := monitoringjson.Write(plan, *outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote Monitoring JSON export to %s\n", path)
	return nil
}
