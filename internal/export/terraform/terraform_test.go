package terraform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bayneri/bunk/internal/analyze"
	"github.com/bayneri/bunk/internal/attendance"
	"github.com/bayneri/bunk/internal/planner"
)

func TestWriteTerraformExport(t *testing.T) {
	result, err := analyze.Run(analyze.Options{
		Name:  "physics-101",
		Query: attendance.Query{Present: 35, Total: 40, RequiredPercentage: 75},
		Now:   time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	plan := planner.Build(result, planner.Options{Project: "demo"})

	dir := t.TempDir()
	path, err := Write(plan, dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected output in temp dir, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var cfg struct {
		Resource map[string]map[string]map[string]interface{} `json:"resource"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	descriptors := cfg.Resource["google_monitoring_metric_descriptor"]
	if len(descriptors) != 4 {
		t.Fatalf("expected 4 metric descriptors, got %d", len(descriptors))
	}
	bunkable := descriptors["bunkable_classes"]
	if bunkable["value_type"] != "INT64" {
		t.Fatalf("expected INT64 bunkable descriptor, got %v", bunkable["value_type"])
	}
	dashboard := cfg.Resource["google_monitoring_dashboard"]["physics_101_attendance"]
	if dashboard == nil || dashboard["dashboard_json"] == "" {
		t.Fatalf("expected dashboard resource, got %v", cfg.Resource["google_monitoring_dashboard"])
	}
}

func TestTFName(t *testing.T) {
	if got := tfName("metric", "current_percentage"); got != "current_percentage" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := tfName("dashboard", "101-attendance"); got != "dashboard_101_attendance" {
		t.Fatalf("unexpected name %q", got)
	}
}
