package terraform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bayneri/bunk/internal/monitoring"
	"github.com/bayneri/bunk/internal/planner"
)

const outputFile = "main.tf.json"

func Write(plan planner.Plan, outDir string) (string, error) {
	if outDir == "" {
		outDir = filepath.Join("out", "terraform")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}
	dashboardJSON, err := monitoring.BuildDashboardJSON(plan)
	if err != nil {
		return "", err
	}

	cfg := map[string]interface{}{
		"terraform": map[string]interface{}{
			"required_providers": map[string]interface{}{
				"google": map[string]interface{}{
					"source":  "hashicorp/google",
					"version": ">= 5.0",
				},
			},
		},
		"provider": map[string]interface{}{
			"google": map[string]interface{}{
				"project": plan.Project,
			},
		},
		"resource": buildResources(plan, dashboardJSON),
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	data = append(data, '\n')
	path := filepath.Join(outDir, outputFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func buildResources(plan planner.Plan, dashboardJSON string) map[string]map[string]interface{} {
	resources := map[string]map[string]interface{}{}

	descriptors := map[string]interface{}{}
	for _, metric := range plan.Metrics {
		descriptors[tfName("metric", metric.ID)] = buildDescriptorResource(plan, metric)
	}
	resources["google_monitoring_metric_descriptor"] = descriptors

	resources["google_monitoring_dashboard"] = map[string]interface{}{
		tfName("dashboard", plan.Dashboard.ID): map[string]interface{}{
			"project":        plan.Project,
			"dashboard_json": dashboardJSON,
		},
	}

	return resources
}

func buildDescriptorResource(plan planner.Plan, metric planner.MetricPlan) map[string]interface{} {
	return map[string]interface{}{
		"project":      plan.Project,
		"type":         metric.Type,
		"metric_kind":  "GAUGE",
		"value_type":   strings.ToUpper(metric.ValueType),
		"unit":         metric.Unit,
		"description":  metric.Description,
		"display_name": metric.DisplayName,
		"labels": []map[string]interface{}{
			{"key": "course", "value_type": "STRING", "description": "Course the attendance belongs to"},
			{"key": "student", "value_type": "STRING", "description": "Student the attendance belongs to"},
		},
	}
}

func tfName(prefix, value string) string {
	normalized := strings.ToLower(value)
	var out []rune
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		return fmt.Sprintf("%s_%s", prefix, string(out))
	}
	return string(out)
}
