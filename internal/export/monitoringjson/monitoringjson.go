package monitoringjson

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bayneri/bunk/internal/monitoring"
	"github.com/bayneri/bunk/internal/planner"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const outputFile = "monitoring.json"

// Write renders the payloads publish would send, without calling the API.
func Write(plan planner.Plan, outDir string) (string, error) {
	if outDir == "" {
		outDir = filepath.Join("out", "monitoring-json")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	var descriptors []interface{}
	for _, metric := range plan.Metrics {
		item, err := protoToInterface(monitoring.BuildMetricDescriptor(plan.Project, metric))
		if err != nil {
			return "", err
		}
		descriptors = append(descriptors, item)
	}

	var series []interface{}
	for _, ts := range monitoring.BuildTimeSeries(plan) {
		item, err := protoToInterface(ts)
		if err != nil {
			return "", err
		}
		series = append(series, item)
	}

	dashboardJSON, err := protoToInterface(monitoring.BuildDashboard(plan))
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"metricDescriptors": descriptors,
		"timeSeries":        series,
		"dashboard":         dashboardJSON,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
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

func protoToInterface(msg proto.Message) (interface{}, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
