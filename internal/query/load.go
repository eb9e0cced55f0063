package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read query: %w", err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("parse query: %w", err)
	}
	return d, nil
}
