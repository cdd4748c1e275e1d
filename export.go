package phonecrawler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportJSON writes v as pretty-printed JSON under storage/data/<name>/,
// mirroring the persisted schema field-for-field. Returns the written path.
func (app *Harvester) ExportJSON(label string, v interface{}) (string, error) {
	directory := filepath.Join("storage", "data", app.Name)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", time.Now().Format("2006_01_02"), label)
	path := filepath.Join(directory, filename)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", label, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
