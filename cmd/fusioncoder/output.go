package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fusionworks/fusioncoder/core"
)

// saveResult writes one result to a timestamped JSON file and returns the
// path.
func saveResult(dir string, result core.WorkflowResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("result_%s_%s.json", result.Task, time.Now().Format("20060102_150405"))
	if result.WorkflowID != "" {
		name = fmt.Sprintf("result_%s_%s_%s.json", result.Task, result.WorkflowID, time.Now().Format("20060102_150405"))
	}
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
