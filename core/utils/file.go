package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mediaforge/model"
)

// SaveFile writes data to path, creating parent directories as needed.
func SaveFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// DefaultOutputPath builds the conventional artifact location
// <outputDir>/<content_type>/<provider>_<timestamp><ext>, used whenever
// the caller gave no explicit --output path.
func DefaultOutputPath(outputDir string, contentType model.ContentType, provider, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return filepath.Join(outputDir, string(contentType), fmt.Sprintf("%s_%s%s", provider, timestamp, ext))
}
