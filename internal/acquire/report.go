package acquire

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the machine-readable summary of one acquisition run.
type Report struct {
	Timestamp        string `yaml:"timestamp"`
	BaseDir          string `yaml:"basedir"`
	GazeDataPath     string `yaml:"gazedatapath"`
	MappingEntries   int    `yaml:"mappingentries"`
	CityscapesRun    bool   `yaml:"cityscapesrun"`
	EntriesExtracted int    `yaml:"entriesextracted"`
	ImagesConverted  int    `yaml:"imagesconverted"`
}

// NewReport stamps a report with the current time.
func NewReport(baseDir string) *Report {
	return &Report{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		BaseDir:   baseDir,
	}
}

// Save writes the report as YAML.
func (r *Report) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// LoadReport reads a previously saved report.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}
