package acquire

import (
	"fmt"
	"os"
	"path/filepath"
)

// GazeDataFileName is the name the gaze CSV is stored under locally.
const GazeDataFileName = "hazardous_detection_gaze_data.csv"

// Layout is the directory tree one acquisition run creates and the
// visualization pipeline later consumes.
type Layout struct {
	Base       string
	GazeData   string
	Cityscapes string
	Temp       string
}

// NewLayout builds the layout rooted at dir/eye_gaze_research.
func NewLayout(dir string) Layout {
	base := filepath.Join(dir, "eye_gaze_research")
	return Layout{
		Base:       base,
		GazeData:   filepath.Join(base, "gaze_data"),
		Cityscapes: filepath.Join(base, "cityscapes"),
		Temp:       filepath.Join(base, "temp"),
	}
}

// GazeDataPath is where the downloaded gaze CSV lives.
func (l Layout) GazeDataPath() string {
	return filepath.Join(l.GazeData, GazeDataFileName)
}

// MappingCopyPath is where the mapping file copy lives.
func (l Layout) MappingCopyPath() string {
	return filepath.Join(l.GazeData, "mapping.csv")
}

// ArchivePath is the transient location of the downloaded archive.
func (l Layout) ArchivePath() string {
	return filepath.Join(l.Temp, "cityscapes.zip")
}

// ReportPath is where the acquisition summary is written.
func (l Layout) ReportPath() string {
	return filepath.Join(l.Base, "setup_report.yaml")
}

// Ensure creates the layout's directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Base, l.GazeData, l.Cityscapes, l.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
