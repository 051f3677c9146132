package visualize

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/lennox55555/HAHD/internal/acquire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildTree lays down a minimal acquisition output tree: gaze CSV plus one
// converted image with three viewing sessions.
func buildTree(t *testing.T) string {
	t.Helper()
	baseDir := t.TempDir()
	layout := acquire.NewLayout(baseDir)

	if err := os.MkdirAll(layout.GazeData, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(layout.Cityscapes, 0755); err != nil {
		t.Fatal(err)
	}

	gazeCSV := "testSet,questionImage,timestamp,gaze1X,gaze1Y,gaze1Time,gaze2X,gaze2Y,gaze2Time\n"
	for i := 1; i <= 3; i++ {
		gazeCSV += fmt.Sprintf("testA,img1.jpg,%d000,5,5,0.1,12,8,0.9\n", i)
	}
	if err := os.WriteFile(layout.GazeDataPath(), []byte(gazeCSV), 0644); err != nil {
		t.Fatal(err)
	}

	img := imaging.New(32, 16, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	if err := imaging.Save(img, filepath.Join(layout.Cityscapes, "img1.jpg")); err != nil {
		t.Fatal(err)
	}

	return baseDir
}

func TestNewMissingTree(t *testing.T) {
	_, err := New(t.TempDir(), testLogger())
	if err == nil {
		t.Error("Expected error for missing acquisition tree, got nil")
	}
}

func TestNewLoadsDataset(t *testing.T) {
	baseDir := buildTree(t)

	v, err := New(baseDir, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if len(v.dataset.Records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(v.dataset.Records))
	}
	if v.dataset.SampleColumns != 2 {
		t.Errorf("Expected 2 sample columns, got %d", v.dataset.SampleColumns)
	}
}

func TestVisualizeAll(t *testing.T) {
	baseDir := buildTree(t)

	v, err := New(baseDir, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	v.Seed(1)
	v.Sigma = 2 // keep the test fast

	outputDir := filepath.Join(baseDir, "eye_gaze_research", "visualizations")
	if err := v.VisualizeAll(outputDir); err != nil {
		t.Fatalf("VisualizeAll failed: %v", err)
	}

	// Only one image group qualifies, so exactly one output file appears,
	// named after its test set and image.
	outputPath := filepath.Join(outputDir, "attention_testA_img1.jpg.png")
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("Expected visualization at %s: %v", outputPath, err)
	}

	out, err := imaging.Open(outputPath)
	if err != nil {
		t.Fatalf("Failed to open visualization: %v", err)
	}
	if out.Bounds().Dx() == 0 || out.Bounds().Dy() == 0 {
		t.Error("Expected non-empty visualization")
	}
}

func TestVisualizeAllMissingImage(t *testing.T) {
	baseDir := buildTree(t)
	layout := acquire.NewLayout(baseDir)

	if err := os.Remove(filepath.Join(layout.Cityscapes, "img1.jpg")); err != nil {
		t.Fatal(err)
	}

	v, err := New(baseDir, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	v.Seed(1)

	if err := v.VisualizeAll(filepath.Join(baseDir, "out")); err == nil {
		t.Error("Expected error for missing source image, got nil")
	}
}
