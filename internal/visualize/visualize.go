// Package visualize loads the acquired gaze dataset and renders attention
// heatmaps over the associated images.
package visualize

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lennox55555/HAHD/internal/acquire"
	"github.com/lennox55555/HAHD/internal/gaze"
	"github.com/lennox55555/HAHD/internal/heatmap"
	"github.com/lennox55555/HAHD/internal/render"
)

// DefaultImageCount is how many images one run visualizes.
const DefaultImageCount = 3

// Visualizer renders heatmap visualizations from an acquisition tree.
type Visualizer struct {
	EyeGazeDir   string
	GazeDataPath string
	ImageDir     string

	Sigma float64

	dataset *gaze.Dataset
	rng     *rand.Rand
	log     *slog.Logger
}

// New validates the acquisition tree under baseDir and loads the gaze
// dataset.
func New(baseDir string, logger *slog.Logger) (*Visualizer, error) {
	layout := acquire.NewLayout(baseDir)

	v := &Visualizer{
		EyeGazeDir:   layout.Base,
		GazeDataPath: layout.GazeDataPath(),
		ImageDir:     layout.Cityscapes,
		Sigma:        heatmap.DefaultSigma,
		rng:          rand.New(rand.NewSource(rand.Int63())),
		log:          logger,
	}

	if _, err := os.Stat(v.GazeDataPath); err != nil {
		return nil, fmt.Errorf("gaze data not found at %s: run setup first", v.GazeDataPath)
	}
	if _, err := os.Stat(v.ImageDir); err != nil {
		return nil, fmt.Errorf("image directory not found at %s: run setup first", v.ImageDir)
	}

	logger.Info("Loading gaze data", "path", v.GazeDataPath)
	dataset, err := gaze.NewLoader(v.GazeDataPath).Load()
	if err != nil {
		return nil, err
	}
	v.dataset = dataset

	logger.Info("Gaze data loaded",
		"records", len(dataset.Records),
		"gaze_points_per_record", dataset.SampleColumns)

	return v, nil
}

// Seed makes image selection deterministic; useful for tests.
func (v *Visualizer) Seed(seed int64) {
	v.rng = rand.New(rand.NewSource(seed))
}

// VisualizeAll selects images with enough viewer coverage and writes one
// triptych PNG per selected image into outputDir.
func (v *Visualizer) VisualizeAll(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	selected := v.dataset.SelectRandomImages(v.rng, DefaultImageCount)
	v.log.Info("Selected images", "count", len(selected))

	for _, key := range selected {
		v.log.Info("Processing image", "test_set", key.TestSet, "image", key.QuestionImage)

		outputPath := filepath.Join(outputDir,
			fmt.Sprintf("attention_%s_%s.png", key.TestSet, key.QuestionImage))

		if err := v.visualizeImage(key, outputPath); err != nil {
			return fmt.Errorf("failed to visualize %s: %w", key, err)
		}

		v.log.Info("Saved visualization", "path", outputPath)
	}

	return nil
}

// visualizeImage builds the three heatmap variants for one image and writes
// the composited triptych.
func (v *Visualizer) visualizeImage(key gaze.GroupKey, outputPath string) error {
	img, err := imaging.Open(filepath.Join(v.ImageDir, key.QuestionImage))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	records := v.dataset.RecordsForImage(key)
	sessions := gaze.GroupByViewer(records)

	aggregate := heatmap.Aggregate(w, h, records, v.Sigma)
	layers := heatmap.PerViewer(w, h, records, v.Sigma)

	// Temporal view follows a single viewer; use the first session.
	var temporal *heatmap.ColorRaster
	if len(sessions) > 0 {
		temporal = heatmap.Temporal(w, h, sessions[0], v.Sigma)
	} else {
		temporal = heatmap.NewColorRaster(w, h)
	}

	tr := &render.Triptych{
		Aggregate:      render.AggregatePanel(img, aggregate),
		Viewers:        render.ViewerPanel(img, layers),
		Temporal:       render.TemporalPanel(img, temporal),
		AggregateTitle: fmt.Sprintf("Aggregate Attention %s/%s", key.TestSet, key.QuestionImage),
		ViewersTitle:   fmt.Sprintf("Viewer-Separated Attention (%d viewers)", len(layers)),
		TemporalTitle:  "Temporal Attention (Single Viewer)",
	}

	return tr.Write(outputPath)
}
