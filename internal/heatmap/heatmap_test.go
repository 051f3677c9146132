package heatmap

import (
	"math"
	"testing"

	"github.com/lennox55555/HAHD/internal/gaze"
)

func record(testSet, image, timestamp string, samples ...gaze.Sample) gaze.Record {
	return gaze.Record{
		TestSet:       testSet,
		QuestionImage: image,
		Timestamp:     timestamp,
		Samples:       samples,
	}
}

func sampleAt(x, y float64) gaze.Sample {
	return gaze.Sample{X: x, Y: y, HasXY: true}
}

func timedSample(x, y, time float64) gaze.Sample {
	return gaze.Sample{X: x, Y: y, Time: time, HasXY: true, HasTime: true}
}

func TestAccumulatePeaksAtGazePoint(t *testing.T) {
	records := []gaze.Record{
		record("testA", "img1.jpg", "t1", sampleAt(5, 5)),
		record("testA", "img1.jpg", "t2", sampleAt(5, 5)),
		record("testA", "img1.jpg", "t3", sampleAt(5, 5)),
	}

	r := NewRaster(20, 20)
	Accumulate(r, records)

	if got := r.At(5, 5); got != 3 {
		t.Errorf("Expected raw count 3 at (5,5), got %v", got)
	}
	if got := r.At(6, 5); got != 0 {
		t.Errorf("Expected 0 at (6,5), got %v", got)
	}
}

func TestAccumulateClampsOutOfBounds(t *testing.T) {
	records := []gaze.Record{
		record("a", "i", "t", sampleAt(-10, -10), sampleAt(500, 500)),
	}

	r := NewRaster(10, 10)
	Accumulate(r, records)

	if got := r.At(0, 0); got != 1 {
		t.Errorf("Expected negative coordinates clamped to (0,0), got %v there", got)
	}
	if got := r.At(9, 9); got != 1 {
		t.Errorf("Expected oversized coordinates clamped to (9,9), got %v there", got)
	}
}

func TestNormalizeBounds(t *testing.T) {
	r := NewRaster(4, 4)
	r.Set(1, 1, 5)
	r.Set(2, 2, 2.5)
	r.Normalize()

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := r.At(x, y)
			if v < 0 || v > 1 {
				t.Fatalf("Value %v at (%d,%d) outside [0,1]", v, x, y)
			}
		}
	}
	if r.At(1, 1) != 1 {
		t.Errorf("Expected max normalized to 1, got %v", r.At(1, 1))
	}
	if r.At(2, 2) != 0.5 {
		t.Errorf("Expected 0.5 at (2,2), got %v", r.At(2, 2))
	}
}

func TestNormalizeAllZero(t *testing.T) {
	r := NewRaster(4, 4)
	r.Normalize()

	for _, v := range r.Pix {
		if v != 0 {
			t.Fatalf("Expected all-zero raster to stay zero, got %v", v)
		}
		if math.IsNaN(v) {
			t.Fatal("Normalization of empty raster produced NaN")
		}
	}
}

func TestBlurPreservesMass(t *testing.T) {
	r := NewRaster(31, 31)
	r.Set(15, 15, 1)
	r.Blur(2)

	sum := 0.0
	for _, v := range r.Pix {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Expected blurred mass 1, got %v", sum)
	}

	if peak := r.At(15, 15); peak >= 1 || peak <= 0 {
		t.Errorf("Expected diffused peak in (0,1), got %v", peak)
	}
}

func TestAggregate(t *testing.T) {
	records := []gaze.Record{
		record("a", "i", "t1", sampleAt(5, 5)),
		record("a", "i", "t2", sampleAt(5, 5)),
		record("a", "i", "t3", sampleAt(5, 5)),
	}

	r := Aggregate(20, 20, records, 1)

	if got := r.At(5, 5); got != 1 {
		t.Errorf("Expected peak normalized to 1 at (5,5), got %v", got)
	}
}

func TestAggregateNoValidGazes(t *testing.T) {
	records := []gaze.Record{
		record("a", "i", "t1", gaze.Sample{HasXY: false}),
	}

	r := Aggregate(10, 10, records, DefaultSigma)

	if max := r.Max(); max != 0 {
		t.Errorf("Expected all-zero raster, got max %v", max)
	}
}

func TestPerViewerOneLayerPerSession(t *testing.T) {
	records := []gaze.Record{
		record("a", "i", "t1", sampleAt(1, 1)),
		record("a", "i", "t2", sampleAt(2, 2)),
		record("a", "i", "t1", sampleAt(3, 3)),
	}

	layers := PerViewer(10, 10, records, 1)

	if len(layers) != 2 {
		t.Fatalf("Expected 2 viewer layers, got %d", len(layers))
	}
	if layers[0].Color == layers[1].Color {
		t.Error("Expected distinct palette colors for the first two viewers")
	}
}

func TestPerViewerPaletteCycles(t *testing.T) {
	var records []gaze.Record
	for i := 0; i < 12; i++ {
		records = append(records, record("a", "i", string(rune('a'+i)), sampleAt(1, 1)))
	}

	layers := PerViewer(10, 10, records, 1)

	if len(layers) != 12 {
		t.Fatalf("Expected 12 layers, got %d", len(layers))
	}
	if layers[10].Color != ViewerPalette[0] {
		t.Error("Expected palette to cycle after 10 viewers")
	}
}

func TestTemporalColorsProgressOverTime(t *testing.T) {
	session := []gaze.Record{
		record("a", "i", "t1",
			timedSample(1, 1, 0),   // start: red
			timedSample(5, 5, 0.5), // midpoint: yellow
			timedSample(8, 8, 1),   // end: green
		),
	}

	c := Temporal(10, 10, session, 0)

	if c.R.At(1, 1) != 1 || c.G.At(1, 1) != 0 {
		t.Errorf("Expected pure red at start point, got R=%v G=%v", c.R.At(1, 1), c.G.At(1, 1))
	}
	if c.R.At(5, 5) != 1 || c.G.At(5, 5) != 1 {
		t.Errorf("Expected yellow at midpoint, got R=%v G=%v", c.R.At(5, 5), c.G.At(5, 5))
	}
	if c.R.At(8, 8) != 0 || c.G.At(8, 8) != 1 {
		t.Errorf("Expected pure green at end point, got R=%v G=%v", c.R.At(8, 8), c.G.At(8, 8))
	}
}

func TestTemporalNoTimestamps(t *testing.T) {
	session := []gaze.Record{
		record("a", "i", "t1", sampleAt(1, 1), sampleAt(2, 2)),
	}

	c := Temporal(10, 10, session, DefaultSigma)

	if max := c.Max(); max != 0 {
		t.Errorf("Expected zero raster when no sample carries a timestamp, got max %v", max)
	}
}
