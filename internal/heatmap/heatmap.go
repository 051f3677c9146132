// Package heatmap turns per-viewer gaze coordinate sequences into blurred,
// normalized attention rasters.
package heatmap

import (
	"image/color"

	"github.com/lennox55555/HAHD/internal/gaze"
)

// DefaultSigma is the default Gaussian spread for all heatmap variants.
const DefaultSigma = 30.0

// ViewerPalette holds the colors assigned to viewer-separated heatmaps,
// cycled when an image has more than ten viewers.
var ViewerPalette = []color.NRGBA{
	{R: 178, G: 0, B: 178, A: 128},
	{R: 0, G: 0, B: 255, A: 128},
	{R: 0, G: 178, B: 0, A: 128},
	{R: 255, G: 127, B: 0, A: 128},
	{R: 0, G: 178, B: 178, A: 128},
	{R: 178, G: 0, B: 0, A: 128},
	{R: 127, G: 127, B: 0, A: 128},
	{R: 127, G: 0, B: 127, A: 128},
	{R: 0, G: 127, B: 127, A: 128},
	{R: 178, G: 102, B: 0, A: 128},
}

// ViewerLayer pairs one viewer session's density raster with its palette
// color.
type ViewerLayer struct {
	Raster *Raster
	Color  color.NRGBA
}

func clampToRaster(s gaze.Sample, w, h int) (int, int) {
	x := clampInt(int(s.X), 0, w-1)
	y := clampInt(int(s.Y), 0, h-1)
	return x, y
}

// Accumulate scatters every valid gaze point of the given records into the
// raster as raw hit counts, without blurring or normalizing.
func Accumulate(r *Raster, records []gaze.Record) {
	for _, record := range records {
		for _, s := range record.ValidGazes() {
			x, y := clampToRaster(s, r.W, r.H)
			r.Add(x, y, 1)
		}
	}
}

// Aggregate builds one density raster from all viewers' gaze points for an
// image.
func Aggregate(w, h int, records []gaze.Record, sigma float64) *Raster {
	r := NewRaster(w, h)
	Accumulate(r, records)
	r.Blur(sigma)
	r.Normalize()
	return r
}

// PerViewer builds one density raster per viewer session, each paired with a
// distinct palette color.
func PerViewer(w, h int, records []gaze.Record, sigma float64) []ViewerLayer {
	sessions := gaze.GroupByViewer(records)

	layers := make([]ViewerLayer, 0, len(sessions))
	for i, session := range sessions {
		r := NewRaster(w, h)
		Accumulate(r, session)
		r.Blur(sigma)
		r.Normalize()

		layers = append(layers, ViewerLayer{
			Raster: r,
			Color:  ViewerPalette[i%len(ViewerPalette)],
		})
	}
	return layers
}

// Temporal builds a 3-channel raster for a single viewer session where each
// gaze point's color encodes its position in the session timeline: the green
// channel ramps up over the first half and the red channel ramps down over
// the second, so early fixations read red, mid-session yellow, late green.
// If no gaze sample in the session carries a timestamp the raster stays at
// zero.
func Temporal(w, h int, session []gaze.Record, sigma float64) *ColorRaster {
	c := NewColorRaster(w, h)

	var timed []gaze.Sample
	for _, record := range session {
		for _, s := range record.ValidGazes() {
			if s.HasTime {
				timed = append(timed, s)
			}
		}
	}
	if len(timed) == 0 {
		return c
	}

	minTime, maxTime := timed[0].Time, timed[0].Time
	for _, s := range timed[1:] {
		if s.Time < minTime {
			minTime = s.Time
		}
		if s.Time > maxTime {
			maxTime = s.Time
		}
	}
	timeRange := maxTime - minTime

	for _, s := range timed {
		x, y := clampToRaster(s, w, h)

		progress := 0.0
		if timeRange > 0 {
			progress = (s.Time - minTime) / timeRange
		}

		var red, green float64
		if progress < 0.5 {
			red, green = 1, progress*2
		} else {
			red, green = 2-progress*2, 1
		}

		c.R.Set(x, y, red)
		c.G.Set(x, y, green)
		c.B.Set(x, y, 0)
	}

	c.Blur(sigma)
	c.Normalize()
	return c
}
