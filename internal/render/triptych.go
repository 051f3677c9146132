// Package render composites heatmap rasters over source images and lays the
// three attention views out side by side in one output PNG.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

const (
	// panelHeight is the height every composited panel is scaled to.
	panelHeight = 640

	panelMargin = 16
	titleHeight = 40
)

// Triptych holds the three composited panels and their captions for one
// image.
type Triptych struct {
	Aggregate *image.NRGBA
	Viewers   *image.NRGBA
	Temporal  *image.NRGBA

	AggregateTitle string
	ViewersTitle   string
	TemporalTitle  string
}

// Write scales the three panels to a common height, lays them out side by
// side with captions, and writes the result as a PNG at the output DPI.
func (tr *Triptych) Write(path string) error {
	panels := []*image.NRGBA{tr.Aggregate, tr.Viewers, tr.Temporal}
	titles := []string{tr.AggregateTitle, tr.ViewersTitle, tr.TemporalTitle}

	scaled := make([]*image.NRGBA, len(panels))
	totalWidth := panelMargin
	for i, panel := range panels {
		scaled[i] = scaleToHeight(panel, panelHeight)
		totalWidth += scaled[i].Bounds().Dx() + panelMargin
	}

	ctx := gg.NewContext(totalWidth, panelHeight+titleHeight+2*panelMargin)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	ctx.SetFontFace(basicfont.Face7x13)

	x := panelMargin
	for i, panel := range scaled {
		w := panel.Bounds().Dx()

		ctx.SetRGB(0, 0, 0)
		ctx.DrawStringAnchored(titles[i], float64(x+w/2), float64(panelMargin+titleHeight/2), 0.5, 0.5)

		ctx.DrawImage(panel, x, panelMargin+titleHeight)
		x += w + panelMargin
	}

	if err := WritePNG(path, ctx.Image(), OutputDPI); err != nil {
		return fmt.Errorf("failed to write visualization: %w", err)
	}

	return nil
}

// scaleToHeight resizes an image to the given height, preserving aspect
// ratio, with Catmull-Rom resampling.
func scaleToHeight(img *image.NRGBA, height int) *image.NRGBA {
	bounds := img.Bounds()
	if bounds.Dy() == height {
		return img
	}

	width := bounds.Dx() * height / bounds.Dy()
	if width < 1 {
		width = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
