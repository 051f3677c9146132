package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lennox55555/HAHD/internal/heatmap"
)

// heatStops is the aggregate attention colormap: transparent through green
// and yellow to red.
var heatStops = []color.NRGBA{
	{R: 0, G: 0, B: 0, A: 0},
	{R: 0, G: 255, B: 0, A: 178},
	{R: 255, G: 255, B: 0, A: 178},
	{R: 255, G: 0, B: 0, A: 178},
}

// heatColor maps a normalized density in [0, 1] through the aggregate
// colormap by linear interpolation between its stops.
func heatColor(t float64) color.NRGBA {
	if t <= 0 {
		return heatStops[0]
	}
	if t >= 1 {
		return heatStops[len(heatStops)-1]
	}

	scaled := t * float64(len(heatStops)-1)
	i := int(scaled)
	frac := scaled - float64(i)

	return lerpColor(heatStops[i], heatStops[i+1], frac)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}

// blendPixel alpha-composites src over the canvas pixel at (x, y).
func blendPixel(canvas *image.NRGBA, x, y int, src color.NRGBA) {
	if src.A == 0 {
		return
	}

	i := canvas.PixOffset(x, y)
	alpha := float64(src.A) / 255

	for c, v := range []uint8{src.R, src.G, src.B} {
		base := float64(canvas.Pix[i+c])
		canvas.Pix[i+c] = uint8(base*(1-alpha) + float64(v)*alpha + 0.5)
	}
}

// AggregatePanel composites an aggregate density raster over the base image
// using the heat colormap.
func AggregatePanel(base image.Image, r *heatmap.Raster) *image.NRGBA {
	canvas := imaging.Clone(base)

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			blendPixel(canvas, x, y, heatColor(r.At(x, y)))
		}
	}
	return canvas
}

// ViewerPanel composites one translucent layer per viewer over the base
// image, each layer's opacity scaled by its own density.
func ViewerPanel(base image.Image, layers []heatmap.ViewerLayer) *image.NRGBA {
	canvas := imaging.Clone(base)

	for _, layer := range layers {
		r := layer.Raster
		for y := 0; y < r.H; y++ {
			for x := 0; x < r.W; x++ {
				density := r.At(x, y)
				if density == 0 {
					continue
				}
				src := layer.Color
				src.A = uint8(float64(src.A)*density + 0.5)
				blendPixel(canvas, x, y, src)
			}
		}
	}
	return canvas
}

// temporalAlpha is the peak opacity of the temporal overlay.
const temporalAlpha = 0.6

// TemporalPanel composites a temporal color raster over the base image. A
// pixel's opacity follows its strongest channel so untouched regions stay
// transparent.
func TemporalPanel(base image.Image, c *heatmap.ColorRaster) *image.NRGBA {
	canvas := imaging.Clone(base)

	for y := 0; y < c.R.H; y++ {
		for x := 0; x < c.R.W; x++ {
			r, g, b := c.R.At(x, y), c.G.At(x, y), c.B.At(x, y)

			intensity := r
			if g > intensity {
				intensity = g
			}
			if b > intensity {
				intensity = b
			}
			if intensity == 0 {
				continue
			}

			blendPixel(canvas, x, y, color.NRGBA{
				R: uint8(r*255 + 0.5),
				G: uint8(g*255 + 0.5),
				B: uint8(b*255 + 0.5),
				A: uint8(temporalAlpha*intensity*255 + 0.5),
			})
		}
	}
	return canvas
}
