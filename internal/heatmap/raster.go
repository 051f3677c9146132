package heatmap

import "math"

// Raster is a row-major W x H grid of float64 intensities.
type Raster struct {
	W, H int
	Pix  []float64
}

// NewRaster allocates a zeroed raster.
func NewRaster(w, h int) *Raster {
	return &Raster{
		W:   w,
		H:   h,
		Pix: make([]float64, w*h),
	}
}

// At returns the value at (x, y).
func (r *Raster) At(x, y int) float64 {
	return r.Pix[y*r.W+x]
}

// Set overwrites the value at (x, y).
func (r *Raster) Set(x, y int, v float64) {
	r.Pix[y*r.W+x] = v
}

// Add increments the value at (x, y).
func (r *Raster) Add(x, y int, v float64) {
	r.Pix[y*r.W+x] += v
}

// Max returns the largest value in the raster.
func (r *Raster) Max() float64 {
	max := 0.0
	for _, v := range r.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// Normalize scales the raster into [0, 1] by its own maximum. An all-zero
// raster is left untouched.
func (r *Raster) Normalize() {
	max := r.Max()
	if max == 0 {
		return
	}
	for i := range r.Pix {
		r.Pix[i] /= max
	}
}

// Blur applies an isotropic Gaussian blur with the given spread, diffusing
// point hits into a continuous density field. The separable kernel is
// truncated at 3 sigma with edges clamped.
func (r *Raster) Blur(sigma float64) {
	if sigma <= 0 {
		return
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	// Horizontal pass.
	tmp := make([]float64, len(r.Pix))
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k, 0, r.W-1)
				sum += r.Pix[y*r.W+sx] * kernel[k+radius]
			}
			tmp[y*r.W+x] = sum
		}
	}

	// Vertical pass.
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sy := clampInt(y+k, 0, r.H-1)
				sum += tmp[sy*r.W+x] * kernel[k+radius]
			}
			r.Pix[y*r.W+x] = sum
		}
	}
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)

	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ColorRaster is a 3-channel raster used by the temporal variant.
type ColorRaster struct {
	R, G, B *Raster
}

// NewColorRaster allocates a zeroed 3-channel raster.
func NewColorRaster(w, h int) *ColorRaster {
	return &ColorRaster{
		R: NewRaster(w, h),
		G: NewRaster(w, h),
		B: NewRaster(w, h),
	}
}

// Blur blurs each channel independently.
func (c *ColorRaster) Blur(sigma float64) {
	c.R.Blur(sigma)
	c.G.Blur(sigma)
	c.B.Blur(sigma)
}

// Max returns the largest value across all three channels.
func (c *ColorRaster) Max() float64 {
	max := c.R.Max()
	if g := c.G.Max(); g > max {
		max = g
	}
	if b := c.B.Max(); b > max {
		max = b
	}
	return max
}

// Normalize scales all channels by the shared maximum so hue ratios are
// preserved. An all-zero raster is left untouched.
func (c *ColorRaster) Normalize() {
	max := c.Max()
	if max == 0 {
		return
	}
	for _, ch := range []*Raster{c.R, c.G, c.B} {
		for i := range ch.Pix {
			ch.Pix[i] /= max
		}
	}
}
