package imaging

import (
	"image"
	"math"

	"pixprobe/pkg/stats"
)

// LABChannels converts an image to the CIE L*a*b* color space and returns
// the three channels as separate maps. LAB separates lightness from
// chromaticity, which makes per-region color statistics more discriminative
// than raw RGB for splice detection.
func LABChannels(img image.Image) (l, a, b *stats.Map) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	l = stats.NewMap(w, h)
	a = stats.NewMap(w, h)
	b = stats.NewMap(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lv, av, bv := rgbToLAB(float64(r16>>8)/255, float64(g16>>8)/255, float64(b16>>8)/255)
			l.Set(x, y, lv)
			a.Set(x, y, av)
			b.Set(x, y, bv)
		}
	}
	return l, a, b
}

// rgbToLAB converts sRGB in [0,1] to L*a*b* under the D65 white point.
func rgbToLAB(r, g, b float64) (float64, float64, float64) {
	r = srgbLinear(r)
	g = srgbLinear(g)
	b = srgbLinear(b)

	x := 0.4124564*r + 0.3575761*g + 0.1804375*b
	y := 0.2126729*r + 0.7151522*g + 0.0721750*b
	z := 0.0193339*r + 0.1191920*g + 0.9503041*b

	// D65 reference white.
	fx := labF(x / 0.95047)
	fy := labF(y / 1.0)
	fz := labF(z / 1.08883)

	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

func srgbLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}
