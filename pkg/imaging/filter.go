package imaging

import (
	"math"
	"sort"

	"pixprobe/pkg/stats"
)

// MedianFilter smooths the map with a square window of the given size
// (5 for the noise analyzers). Border samples are clamped to the edge.
func MedianFilter(m *stats.Map, size int) *stats.Map {
	out := stats.NewMap(m.Width, m.Height)
	radius := size / 2
	window := make([]float64, 0, size*size)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			window = window[:0]
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					window = append(window, m.At(clampInt(x+dx, m.Width-1), clampInt(y+dy, m.Height-1)))
				}
			}
			sort.Float64s(window)
			out.Set(x, y, window[len(window)/2])
		}
	}
	return out
}

// AbsDiff returns the element-wise absolute difference of two equally sized
// maps. The noise residual is AbsDiff(gray, MedianFilter(gray, 5)).
func AbsDiff(a, b *stats.Map) *stats.Map {
	out := stats.NewMap(a.Width, a.Height)
	for i := range a.Data {
		out.Data[i] = math.Abs(a.Data[i] - b.Data[i])
	}
	return out
}

// GaussianBlur smooths the map with a separable Gaussian kernel of the
// given odd size. Sigma is derived from the kernel size the way OpenCV does
// when sigma is left at zero.
func GaussianBlur(m *stats.Map, size int) *stats.Map {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := gaussianKernel(size, sigma)
	radius := size / 2

	// Horizontal pass.
	tmp := stats.NewMap(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * m.At(clampInt(x+k, m.Width-1), y)
			}
			tmp.Set(x, y, sum)
		}
	}

	// Vertical pass.
	out := stats.NewMap(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp.At(x, clampInt(y+k, m.Height-1))
			}
			out.Set(x, y, sum)
		}
	}
	return out
}

func gaussianKernel(size int, sigma float64) []float64 {
	kernel := make([]float64, size)
	radius := size / 2
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// SobelPair computes horizontal and vertical derivatives with the 3x3 Sobel
// operator. Borders are clamped.
func SobelPair(m *stats.Map) (gx, gy *stats.Map) {
	gx = stats.NewMap(m.Width, m.Height)
	gy = stats.NewMap(m.Width, m.Height)

	kx := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	ky := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			var sx, sy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := m.At(clampInt(x+dx, m.Width-1), clampInt(y+dy, m.Height-1))
					sx += v * kx[dy+1][dx+1]
					sy += v * ky[dy+1][dx+1]
				}
			}
			gx.Set(x, y, sx)
			gy.Set(x, y, sy)
		}
	}
	return gx, gy
}

// GradientDirection returns per-pixel gradient angles in radians.
func GradientDirection(gx, gy *stats.Map) *stats.Map {
	out := stats.NewMap(gx.Width, gx.Height)
	for i := range out.Data {
		out.Data[i] = math.Atan2(gy.Data[i], gx.Data[i])
	}
	return out
}

// GradientMagnitude returns per-pixel gradient magnitudes.
func GradientMagnitude(gx, gy *stats.Map) *stats.Map {
	out := stats.NewMap(gx.Width, gx.Height)
	for i := range out.Data {
		out.Data[i] = math.Hypot(gx.Data[i], gy.Data[i])
	}
	return out
}

func clampInt(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
