package stats

import "math"

// Map is a dense 2-D grid of scalars in row-major order. It serves both as
// a full-resolution pixel map and as a reduced per-block evidence map.
type Map struct {
	Width  int
	Height int
	Data   []float64
}

// NewMap allocates a zeroed Width x Height map.
func NewMap(width, height int) *Map {
	return &Map{Width: width, Height: height, Data: make([]float64, width*height)}
}

// At returns the value at (x, y).
func (m *Map) At(x, y int) float64 {
	return m.Data[y*m.Width+x]
}

// Set stores a value at (x, y).
func (m *Map) Set(x, y int, v float64) {
	m.Data[y*m.Width+x] = v
}

// Reducer collapses the samples of one block to a scalar.
type Reducer func(values []float64) float64

// BlockReduce partitions the map into non-overlapping size x size blocks and
// reduces each to one value. The output grid is floor(h/size) x floor(w/size);
// pixels beyond the last full block in either axis are excluded. This
// truncation is deliberate: padding partial blocks would shift every
// analyzer's score scale.
func BlockReduce(m *Map, size int, reduce Reducer) *Map {
	rows := m.Height / size
	cols := m.Width / size
	out := NewMap(cols, rows)

	buf := make([]float64, size*size)
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			k := 0
			for y := by * size; y < (by+1)*size; y++ {
				for x := bx * size; x < (bx+1)*size; x++ {
					buf[k] = m.At(x, y)
					k++
				}
			}
			out.Set(bx, by, reduce(buf))
		}
	}
	return out
}

// InconsistencyScore is the coefficient of variation of the map's values,
// the common scoring primitive for block evidence maps.
func InconsistencyScore(m *Map) float64 {
	return CoV(m.Data)
}

// MinMaxNormalize rescales the map to [0, 1] in place. A flat map becomes
// all zeros rather than dividing by zero.
func MinMaxNormalize(m *Map) *Map {
	out := NewMap(m.Width, m.Height)
	if len(m.Data) == 0 {
		return out
	}
	lo, hi := m.Data[0], m.Data[0]
	for _, v := range m.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range m.Data {
		out.Data[i] = (v - lo) / span
	}
	return out
}

// SobelMagnitude applies a 3x3 Sobel operator to the map and returns the
// gradient magnitude, used to find abrupt transitions in fused evidence maps.
// Border samples are clamped.
func SobelMagnitude(m *Map) *Map {
	out := NewMap(m.Width, m.Height)
	if m.Width < 2 || m.Height < 2 {
		return out
	}
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			var gx, gy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := m.At(clamp(x+dx, m.Width-1), clamp(y+dy, m.Height-1))
					gx += v * sobelX[dy+1][dx+1]
					gy += v * sobelY[dy+1][dx+1]
				}
			}
			out.Set(x, y, math.Hypot(gx, gy))
		}
	}
	return out
}

var sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
