package imaging

import (
	"math"

	"pixprobe/pkg/stats"
)

// CannyEdges produces a binary edge map (0 or 255) using gradient
// magnitude, non-maximum suppression and double-threshold hysteresis.
// The 50/150 threshold pair matches the analyzers' working range for 8-bit
// luminance input.
func CannyEdges(m *stats.Map, low, high float64) *stats.Map {
	gx, gy := SobelPair(m)
	mag := GradientMagnitude(gx, gy)

	// Non-maximum suppression along the quantized gradient direction.
	thin := stats.NewMap(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := mag.At(x, y)
			if v < low {
				continue
			}
			angle := math.Atan2(gy.At(x, y), gx.At(x, y))
			dx, dy := quantizeDirection(angle)

			n1 := sampleClamped(mag, x+dx, y+dy)
			n2 := sampleClamped(mag, x-dx, y-dy)
			if v >= n1 && v >= n2 {
				thin.Set(x, y, v)
			}
		}
	}

	// Hysteresis: strong pixels seed edges, weak pixels join only when
	// connected to a strong one.
	const (
		weak   = 1
		strong = 2
	)
	marks := make([]uint8, m.Width*m.Height)
	var queue []int
	for i, v := range thin.Data {
		if v >= high {
			marks[i] = strong
			queue = append(queue, i)
		} else if v >= low {
			marks[i] = weak
		}
	}

	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := idx%m.Width, idx/m.Width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				nidx := ny*m.Width + nx
				if marks[nidx] == weak {
					marks[nidx] = strong
					queue = append(queue, nidx)
				}
			}
		}
	}

	out := stats.NewMap(m.Width, m.Height)
	for i, mark := range marks {
		if mark == strong {
			out.Data[i] = 255
		}
	}
	return out
}

func quantizeDirection(angle float64) (int, int) {
	// Map the angle into one of four neighbor axes: horizontal, vertical
	// and the two diagonals.
	deg := angle * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return 1, 0
	case deg < 67.5:
		return 1, 1
	case deg < 112.5:
		return 0, 1
	default:
		return -1, 1
	}
}

func sampleClamped(m *stats.Map, x, y int) float64 {
	return m.At(clampInt(x, m.Width-1), clampInt(y, m.Height-1))
}
