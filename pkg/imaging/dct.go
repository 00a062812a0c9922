package imaging

import (
	"math"
	"sync"

	"pixprobe/pkg/stats"
)

var dctTables sync.Map // block size -> [][]float64 cosine basis

func dctBasis(n int) [][]float64 {
	if cached, ok := dctTables.Load(n); ok {
		return cached.([][]float64)
	}
	basis := make([][]float64, n)
	for k := 0; k < n; k++ {
		basis[k] = make([]float64, n)
		for i := 0; i < n; i++ {
			basis[k][i] = math.Cos(math.Pi * float64(k) * (2*float64(i) + 1) / (2 * float64(n)))
		}
	}
	dctTables.Store(n, basis)
	return basis
}

// DCT2D computes the orthonormal 2-D type-II DCT of a square n x n block,
// applied separably over rows then columns.
func DCT2D(block *stats.Map) *stats.Map {
	n := block.Width
	basis := dctBasis(n)
	scale0 := math.Sqrt(1 / float64(n))
	scale := math.Sqrt(2 / float64(n))

	// Row transform.
	tmp := stats.NewMap(n, n)
	for y := 0; y < n; y++ {
		for k := 0; k < n; k++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += block.At(i, y) * basis[k][i]
			}
			if k == 0 {
				sum *= scale0
			} else {
				sum *= scale
			}
			tmp.Set(k, y, sum)
		}
	}

	// Column transform.
	out := stats.NewMap(n, n)
	for x := 0; x < n; x++ {
		for k := 0; k < n; k++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += tmp.At(x, i) * basis[k][i]
			}
			if k == 0 {
				sum *= scale0
			} else {
				sum *= scale
			}
			out.Set(x, k, sum)
		}
	}
	return out
}

// HighFrequencyEnergy sums the absolute DCT coefficients in the bottom-right
// quadrant of the block, the region most sensitive to local manipulation.
func HighFrequencyEnergy(dct *stats.Map) float64 {
	n := dct.Width
	half := n / 2
	sum := 0.0
	for y := half; y < n; y++ {
		for x := half; x < n; x++ {
			sum += math.Abs(dct.At(x, y))
		}
	}
	return sum
}
