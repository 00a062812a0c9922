// Package stats implements the block-wise statistical framework shared by
// the noise, edge, luminance, JPEG and splicing analyzers: partitioning a
// scalar map into fixed-size blocks, reducing each block to one value, and
// scoring the resulting grid for inconsistency.
package stats

import "math"

// Epsilon guards divisions when a map is uniformly zero.
const Epsilon = 1e-6

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// CoV computes the coefficient of variation std/(mean+eps), the common
// inconsistency score. Always finite and >= 0, even for a flat input.
func CoV(values []float64) float64 {
	return StdDev(values) / (Mean(values) + Epsilon)
}

// Variance reduces a sample set to its population variance.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// NonzeroDensity reduces a sample set to the fraction of nonzero entries.
func NonzeroDensity(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v != 0 {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

// CircularVariance reduces angular samples (radians) to 1-R where R is the
// mean resultant length. Unlike arithmetic variance it handles wraparound at
// +/- pi: a block of angles near the discontinuity still scores near zero.
func CircularVariance(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}
	sumCos, sumSin := 0.0, 0.0
	for _, a := range angles {
		sumCos += math.Cos(a)
		sumSin += math.Sin(a)
	}
	meanCos := sumCos / float64(len(angles))
	meanSin := sumSin / float64(len(angles))
	return 1 - math.Sqrt(meanCos*meanCos+meanSin*meanSin)
}
