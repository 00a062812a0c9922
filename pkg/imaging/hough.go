package imaging

import (
	"math"

	"pixprobe/pkg/stats"
)

// Segment is a straight line segment detected in an edge map.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// HoughSegments finds straight line segments in a binary edge map using a
// Hough accumulator followed by a walk along each voted line that extracts
// runs of edge pixels. Suspiciously straight boundaries are a splice/paste
// indicator. The scan order is fixed, so results are deterministic.
func HoughSegments(edges *stats.Map, votes, minLen, maxGap int) []Segment {
	w, h := edges.Width, edges.Height
	if w == 0 || h == 0 {
		return nil
	}

	const thetaSteps = 180
	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	acc := make([]int, thetaSteps*(2*diag+1))

	sin := make([]float64, thetaSteps)
	cos := make([]float64, thetaSteps)
	for t := 0; t < thetaSteps; t++ {
		angle := float64(t) * math.Pi / float64(thetaSteps)
		sin[t] = math.Sin(angle)
		cos[t] = math.Cos(angle)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.At(x, y) == 0 {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(math.Round(float64(x)*cos[t] + float64(y)*sin[t]))
				acc[t*(2*diag+1)+rho+diag]++
			}
		}
	}

	// Working copy so extracted pixels vote only once.
	remaining := stats.NewMap(w, h)
	copy(remaining.Data, edges.Data)

	var segments []Segment
	for t := 0; t < thetaSteps; t++ {
		for r := -diag; r <= diag; r++ {
			if acc[t*(2*diag+1)+r+diag] < votes {
				continue
			}
			segments = append(segments, walkLine(remaining, cos[t], sin[t], float64(r), minLen, maxGap)...)
		}
	}
	return segments
}

// walkLine traces the line x*cos+y*sin=rho through the map, collecting edge
// pixel runs that tolerate up to maxGap missing pixels, and clears the
// pixels it consumes.
func walkLine(edges *stats.Map, cos, sin, rho float64, minLen, maxGap int) []Segment {
	w, h := edges.Width, edges.Height

	var pts [][2]int
	if math.Abs(sin) >= math.Abs(cos) {
		for x := 0; x < w; x++ {
			y := int(math.Round((rho - float64(x)*cos) / sin))
			if y >= 0 && y < h {
				pts = append(pts, [2]int{x, y})
			}
		}
	} else {
		for y := 0; y < h; y++ {
			x := int(math.Round((rho - float64(y)*sin) / cos))
			if x >= 0 && x < w {
				pts = append(pts, [2]int{x, y})
			}
		}
	}

	var segments []Segment
	start, last := -1, -1
	flush := func() {
		if start < 0 || last < 0 {
			return
		}
		p1, p2 := pts[start], pts[last]
		if segLength(p1, p2) >= float64(minLen) {
			segments = append(segments, Segment{X1: p1[0], Y1: p1[1], X2: p2[0], Y2: p2[1]})
			for i := start; i <= last; i++ {
				edges.Set(pts[i][0], pts[i][1], 0)
			}
		}
		start, last = -1, -1
	}

	for i, p := range pts {
		if edges.At(p[0], p[1]) != 0 {
			if start < 0 {
				start = i
			}
			last = i
			continue
		}
		if last >= 0 && i-last > maxGap {
			flush()
		}
	}
	flush()
	return segments
}

func segLength(a, b [2]int) float64 {
	return math.Hypot(float64(a[0]-b[0]), float64(a[1]-b[1]))
}
