package clone

import (
	"math"
	"sort"

	"pixprobe/pkg/imaging"
	"pixprobe/pkg/stats"
)

// keypoint is a corner with a dominant gradient orientation. Descriptors are
// built in orientation-relative coordinates, which makes matching tolerant
// to rotation of the copied region.
type keypoint struct {
	X, Y        int
	Orientation float64
	Response    float64
}

const (
	harrisK         = 0.04
	responseFloor   = 0.01 // fraction of the max response kept
	patchMargin     = 20   // keypoints closer to the border cannot host a descriptor patch
	descriptorCells = 4
	descriptorBins  = 8
	descriptorSize  = descriptorCells * descriptorCells * descriptorBins
)

// detectKeypoints finds Harris corners with non-maximum suppression, keeping
// at most maxKeypoints strongest responses. The result ordering is
// deterministic: sorted by response, ties broken by position.
func detectKeypoints(gray *stats.Map, maxKeypoints int) []keypoint {
	smoothed := imaging.GaussianBlur(gray, 5)
	gx, gy := imaging.SobelPair(smoothed)

	w, h := gray.Width, gray.Height
	ixx := stats.NewMap(w, h)
	iyy := stats.NewMap(w, h)
	ixy := stats.NewMap(w, h)
	for i := range gx.Data {
		ixx.Data[i] = gx.Data[i] * gx.Data[i]
		iyy.Data[i] = gy.Data[i] * gy.Data[i]
		ixy.Data[i] = gx.Data[i] * gy.Data[i]
	}
	ixx = imaging.GaussianBlur(ixx, 5)
	iyy = imaging.GaussianBlur(iyy, 5)
	ixy = imaging.GaussianBlur(ixy, 5)

	response := stats.NewMap(w, h)
	maxResponse := 0.0
	for i := range response.Data {
		det := ixx.Data[i]*iyy.Data[i] - ixy.Data[i]*ixy.Data[i]
		trace := ixx.Data[i] + iyy.Data[i]
		r := det - harrisK*trace*trace
		response.Data[i] = r
		if r > maxResponse {
			maxResponse = r
		}
	}
	if maxResponse <= 0 {
		return nil
	}

	threshold := responseFloor * maxResponse
	var points []keypoint
	for y := patchMargin; y < h-patchMargin; y++ {
		for x := patchMargin; x < w-patchMargin; x++ {
			r := response.At(x, y)
			if r < threshold || !isLocalMaximum(response, x, y, r) {
				continue
			}
			points = append(points, keypoint{
				X:           x,
				Y:           y,
				Orientation: dominantOrientation(gx, gy, x, y),
				Response:    r,
			})
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Response != points[j].Response {
			return points[i].Response > points[j].Response
		}
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
	if len(points) > maxKeypoints {
		points = points[:maxKeypoints]
	}
	return points
}

func isLocalMaximum(response *stats.Map, x, y int, r float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if response.At(x+dx, y+dy) > r {
				return false
			}
		}
	}
	return true
}

// dominantOrientation histograms gradient directions in a radius-8 disc
// around the keypoint, weighted by magnitude, and returns the peak bin's
// angle.
func dominantOrientation(gx, gy *stats.Map, cx, cy int) float64 {
	const radius = 8
	const bins = 36
	var hist [bins]float64

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= gx.Width || y >= gx.Height {
				continue
			}
			mag := math.Hypot(gx.At(x, y), gy.At(x, y))
			angle := math.Atan2(gy.At(x, y), gx.At(x, y))
			bin := int((angle + math.Pi) / (2 * math.Pi) * bins)
			if bin >= bins {
				bin = bins - 1
			}
			hist[bin] += mag
		}
	}

	best := 0
	for i := 1; i < bins; i++ {
		if hist[i] > hist[best] {
			best = i
		}
	}
	return (float64(best)+0.5)/bins*2*math.Pi - math.Pi
}

// computeDescriptor builds a 128-dimensional gradient histogram over a
// 16x16 patch sampled in coordinates rotated by the keypoint orientation:
// 4x4 spatial cells, 8 orientation bins each, orientations taken relative
// to the keypoint's own. Normalized, clamped at 0.2 and renormalized in the
// usual SIFT fashion so local contrast changes wash out.
func computeDescriptor(gray *stats.Map, kp keypoint) []float64 {
	desc := make([]float64, descriptorSize)
	cosA := math.Cos(kp.Orientation)
	sinA := math.Sin(kp.Orientation)

	const patch = 16
	for py := 0; py < patch; py++ {
		for px := 0; px < patch; px++ {
			// Patch coordinates centered on the keypoint, rotated into
			// image space.
			u := float64(px) - patch/2 + 0.5
			v := float64(py) - patch/2 + 0.5
			ix := float64(kp.X) + u*cosA - v*sinA
			iy := float64(kp.Y) + u*sinA + v*cosA

			dx := bilinear(gray, ix+1, iy) - bilinear(gray, ix-1, iy)
			dy := bilinear(gray, ix, iy+1) - bilinear(gray, ix, iy-1)
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				continue
			}
			angle := math.Atan2(dy, dx) - kp.Orientation
			for angle < -math.Pi {
				angle += 2 * math.Pi
			}
			for angle >= math.Pi {
				angle -= 2 * math.Pi
			}

			cellX := px * descriptorCells / patch
			cellY := py * descriptorCells / patch
			bin := int((angle + math.Pi) / (2 * math.Pi) * descriptorBins)
			if bin >= descriptorBins {
				bin = descriptorBins - 1
			}
			desc[(cellY*descriptorCells+cellX)*descriptorBins+bin] += mag
		}
	}

	normalize(desc)
	clamped := false
	for i, v := range desc {
		if v > 0.2 {
			desc[i] = 0.2
			clamped = true
		}
	}
	if clamped {
		normalize(desc)
	}
	return desc
}

func normalize(v []float64) {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

func bilinear(m *stats.Map, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	clampX := func(v int) int {
		if v < 0 {
			return 0
		}
		if v >= m.Width {
			return m.Width - 1
		}
		return v
	}
	clampY := func(v int) int {
		if v < 0 {
			return 0
		}
		if v >= m.Height {
			return m.Height - 1
		}
		return v
	}

	v00 := m.At(clampX(x0), clampY(y0))
	v10 := m.At(clampX(x0+1), clampY(y0))
	v01 := m.At(clampX(x0), clampY(y0+1))
	v11 := m.At(clampX(x0+1), clampY(y0+1))

	return v00*(1-fx)*(1-fy) + v10*fx*(1-fy) + v01*(1-fx)*fy + v11*fx*fy
}
