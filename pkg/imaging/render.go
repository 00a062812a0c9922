package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"pixprobe/pkg/stats"
)

// Colormap maps a normalized value in [0,1] to an RGB color.
type Colormap func(v float64) color.RGBA

// Jet is the blue-to-red heatmap used for variance overlays.
func Jet(v float64) color.RGBA {
	v = clamp01(v)
	r := clamp01(1.5 - math.Abs(4*v-3))
	g := clamp01(1.5 - math.Abs(4*v-2))
	b := clamp01(1.5 - math.Abs(4*v-1))
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Hot is the black-red-yellow-white map used for boundary overlays.
func Hot(v float64) color.RGBA {
	v = clamp01(v)
	r := clamp01(v * 3)
	g := clamp01(v*3 - 1)
	b := clamp01(v*3 - 2)
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Heatmap renders a scalar map through a colormap after min-max
// normalization, scaled up to the target dimensions with nearest-neighbor
// sampling so block maps align with the source image.
func Heatmap(m *stats.Map, cmap Colormap, width, height int) *image.RGBA {
	norm := stats.MinMaxNormalize(m)
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		sy := y * norm.Height / height
		for x := 0; x < width; x++ {
			sx := x * norm.Width / width
			out.SetRGBA(x, y, cmap(norm.At(sx, sy)))
		}
	}
	return out
}

// Blend alpha-composites the overlay onto the base image: alpha 0 keeps the
// base, alpha 1 shows only the overlay.
func Blend(base image.Image, overlay *image.RGBA, alpha float64) *image.RGBA {
	bounds := base.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			br, bg, bb, _ := base.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			ov := overlay.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: mix(uint8(br>>8), ov.R, alpha),
				G: mix(uint8(bg>>8), ov.G, alpha),
				B: mix(uint8(bb>>8), ov.B, alpha),
				A: 255,
			})
		}
	}
	return out
}

func mix(a, b uint8, alpha float64) uint8 {
	return uint8((1-alpha)*float64(a) + alpha*float64(b) + 0.5)
}

// DrawLine draws a straight line with the given thickness using Bresenham
// stepping.
func DrawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, thickness int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	x, y := x1, y1
	for {
		drawThickPoint(img, x, y, c, thickness)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawThickPoint(img *image.RGBA, x, y int, c color.RGBA, thickness int) {
	r := thickness / 2
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			setPixel(img, x+dx, y+dy, c)
		}
	}
}

// DrawCircle fills a disc of the given radius.
func DrawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// DrawArrow draws a line with a simple two-stroke head at the end point.
func DrawArrow(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	DrawLine(img, x1, y1, x2, y2, c, 1)

	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	const headLen = 4.0
	for _, offset := range []float64{math.Pi * 5 / 6, -math.Pi * 5 / 6} {
		hx := x2 + int(headLen*math.Cos(angle+offset))
		hy := y2 + int(headLen*math.Sin(angle+offset))
		DrawLine(img, x2, y2, hx, hy, c, 1)
	}
}

// DrawGrid overlays horizontal and vertical lines every step pixels,
// visualizing the 8x8 JPEG block lattice.
func DrawGrid(img *image.RGBA, step int, c color.RGBA) {
	bounds := img.Bounds()
	for y := 0; y < bounds.Dy(); y += step {
		DrawLine(img, 0, y, bounds.Dx()-1, y, c, 1)
	}
	for x := 0; x < bounds.Dx(); x += step {
		DrawLine(img, x, 0, x, bounds.Dy()-1, c, 1)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SavePNG writes an image to disk, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
