package clone

import (
	"image"
	"image/color"

	"pixprobe/pkg/imaging"
)

// renderMatches paints clone match pairs over the source image: a red line
// between the two locations with green and blue endpoint markers. Only the
// strongest pairs are drawn so dense results stay readable.
func renderMatches(img image.Image, keypoints []keypoint, matches []match) *image.RGBA {
	out := imaging.ToRGBA(img)

	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	drawn := matches
	if len(drawn) > maxDrawn {
		drawn = drawn[:maxDrawn]
	}
	for _, m := range drawn {
		src := keypoints[m.A]
		dst := keypoints[m.B]
		imaging.DrawLine(out, src.X, src.Y, dst.X, dst.Y, red, 1)
		imaging.DrawCircle(out, src.X, src.Y, 3, green)
		imaging.DrawCircle(out, dst.X, dst.Y, 3, blue)
	}
	return out
}
