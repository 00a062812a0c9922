// Package luminance detects lighting inconsistencies through the circular
// variance of gradient directions. Objects inserted from other photographs
// tend to carry a light direction that disagrees with their surroundings.
package luminance

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/analyzer"
	"pixprobe/pkg/classify"
	"pixprobe/pkg/imaging"
	"pixprobe/pkg/models"
	"pixprobe/pkg/stats"
)

// Name is the analyzer's registration name.
const Name = "Luminance Gradient"

const (
	blurWindow = 5
	arrowStep  = 20
)

var bands = classify.Bands{
	{Upper: 0.3, Interpretation: "Lighting is consistent across the image. No significant inconsistencies in light direction."},
	{Upper: 0.6, Interpretation: "Some lighting variation detected. Could be complex natural lighting or minor editing."},
	{Upper: 1.0, Interpretation: "Notable inconsistencies in lighting direction. Likely insertion of elements from different sources."},
	{Interpretation: "Highly inconsistent lighting direction. High probability of a composite built from different photographs."},
}

// Analyzer scores the block-wise circular variance of gradient directions.
type Analyzer struct {
	analyzer.BaseAnalyzer
	blockSize int
	outputDir string
}

// New creates a luminance gradient analyzer writing artifacts under outputDir.
func New(outputDir string, blockSize int, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(Name, log),
		blockSize:    blockSize,
		outputDir:    outputDir,
	}
}

// Run computes gradient direction and magnitude, reduces direction to a
// block circular-variance map and scores it.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}

	gray := imaging.Grayscale(img)
	blurred := imaging.GaussianBlur(gray, blurWindow)
	gx, gy := imaging.SobelPair(blurred)
	direction := imaging.GradientDirection(gx, gy)
	magnitude := imaging.GradientMagnitude(gx, gy)

	varianceMap := stats.BlockReduce(direction, a.blockSize, stats.CircularVariance)
	score := stats.InconsistencyScore(varianceMap)
	level, interpretation := bands.Classify(score)

	result := models.NewResult(Name)
	result.SuspicionScore = score
	result.SuspicionLevel = level.String()
	result.Interpretation = interpretation
	result.SetDetail("inconsistency_score", score)
	result.SetDetail("mean_gradient_magnitude", stats.Mean(magnitude.Data))
	result.SetDetail("block_size", a.blockSize)

	stem := analyzer.Stem(imagePath)
	bounds := img.Bounds()

	heat := imaging.Heatmap(varianceMap, imaging.Jet, bounds.Dx(), bounds.Dy())
	overlay := imaging.Blend(img, heat, 0.6)
	heatPath := filepath.Join(a.outputDir, "luminance", fmt.Sprintf("luminance_heatmap_%s.png", stem))
	if err := imaging.SavePNG(overlay, heatPath); err != nil {
		a.Log().Warnf("failed to write luminance heatmap: %v", err)
	} else {
		result.AddArtifact(heatPath)
	}

	arrows := renderDirectionField(direction, magnitude)
	arrowsPath := filepath.Join(a.outputDir, "luminance", fmt.Sprintf("luminance_arrows_%s.png", stem))
	if err := imaging.SavePNG(arrows, arrowsPath); err != nil {
		a.Log().Warnf("failed to write luminance arrow field: %v", err)
	} else {
		result.AddArtifact(arrowsPath)
	}

	a.Log().Infof("luminance inconsistency %.4f -> %s", score, result.SuspicionLevel)
	return result
}

// renderDirectionField draws the gradient field as arrows on a white canvas,
// one per arrowStep pixels, colored by direction and scaled by magnitude.
func renderDirectionField(direction, magnitude *stats.Map) *image.RGBA {
	w, h := direction.Width, direction.Height
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			canvas.SetRGBA(x, y, white)
		}
	}

	maxMag := 0.0
	for _, v := range magnitude.Data {
		if v > maxMag {
			maxMag = v
		}
	}
	if maxMag == 0 {
		return canvas
	}

	for y := arrowStep; y < h-arrowStep; y += arrowStep {
		for x := arrowStep; x < w-arrowStep; x += arrowStep {
			angle := direction.At(x, y)
			mag := magnitude.At(x, y)

			length := int(mag / maxMag * float64(arrowStep) * 0.8)
			if length <= 2 {
				continue
			}
			ex := x + int(float64(length)*math.Cos(angle))
			ey := y + int(float64(length)*math.Sin(angle))
			imaging.DrawArrow(canvas, x, y, ex, ey, directionColor(angle))
		}
	}
	return canvas
}

// directionColor maps an angle to a hue so opposing light directions render
// in contrasting colors.
func directionColor(angle float64) color.RGBA {
	hue := (angle + math.Pi) / (2 * math.Pi) // 0..1
	return hsvToRGB(hue)
}

func hsvToRGB(hue float64) color.RGBA {
	h := hue * 6
	sector := int(h) % 6
	f := h - float64(int(h))
	q := uint8((1 - f) * 255)
	t := uint8(f * 255)

	switch sector {
	case 0:
		return color.RGBA{R: 255, G: t, A: 255}
	case 1:
		return color.RGBA{R: q, G: 255, A: 255}
	case 2:
		return color.RGBA{G: 255, B: t, A: 255}
	case 3:
		return color.RGBA{G: q, B: 255, A: 255}
	case 4:
		return color.RGBA{R: t, B: 255, A: 255}
	default:
		return color.RGBA{R: 255, B: q, A: 255}
	}
}
