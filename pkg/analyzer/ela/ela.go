// Package ela implements error level analysis: the image is re-encoded as
// JPEG at a known quality and compared to the original. Regions saved a
// different number of times than the rest respond differently to the
// re-encode and light up in the difference map.
package ela

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/analyzer"
	"pixprobe/pkg/classify"
	"pixprobe/pkg/imaging"
	"pixprobe/pkg/models"
	"pixprobe/pkg/stats"
)

// Name is the analyzer's registration name.
const Name = "Error Level Analysis"

var bands = classify.Bands{
	{Upper: 10, Interpretation: "Error levels are uniform. No signs of localized re-compression."},
	{Upper: 25, Interpretation: "Some error level variation detected. Could be texture differences or light editing."},
	{Upper: 50, Interpretation: "Notable error level differences between regions. Probable localized manipulation."},
	{Interpretation: "Strong localized error level differences. Very probable edited regions saved at different times."},
}

// Analyzer compares the image against a fixed-quality JPEG re-encode.
type Analyzer struct {
	analyzer.BaseAnalyzer
	quality   int
	outputDir string
}

// New creates an error level analyzer. quality is the re-encode quality,
// conventionally 90.
func New(outputDir string, quality int, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(Name, log),
		quality:      quality,
		outputDir:    outputDir,
	}
}

// Run re-encodes the image through a temporary JPEG file, measures the
// per-pixel difference and scores its mean. The temporary file is removed on
// every exit path.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}

	tmp, err := os.CreateTemp("", "ela-*.jpg")
	if err != nil {
		return models.ErrorResult(Name, fmt.Sprintf("failed to create temporary file: %v", err))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: a.quality}); err != nil {
		tmp.Close()
		return models.ErrorResult(Name, fmt.Sprintf("failed to re-encode image: %v", err))
	}
	if err := tmp.Close(); err != nil {
		return models.ErrorResult(Name, err.Error())
	}

	reencoded, _, err := imaging.Load(tmpPath)
	if err != nil {
		return models.ErrorResult(Name, fmt.Sprintf("failed to read re-encoded image: %v", err))
	}

	diff := imaging.AbsDiff(imaging.Grayscale(img), imaging.Grayscale(reencoded))
	meanError := stats.Mean(diff.Data)
	maxError := 0.0
	for _, v := range diff.Data {
		if v > maxError {
			maxError = v
		}
	}

	level, interpretation := bands.Classify(meanError)

	result := models.NewResult(Name)
	result.SuspicionScore = meanError
	result.SuspicionLevel = level.String()
	result.Interpretation = interpretation
	result.SetDetail("mean_error", meanError)
	result.SetDetail("max_error", maxError)
	result.SetDetail("recompression_quality", a.quality)

	bounds := img.Bounds()
	outPath := filepath.Join(a.outputDir, "ela", fmt.Sprintf("ela_%s.png", analyzer.Stem(imagePath)))
	if err := imaging.SavePNG(imaging.Heatmap(diff, imaging.Hot, bounds.Dx(), bounds.Dy()), outPath); err != nil {
		a.Log().Warnf("failed to write error level map: %v", err)
	} else {
		result.AddArtifact(outPath)
	}

	a.Log().Infof("mean error level %.2f -> %s", meanError, result.SuspicionLevel)
	return result
}
