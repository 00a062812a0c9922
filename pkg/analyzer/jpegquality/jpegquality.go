// Package jpegquality analyzes JPEG compression traces: the strength of 8x8
// block-boundary artifacts, which accumulate under repeated re-encoding, and
// an estimate of the last encoder quality.
package jpegquality

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
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
const Name = "JPEG Quality Analysis"

const jpegBlock = 8

var bands = classify.Bands{
	{Upper: 2, Interpretation: "No significant multiple-compression artifacts detected. Probably a single compression pass."},
	{Upper: 5, Interpretation: "Some block artifacts detected. Possible multiple compression or low quality."},
	{Upper: 10, Interpretation: "Notable block artifacts. High probability of multiple compression (edit and re-save)."},
	{Interpretation: "Very pronounced block artifacts. Multiple compression passes are very likely (several edits)."},
}

// doubleCompressionLabel mirrors the band order with a compression verdict.
var doubleCompressionLabels = [4]string{"Not Detected", "Possible", "Probable", "Very Probable"}

// Analyzer scores JPEG block-boundary discontinuities and estimates the
// compression quality of the source.
type Analyzer struct {
	analyzer.BaseAnalyzer
	outputDir string
}

// New creates a JPEG quality analyzer writing artifacts under outputDir.
func New(outputDir string, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(Name, log),
		outputDir:    outputDir,
	}
}

// Run verifies the image actually is a JPEG, then measures boundary
// artifacts and estimates quality. Non-JPEG input short-circuits with a
// not_applicable status, never an error.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	format, err := imaging.DetectFormat(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}
	if format != "jpeg" {
		result := models.NewResult(Name)
		result.Status = models.StatusNotApplicable
		result.Interpretation = "Image is not JPEG encoded. This analysis only applies to JPEG/JPG files."
		result.SetDetail("format", format)
		a.Log().Infof("skipping non-JPEG input (%s)", format)
		return result
	}

	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}
	gray := imaging.Grayscale(img)

	meanArtifact, stdArtifact := blockArtifactScore(gray)
	level, interpretation := bands.Classify(meanArtifact)

	quality := a.estimateQuality(imagePath, img)

	result := models.NewResult(Name)
	result.SuspicionScore = meanArtifact
	result.SuspicionLevel = level.String()
	result.Interpretation = interpretation
	result.SetDetail("estimated_quality", quality)
	result.SetDetail("double_compression", doubleCompressionLabels[bandIndex(level)])
	result.SetDetail("mean_artifact_score", meanArtifact)
	result.SetDetail("std_artifact_score", stdArtifact)

	outPath := filepath.Join(a.outputDir, "jpeg", fmt.Sprintf("jpeg_%s.png", analyzer.Stem(imagePath)))
	if err := imaging.SavePNG(renderBlockGrid(gray), outPath); err != nil {
		a.Log().Warnf("failed to write block grid visualization: %v", err)
	} else {
		result.AddArtifact(outPath)
	}

	a.Log().Infof("block artifact %.3f (quality ~%d) -> %s", meanArtifact, quality, result.SuspicionLevel)
	return result
}

func bandIndex(level classify.Level) int {
	if level >= classify.Low && level <= classify.VeryHigh {
		return int(level)
	}
	return 0
}

// blockArtifactScore measures luminance discontinuities across the right and
// bottom boundaries of each full 8x8 block. Strong aligned discontinuities
// are the signature of JPEG quantization, and they grow with every re-save.
func blockArtifactScore(gray *stats.Map) (mean, std float64) {
	var artifacts []float64
	for by := 0; by+2*jpegBlock <= gray.Height; by += jpegBlock {
		for bx := 0; bx+2*jpegBlock <= gray.Width; bx += jpegBlock {
			rightEdge := 0.0
			bottomEdge := 0.0
			for k := 0; k < jpegBlock; k++ {
				rightEdge += math.Abs(gray.At(bx+jpegBlock-1, by+k) - gray.At(bx+jpegBlock, by+k))
				bottomEdge += math.Abs(gray.At(bx+k, by+jpegBlock-1) - gray.At(bx+k, by+jpegBlock))
			}
			artifacts = append(artifacts, (rightEdge/jpegBlock+bottomEdge/jpegBlock)/2)
		}
	}
	return stats.Mean(artifacts), stats.StdDev(artifacts)
}

// estimateQuality prefers the embedded quantization tables; when the stream
// carries none it falls back to a comparative re-encode search.
func (a *Analyzer) estimateQuality(imagePath string, img image.Image) int {
	tables, err := readQuantTables(imagePath)
	if err == nil && len(tables) > 0 {
		return qualityFromTable(tables[0])
	}
	if err != nil {
		a.Log().Debugf("quantization table scan failed: %v", err)
	}
	return a.estimateByRecompression(img)
}

// estimateByRecompression re-encodes the image across the quality range and
// picks the quality whose reconstruction is closest to the input. All
// buffers are in-memory, nothing touches disk.
func (a *Analyzer) estimateByRecompression(img image.Image) int {
	original := imaging.Grayscale(img)

	bestQuality := 75
	minDiff := math.Inf(1)

	for quality := 50; quality < 100; quality += 5 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			a.Log().Debugf("re-encode at quality %d failed: %v", quality, err)
			continue
		}
		decoded, err := jpeg.Decode(&buf)
		if err != nil {
			continue
		}

		diff := meanAbsDiff(original, imaging.Grayscale(decoded))
		if diff < minDiff {
			minDiff = diff
			bestQuality = quality
		}
	}
	return bestQuality
}

func meanAbsDiff(a, b *stats.Map) float64 {
	if len(a.Data) != len(b.Data) {
		return math.Inf(1)
	}
	sum := 0.0
	for i := range a.Data {
		sum += math.Abs(a.Data[i] - b.Data[i])
	}
	return sum / float64(len(a.Data))
}

// renderBlockGrid draws the 8x8 JPEG block lattice over the luminance image
// so an operator can eyeball artifact alignment.
func renderBlockGrid(gray *stats.Map) image.Image {
	rgba := imaging.ToRGBA(imaging.GrayImage(gray))
	imaging.DrawGrid(rgba, jpegBlock, color.RGBA{G: 255, A: 255})
	return rgba
}
