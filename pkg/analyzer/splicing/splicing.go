// Package splicing detects composites built from multiple source images by
// fusing three independent block signals: sensor noise residual, DCT
// high-frequency energy and LAB color statistics. Regions pasted from another
// photograph disagree with their surroundings on at least one of them.
package splicing

import (
	"fmt"
	"image"
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
const Name = "Splicing Detection"

const medianWindow = 5

// Fusion weights for the combined block map.
const (
	weightNoise = 0.4
	weightDCT   = 0.3
	weightColor = 0.3
)

// Weights for the global score, boundary evidence counts the most.
const (
	globalBoundary = 0.4
	globalNoise    = 0.3
	globalDCT      = 0.2
	globalColor    = 0.1
)

var bands = classify.Bands{
	{Upper: 20, Interpretation: "No significant signs of splicing. Noise, frequency and color patterns are consistent."},
	{Upper: 40, Interpretation: "Some regional inconsistencies detected. Could be local adjustments or minor splicing."},
	{Upper: 60, Interpretation: "Notable inconsistencies between regions. Probable insertion of content from another image."},
	{Interpretation: "Strong inconsistencies across multiple signals. Very probable composite of several images."},
}

// Analyzer fuses noise, frequency and color block maps into a splicing score.
type Analyzer struct {
	analyzer.BaseAnalyzer
	blockSize int
	outputDir string
}

// New creates a splicing analyzer writing artifacts under outputDir.
func New(outputDir string, blockSize int, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(Name, log),
		blockSize:    blockSize,
		outputDir:    outputDir,
	}
}

// Run builds the three block maps, fuses them and derives boundary evidence
// from the gradient of the fused map. The global score mixes boundary
// strength with the three per-signal inconsistency scores.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}

	gray := imaging.Grayscale(img)

	noiseMap := a.noiseMap(gray)
	dctMap := a.dctMap(gray)
	colorMap := a.colorMap(img)

	noiseScore := subScore(noiseMap)
	dctScore := subScore(dctMap)
	colorScore := subScore(colorMap)

	combined := fuse(noiseMap, dctMap, colorMap)
	boundary := stats.SobelMagnitude(combined)
	boundaryScore := stats.Mean(boundary.Data) * 100

	globalScore := globalBoundary*boundaryScore +
		globalNoise*noiseScore +
		globalDCT*dctScore +
		globalColor*colorScore
	level, interpretation := bands.Classify(globalScore)

	result := models.NewResult(Name)
	result.SuspicionScore = globalScore
	result.SuspicionLevel = level.String()
	result.Interpretation = interpretation
	result.SetDetail("boundary_score", boundaryScore)
	result.SetDetail("noise_score", noiseScore)
	result.SetDetail("dct_score", dctScore)
	result.SetDetail("color_score", colorScore)
	result.SetDetail("block_size", a.blockSize)

	stem := analyzer.Stem(imagePath)
	bounds := img.Bounds()

	heat := imaging.Heatmap(boundary, imaging.Hot, bounds.Dx(), bounds.Dy())
	boundaryPath := filepath.Join(a.outputDir, "splicing", fmt.Sprintf("splicing_boundaries_%s.png", stem))
	if err := imaging.SavePNG(imaging.Blend(img, heat, 0.6), boundaryPath); err != nil {
		a.Log().Warnf("failed to write splicing boundary map: %v", err)
	} else {
		result.AddArtifact(boundaryPath)
	}

	noisePath := filepath.Join(a.outputDir, "splicing", fmt.Sprintf("splicing_noise_%s.png", stem))
	if err := imaging.SavePNG(imaging.Heatmap(noiseMap, imaging.Jet, bounds.Dx(), bounds.Dy()), noisePath); err != nil {
		a.Log().Warnf("failed to write splicing noise map: %v", err)
	} else {
		result.AddArtifact(noisePath)
	}

	a.Log().Infof("splicing global %.2f (boundary %.2f noise %.2f dct %.2f color %.2f) -> %s",
		globalScore, boundaryScore, noiseScore, dctScore, colorScore, result.SuspicionLevel)
	return result
}

// noiseMap reduces the median-filter residual to block variances. Cameras
// imprint a roughly uniform noise floor, pasted regions carry their own.
func (a *Analyzer) noiseMap(gray *stats.Map) *stats.Map {
	residual := imaging.AbsDiff(gray, imaging.MedianFilter(gray, medianWindow))
	return stats.BlockReduce(residual, a.blockSize, stats.Variance)
}

// dctMap measures high-frequency DCT energy per block. Blocks re-compressed
// at a different quality than their neighbors stand out here.
func (a *Analyzer) dctMap(gray *stats.Map) *stats.Map {
	bw := gray.Width / a.blockSize
	bh := gray.Height / a.blockSize
	out := stats.NewMap(bw, bh)

	block := stats.NewMap(a.blockSize, a.blockSize)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for y := 0; y < a.blockSize; y++ {
				for x := 0; x < a.blockSize; x++ {
					block.Set(x, y, gray.At(bx*a.blockSize+x, by*a.blockSize+y))
				}
			}
			out.Set(bx, by, imaging.HighFrequencyEnergy(imaging.DCT2D(block)))
		}
	}
	return out
}

// colorMap sums the block variances of the three LAB channels. Splices from
// a differently lit or differently white-balanced source shift all three.
func (a *Analyzer) colorMap(img image.Image) *stats.Map {
	l, labA, labB := imaging.LABChannels(img)

	lVar := stats.BlockReduce(l, a.blockSize, stats.Variance)
	aVar := stats.BlockReduce(labA, a.blockSize, stats.Variance)
	bVar := stats.BlockReduce(labB, a.blockSize, stats.Variance)

	out := stats.NewMap(lVar.Width, lVar.Height)
	for i := range out.Data {
		out.Data[i] = lVar.Data[i] + aVar.Data[i] + bVar.Data[i]
	}
	return out
}

func fuse(noise, dct, colorMap *stats.Map) *stats.Map {
	n := stats.MinMaxNormalize(noise)
	d := stats.MinMaxNormalize(dct)
	c := stats.MinMaxNormalize(colorMap)

	out := stats.NewMap(n.Width, n.Height)
	for i := range out.Data {
		out.Data[i] = weightNoise*n.Data[i] + weightDCT*d.Data[i] + weightColor*c.Data[i]
	}
	return out
}

// subScore converts a block map's coefficient of variation to a 0..100 scale.
func subScore(m *stats.Map) float64 {
	return math.Min(stats.InconsistencyScore(m)*50, 100)
}
