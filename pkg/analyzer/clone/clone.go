// Package clone detects copy-move forgeries: regions duplicated within the
// same image. Keypoint descriptors are matched against each other and pairs
// that are both visually similar and spatially separated are flagged.
package clone

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/analyzer"
	"pixprobe/pkg/classify"
	"pixprobe/pkg/imaging"
	"pixprobe/pkg/models"
)

// Name is the analyzer's registration name.
const Name = "Clone Detection"

const (
	maxKeypoints = 2000
	minKeypoints = 10
	maxDrawn     = 50
)

var bands = classify.Bands{
	{Upper: 5, Interpretation: "No significant duplicated regions detected."},
	{Upper: 20, Interpretation: "Few coincident regions detected. Could be natural repetitive patterns."},
	{Upper: 50, Interpretation: "Multiple duplicated regions detected. Probable use of cloning to hide or duplicate elements."},
	{Interpretation: "Many duplicated regions detected. Very probable intensive manipulation with cloning tools."},
}

// match pairs two keypoint indices with their descriptor distance.
type match struct {
	A, B     int
	Distance float64
}

// Analyzer finds internally duplicated regions via keypoint self-matching.
type Analyzer struct {
	analyzer.BaseAnalyzer
	ratio       float64
	minDistance float64
	outputDir   string
}

// New creates a clone analyzer. ratio is the Lowe ratio-test threshold and
// minDistance the minimum pixel separation for a pair to count as a clone
// rather than a self-neighborhood match.
func New(outputDir string, ratio, minDistance float64, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(Name, log),
		ratio:        ratio,
		minDistance:  minDistance,
		outputDir:    outputDir,
	}
}

// Run extracts keypoints, self-matches their descriptors and counts pairs
// that survive the ratio test and the spatial separation filter. Images too
// flat to yield keypoints come back as not evaluable rather than clean.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return models.ErrorResult(Name, err.Error())
	}
	gray := imaging.Grayscale(img)

	keypoints := detectKeypoints(gray, maxKeypoints)
	if len(keypoints) < minKeypoints {
		result := models.NewResult(Name)
		result.Status = models.StatusInsufficientFeatures
		result.SuspicionLevel = classify.NotEvaluable.String()
		result.Interpretation = "Not enough features found in the image to perform clone analysis."
		result.SetDetail("keypoints_found", len(keypoints))
		a.Log().Infof("only %d keypoints, clone analysis not evaluable", len(keypoints))
		return result
	}

	descriptors := make([][]float64, len(keypoints))
	for i, kp := range keypoints {
		descriptors[i] = computeDescriptor(gray, kp)
	}

	rawMatches := a.selfMatch(descriptors)
	cloneMatches := a.filterByDistance(rawMatches, keypoints)
	count := float64(len(cloneMatches))
	level, interpretation := bands.Classify(count)

	result := models.NewResult(Name)
	result.SuspicionScore = count
	result.SuspicionLevel = level.String()
	result.Interpretation = interpretation
	result.SetDetail("keypoints_found", len(keypoints))
	result.SetDetail("total_matches", len(rawMatches))
	result.SetDetail("suspicious_clones", len(cloneMatches))
	result.SetDetail("threshold_used", a.ratio)

	outPath := filepath.Join(a.outputDir, "clone", fmt.Sprintf("clone_%s.png", analyzer.Stem(imagePath)))
	if err := imaging.SavePNG(renderMatches(img, keypoints, cloneMatches), outPath); err != nil {
		a.Log().Warnf("failed to write clone visualization: %v", err)
	} else {
		result.AddArtifact(outPath)
	}

	a.Log().Infof("%d suspicious clone pairs from %d keypoints -> %s", len(cloneMatches), len(keypoints), result.SuspicionLevel)
	return result
}

// selfMatch runs a brute-force 2-nearest-neighbor search of each descriptor
// against all others (excluding itself) and applies the ratio test: a match
// counts only when it is clearly closer than the runner-up.
func (a *Analyzer) selfMatch(descriptors [][]float64) []match {
	var matches []match
	for i := range descriptors {
		best, second := math.Inf(1), math.Inf(1)
		bestIdx := -1
		for j := range descriptors {
			if i == j {
				continue
			}
			d := euclidean(descriptors[i], descriptors[j])
			if d < best {
				second = best
				best = d
				bestIdx = j
			} else if d < second {
				second = d
			}
		}
		if bestIdx >= 0 && best < a.ratio*second {
			matches = append(matches, match{A: i, B: bestIdx, Distance: best})
		}
	}
	return matches
}

// filterByDistance drops pairs closer than minDistance pixels and collapses
// each unordered pair to a single entry, sorted by descriptor distance so
// the strongest matches render first.
func (a *Analyzer) filterByDistance(matches []match, keypoints []keypoint) []match {
	seen := make(map[[2]int]bool)
	var filtered []match
	for _, m := range matches {
		dx := float64(keypoints[m.A].X - keypoints[m.B].X)
		dy := float64(keypoints[m.A].Y - keypoints[m.B].Y)
		if math.Hypot(dx, dy) <= a.minDistance {
			continue
		}
		key := [2]int{m.A, m.B}
		if m.B < m.A {
			key = [2]int{m.B, m.A}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		filtered = append(filtered, m)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Distance != filtered[j].Distance {
			return filtered[i].Distance < filtered[j].Distance
		}
		return filtered[i].A < filtered[j].A
	})
	return filtered
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
