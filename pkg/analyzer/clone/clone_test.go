package clone

import (
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixprobe/pkg/models"
)

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// duplicatedPatchImage builds a flat canvas carrying the same textured patch
// at two locations well beyond the spatial match threshold.
func duplicatedPatchImage(t *testing.T) image.Image {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 256, 256))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	const patch = 64
	rng := rand.New(rand.NewSource(42))
	texture := make([]uint8, patch*patch)
	for i := range texture {
		texture[i] = uint8(rng.Intn(256))
	}

	paste := func(ox, oy int) {
		for y := 0; y < patch; y++ {
			for x := 0; x < patch; x++ {
				img.Pix[(oy+y)*img.Stride+ox+x] = texture[y*patch+x]
			}
		}
	}
	paste(30, 30)
	paste(150, 150)
	return img
}

func TestDuplicatedPatchIsDetected(t *testing.T) {
	path := writeTestPNG(t, duplicatedPatchImage(t))
	a := New(t.TempDir(), 0.7, 50, nil)

	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Greater(t, result.Details["suspicious_clones"].(int), 0)
	assert.NotEqual(t, "Low", result.SuspicionLevel)
	assert.Equal(t, 0.7, result.Details["threshold_used"])
}

func TestFlatImageNotEvaluable(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	a := New(t.TempDir(), 0.7, 50, nil)

	result := a.Run(writeTestPNG(t, img))

	assert.Equal(t, models.StatusInsufficientFeatures, result.Status)
	assert.Equal(t, "Not Evaluable", result.SuspicionLevel)
}

func TestNearbyMatchesFilteredOut(t *testing.T) {
	keypoints := []keypoint{{X: 30, Y: 30}, {X: 40, Y: 30}, {X: 200, Y: 200}}
	matches := []match{
		{A: 0, B: 1, Distance: 0.1}, // 10px apart, below the threshold
		{A: 0, B: 2, Distance: 0.2},
	}
	a := New(t.TempDir(), 0.7, 50, nil)

	filtered := a.filterByDistance(matches, keypoints)

	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].B)
}

func TestReciprocalPairsCollapse(t *testing.T) {
	keypoints := []keypoint{{X: 0, Y: 0}, {X: 200, Y: 200}}
	matches := []match{
		{A: 0, B: 1, Distance: 0.1},
		{A: 1, B: 0, Distance: 0.1},
	}
	a := New(t.TempDir(), 0.7, 50, nil)

	assert.Len(t, a.filterByDistance(matches, keypoints), 1)
}

func TestRunIsDeterministic(t *testing.T) {
	path := writeTestPNG(t, duplicatedPatchImage(t))
	a := New(t.TempDir(), 0.7, 50, nil)

	first := a.Run(path)
	second := a.Run(path)

	assert.Equal(t, first.SuspicionScore, second.SuspicionScore)
	assert.Equal(t, first.Details["keypoints_found"], second.Details["keypoints_found"])
}

func TestIdenticalDescriptorsMatch(t *testing.T) {
	a := New(t.TempDir(), 0.7, 50, nil)
	descriptors := [][]float64{
		{1, 0, 0, 0},
		{1, 0, 0, 0},  // exact twin of the first
		{0, 1, 0, 0},  // far from both
		{0, 0, 1, 0},
	}

	matches := a.selfMatch(descriptors)

	// The twin pair matches in both directions, the loners fail the ratio
	// test because their best and second-best are equally distant.
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].B)
	assert.Equal(t, 0, matches[1].B)
}
