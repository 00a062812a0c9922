package noise

import (
	"image"
	"image/color"
	"image/png"
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

func flatGray(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestFlatImageScoresLow(t *testing.T) {
	path := writeTestPNG(t, flatGray(128, 128, 128))
	a := New(t.TempDir(), 32, nil)

	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, "Low", result.SuspicionLevel)
	assert.Less(t, result.SuspicionScore, 0.5)
}

func TestWritesHeatmapArtifact(t *testing.T) {
	path := writeTestPNG(t, flatGray(96, 96, 200))
	outDir := t.TempDir()
	a := New(outDir, 32, nil)

	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	require.Len(t, result.Artifacts, 1)
	assert.FileExists(t, result.Artifacts[0])
	assert.Contains(t, result.Artifacts[0], "noise_input.png")
}

func TestImpulseRegionRaisesScore(t *testing.T) {
	// One quadrant carries salt noise, the rest is flat. The block variance
	// map becomes uneven and the score must exceed the flat baseline.
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	for y := 0; y < 64; y += 3 {
		for x := 0; x < 64; x += 3 {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	noisyPath := writeTestPNG(t, img)
	flatPath := writeTestPNG(t, flatGray(128, 128, 128))
	a := New(t.TempDir(), 32, nil)

	noisy := a.Run(noisyPath)
	flat := a.Run(flatPath)

	require.Equal(t, models.StatusSuccess, noisy.Status)
	assert.Greater(t, noisy.SuspicionScore, flat.SuspicionScore)
}

func TestMissingFileIsError(t *testing.T) {
	a := New(t.TempDir(), 32, nil)
	result := a.Run("/nonexistent/image.png")

	assert.Equal(t, models.StatusError, result.Status)
	assert.NotEmpty(t, result.Error)
}

func TestRunIsDeterministic(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 96, 96))
	for i := range img.Pix {
		img.Pix[i] = uint8((i*37 + i/96*11) % 256)
	}
	path := writeTestPNG(t, img)
	a := New(t.TempDir(), 32, nil)

	first := a.Run(path)
	second := a.Run(path)

	require.Equal(t, models.StatusSuccess, first.Status)
	assert.Equal(t, first.SuspicionScore, second.SuspicionScore)
	assert.Equal(t, first.SuspicionLevel, second.SuspicionLevel)
}
