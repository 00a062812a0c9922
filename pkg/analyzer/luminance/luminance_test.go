package luminance

import (
	"image"
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

func TestFlatImageScoresLow(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	a := New(t.TempDir(), 32, nil)

	result := a.Run(writeTestPNG(t, img))

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, "Low", result.SuspicionLevel)
	assert.Less(t, result.SuspicionScore, 0.3)
}

func TestUniformGradientScoresLow(t *testing.T) {
	// A single global light direction has near-zero circular variance in
	// every block.
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.Pix[y*img.Stride+x] = uint8(x * 2)
		}
	}
	a := New(t.TempDir(), 32, nil)

	result := a.Run(writeTestPNG(t, img))

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, "Low", result.SuspicionLevel)
}

func TestWritesBothArtifacts(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			img.Pix[y*img.Stride+x] = uint8(x + y)
		}
	}
	a := New(t.TempDir(), 32, nil)

	result := a.Run(writeTestPNG(t, img))

	require.Equal(t, models.StatusSuccess, result.Status)
	require.Len(t, result.Artifacts, 2)
	assert.Contains(t, result.Artifacts[0], "luminance_heatmap_input.png")
	assert.Contains(t, result.Artifacts[1], "luminance_arrows_input.png")
	for _, artifact := range result.Artifacts {
		assert.FileExists(t, artifact)
	}
}

func TestMissingFileIsError(t *testing.T) {
	a := New(t.TempDir(), 32, nil)
	result := a.Run("/nonexistent/image.png")

	assert.Equal(t, models.StatusError, result.Status)
}
