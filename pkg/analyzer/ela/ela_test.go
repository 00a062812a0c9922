package ela

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixprobe/pkg/models"
)

func flatImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func TestFlatImageScoresLow(t *testing.T) {
	// A uniform image survives re-encoding almost unchanged, so the error
	// level stays in the lowest band.
	path := filepath.Join(t.TempDir(), "input.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, flatImage(), &jpeg.Options{Quality: 90}))
	f.Close()

	a := New(t.TempDir(), 90, nil)
	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, "Low", result.SuspicionLevel)
	assert.Less(t, result.SuspicionScore, 10.0)
}

func TestPNGInputIsSupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, flatImage()))
	f.Close()

	a := New(t.TempDir(), 90, nil)
	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, 90, result.Details["recompression_quality"])
}

func TestWritesErrorMapArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, flatImage()))
	f.Close()

	a := New(t.TempDir(), 90, nil)
	result := a.Run(path)

	require.Equal(t, models.StatusSuccess, result.Status)
	require.Len(t, result.Artifacts, 1)
	assert.FileExists(t, result.Artifacts[0])
	assert.Contains(t, result.Artifacts[0], "ela_input.png")
}

func TestMissingFileIsError(t *testing.T) {
	a := New(t.TempDir(), 90, nil)
	result := a.Run("/nonexistent/image.png")

	assert.Equal(t, models.StatusError, result.Status)
}
