package exiftool

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixprobe/pkg/models"
)

func writeTestPNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 16, 16))))
	return path
}

func TestUnavailableToolYieldsToolUnavailableStatus(t *testing.T) {
	a := New(30*time.Second, nil)
	a.SetAvailable(false)

	result := a.Run(writeTestPNG(t))

	assert.Equal(t, models.StatusToolUnavailable, result.Status)
	assert.Empty(t, result.Error)
	assert.NotEmpty(t, result.Interpretation)
}

func TestMissingFileIsError(t *testing.T) {
	a := New(30*time.Second, nil)
	result := a.Run("/nonexistent/image.png")

	assert.Equal(t, models.StatusError, result.Status)
}

func TestAnalyzerIdentity(t *testing.T) {
	a := New(30*time.Second, nil)

	assert.Equal(t, Name, a.Name())
	assert.Equal(t, "exiftool", a.Command())
}
