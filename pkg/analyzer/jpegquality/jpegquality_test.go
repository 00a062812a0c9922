package jpegquality

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

func testImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.Pix[y*img.Stride+x] = uint8((x*7 + y*13) % 256)
		}
	}
	return img
}

func writeJPEG(t *testing.T, quality int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, testImage(), &jpeg.Options{Quality: quality}))
	return path
}

func TestNonJPEGIsNotApplicable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testImage()))
	f.Close()

	a := New(t.TempDir(), nil)
	result := a.Run(path)

	assert.Equal(t, models.StatusNotApplicable, result.Status)
	assert.Equal(t, "png", result.Details["format"])
	assert.Empty(t, result.Artifacts)
}

func TestJPEGInputSucceeds(t *testing.T) {
	a := New(t.TempDir(), nil)
	result := a.Run(writeJPEG(t, 80))

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.NotEmpty(t, result.SuspicionLevel)
	assert.Contains(t, result.Details, "double_compression")

	quality, ok := result.Details["estimated_quality"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, quality, 50)
	assert.LessOrEqual(t, quality, 95)
}

func TestWritesBlockGridArtifact(t *testing.T) {
	a := New(t.TempDir(), nil)
	result := a.Run(writeJPEG(t, 90))

	require.Equal(t, models.StatusSuccess, result.Status)
	require.Len(t, result.Artifacts, 1)
	assert.FileExists(t, result.Artifacts[0])
	assert.Contains(t, result.Artifacts[0], "jpeg_input.png")
}

func TestMissingFileIsError(t *testing.T) {
	a := New(t.TempDir(), nil)
	result := a.Run("/nonexistent/image.jpg")

	assert.Equal(t, models.StatusError, result.Status)
}

func TestReadQuantTablesFromEncodedJPEG(t *testing.T) {
	tables, err := readQuantTables(writeJPEG(t, 75))

	require.NoError(t, err)
	require.NotEmpty(t, tables)
	for _, table := range tables {
		nonzero := false
		for _, v := range table.Values {
			if v > 0 {
				nonzero = true
				break
			}
		}
		assert.True(t, nonzero, "table %d is all zero", table.ID)
	}
}

func TestReadQuantTablesRejectsNonJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-jpeg.bin")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := readQuantTables(path)
	assert.Error(t, err)
}

func TestQualityFromTableBuckets(t *testing.T) {
	makeTable := func(value uint16) quantTable {
		var table quantTable
		for i := range table.Values {
			table.Values[i] = value
		}
		return table
	}

	assert.Equal(t, 95, qualityFromTable(makeTable(5)))
	assert.Equal(t, 85, qualityFromTable(makeTable(15)))
	assert.Equal(t, 75, qualityFromTable(makeTable(30)))
	assert.Equal(t, 60, qualityFromTable(makeTable(50)))
	assert.Equal(t, 50, qualityFromTable(makeTable(90)))
}

func TestHigherQualityMeansSmallerSteps(t *testing.T) {
	highTables, err := readQuantTables(writeJPEG(t, 95))
	require.NoError(t, err)
	require.NotEmpty(t, highTables)

	lowTables, err := readQuantTables(writeJPEG(t, 50))
	require.NoError(t, err)
	require.NotEmpty(t, lowTables)

	assert.Greater(t, qualityFromTable(highTables[0]), qualityFromTable(lowTables[0]))
}
