package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixprobe/pkg/stats"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLoadAndDetectFormatPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(16, 16, color.RGBA{R: 128, G: 128, B: 128, A: 255})))
	require.NoError(t, f.Close())

	img, format, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 16, img.Bounds().Dx())

	detected, err := DetectFormat(path)
	require.NoError(t, err)
	assert.Equal(t, "png", detected)
}

func TestGrayscaleSolidColor(t *testing.T) {
	img := solidImage(8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	gray := Grayscale(img)

	for _, v := range gray.Data {
		assert.InDelta(t, 128, v, 0.5)
	}
}

func TestMedianFilterRemovesImpulse(t *testing.T) {
	m := stats.NewMap(9, 9)
	for i := range m.Data {
		m.Data[i] = 100
	}
	m.Set(4, 4, 255) // single outlier

	filtered := MedianFilter(m, 5)
	assert.Equal(t, 100.0, filtered.At(4, 4))
}

func TestGaussianBlurPreservesFlat(t *testing.T) {
	m := stats.NewMap(16, 16)
	for i := range m.Data {
		m.Data[i] = 42
	}

	blurred := GaussianBlur(m, 5)
	for _, v := range blurred.Data {
		assert.InDelta(t, 42, v, 1e-9)
	}
}

func TestCannyEdgesFlatImage(t *testing.T) {
	m := stats.NewMap(32, 32)
	for i := range m.Data {
		m.Data[i] = 90
	}

	edges := CannyEdges(m, 50, 150)
	for _, v := range edges.Data {
		assert.Equal(t, 0.0, v)
	}
}

func TestCannyEdgesStep(t *testing.T) {
	m := stats.NewMap(32, 32)
	for y := 0; y < 32; y++ {
		for x := 16; x < 32; x++ {
			m.Set(x, y, 255)
		}
	}

	edges := CannyEdges(m, 50, 150)
	found := false
	for _, v := range edges.Data {
		if v != 0 {
			found = true
			break
		}
	}
	assert.True(t, found, "vertical step should produce edge pixels")
}

func TestHoughFindsVerticalLine(t *testing.T) {
	edges := stats.NewMap(64, 64)
	for y := 4; y < 60; y++ {
		edges.Set(30, y, 255)
	}

	segments := HoughSegments(edges, 40, 30, 10)
	require.NotEmpty(t, segments)
	seg := segments[0]
	assert.Equal(t, 30, seg.X1)
	assert.Equal(t, 30, seg.X2)
}

func TestDCT2DFlatBlockHasOnlyDC(t *testing.T) {
	block := stats.NewMap(8, 8)
	for i := range block.Data {
		block.Data[i] = 50
	}

	coeffs := DCT2D(block)
	assert.InDelta(t, 400, coeffs.At(0, 0), 1e-6) // 50 * 8 for orthonormal DCT
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x == 0 && y == 0 {
				continue
			}
			assert.InDelta(t, 0, coeffs.At(x, y), 1e-9)
		}
	}
	assert.InDelta(t, 0, HighFrequencyEnergy(coeffs), 1e-9)
}

func TestLABNeutralGrayHasZeroChroma(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	l, a, b := LABChannels(img)

	assert.Greater(t, l.At(0, 0), 0.0)
	assert.InDelta(t, 0, a.At(0, 0), 0.5)
	assert.InDelta(t, 0, b.At(0, 0), 0.5)
}

func TestSavePNGCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "vis.png")
	err := SavePNG(solidImage(4, 4, color.RGBA{A: 255}), path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
