package chart

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"aoedash/internal/pages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestRenderPNG(t *testing.T) {
	points := []pages.Point{{Date: day(1), Value: 50}, {Date: day(2), Value: 75}, {Date: day(4), Value: 40}}

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, points, Options{Title: "Win Percentage Over Time", Width: 400, Height: 300}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderPNG_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, []pages.Point{{Date: day(1), Value: 60}}, Options{}))
	assert.NotZero(t, buf.Len())
}

func TestRenderPNG_NoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPNG(&buf, nil, Options{}), ErrNoData)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "out.png")
	require.NoError(t, WriteFile(path, []pages.Point{{Date: day(1), Value: 10}, {Date: day(3), Value: 20}}, Options{}))
	assert.FileExists(t, path)

	missing := filepath.Join(t.TempDir(), "none.png")
	assert.ErrorIs(t, WriteFile(missing, nil, Options{}), ErrNoData)
	assert.NoFileExists(t, missing)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "civ-performance_franks_arabia_1000-1200.png", FileName("civ-performance", "Franks", "Arabia", "1000-1200"))
	assert.Equal(t, "civ-performance_mayans_black-forest.png", FileName("civ-performance", "Mayans", "", "Black Forest"))
}
