package imageprocessing

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSingleLevelExtractor(t *testing.T, filters ...PatchFilter) *PyramidPatchExtractor {
	t.Helper()
	pyramid, err := NewImagePyramid(1.0, 1.0, 0.5)
	require.NoError(t, err)
	extractor, err := NewPyramidPatchExtractor(pyramid, 10, 10, filters...)
	require.NoError(t, err)
	return extractor
}

func TestPyramidPatchExtractor(t *testing.T) {
	extractor := newSingleLevelExtractor(t)
	extractor.Update(gradientFrame(image.Rect(0, 0, 100, 100)))

	patch, ok := extractor.Extract(50, 50, 10)
	require.True(t, ok)
	assert.Equal(t, 50.0, patch.X)
	assert.Equal(t, 50.0, patch.Y)
	assert.Equal(t, 10.0, patch.Size)
	assert.Equal(t, 10, patch.Width)
	require.Len(t, patch.Pixels, 100)
	assert.InDelta(t, 45, int(patch.Pixels[0]), 1)
	assert.InDelta(t, 54, int(patch.Pixels[9]), 1)
	assert.InDelta(t, 45, int(patch.Pixels[10]), 1)

	same, ok := extractor.Extract(50.3, 49.8, 10.4)
	require.True(t, ok)
	assert.Equal(t, patch.ID, same.ID)
	assert.Same(t, patch, same)

	other, ok := extractor.Extract(60, 50, 10)
	require.True(t, ok)
	assert.NotEqual(t, patch.ID, other.ID)

	_, ok = extractor.Extract(96, 50, 10)
	assert.False(t, ok, "patch exceeding the frame")
	_, ok = extractor.Extract(50, 50, 100)
	assert.False(t, ok, "size outside the pyramid")
	_, ok = extractor.Extract(50, 50, 0)
	assert.False(t, ok, "empty size")
}

func TestPyramidPatchExtractorStableIDs(t *testing.T) {
	extractor := newSingleLevelExtractor(t)
	extractor.Update(gradientFrame(image.Rect(0, 0, 100, 100)))
	first, ok := extractor.Extract(30, 30, 10)
	require.True(t, ok)

	extractor.Update(gradientFrame(image.Rect(0, 0, 100, 100)))
	second, ok := extractor.Extract(30, 30, 10)
	require.True(t, ok)
	assert.Equal(t, first.ID, second.ID)
	assert.NotSame(t, first, second)
}

func TestPyramidPatchExtractorOrigin(t *testing.T) {
	extractor := newSingleLevelExtractor(t)
	extractor.Update(gradientFrame(image.Rect(10, 10, 110, 110)))

	patch, ok := extractor.Extract(60, 60, 10)
	require.True(t, ok)
	assert.Equal(t, 60.0, patch.X)
	assert.InDelta(t, 45, int(patch.Pixels[0]), 1)

	_, ok = extractor.Extract(12, 60, 10)
	assert.False(t, ok)
}

func TestPyramidPatchExtractorFilters(t *testing.T) {
	extractor := newSingleLevelExtractor(t, NewHistogramEqualization())
	extractor.Update(gradientFrame(image.Rect(0, 0, 100, 100)))
	patch, ok := extractor.Extract(50, 50, 10)
	require.True(t, ok)
	assert.Equal(t, uint8(0), patch.Pixels[0])
	assert.Equal(t, uint8(255), patch.Pixels[9])
}

func TestPyramidPatchExtractorValidation(t *testing.T) {
	_, err := NewPyramidPatchExtractor(nil, 20, 20)
	assert.Equal(t, ErrNilPyramid, err)
	_, err = NewPyramidPatchExtractor(NewImagePyramidDefault(), 0, 20)
	assert.Equal(t, ErrInvalidPatchSize, err)
}

func TestPatchFromImage(t *testing.T) {
	patch := PatchFromImage(uniformFrame(image.Rect(0, 0, 40, 40), 100), 20, 20)
	assert.Equal(t, 20, patch.Width)
	assert.Equal(t, 20, patch.Height)
	assert.Equal(t, 40.0, patch.Size)
	assert.Equal(t, 20.0, patch.X)
	require.Len(t, patch.Pixels, 400)
	for _, p := range patch.Pixels {
		assert.InDelta(t, 100, int(p), 1)
	}
}

func TestPyramidPatchExtractorDefault(t *testing.T) {
	extractor := NewPyramidPatchExtractorDefault()
	width, height := extractor.GetPatchSize()
	assert.Equal(t, 20, width)
	assert.Equal(t, 20, height)

	extractor.Update(gradientFrame(image.Rect(0, 0, 320, 240)))
	patch, ok := extractor.Extract(160, 120, 80)
	require.True(t, ok)
	assert.InDelta(t, 160, patch.X, 4)
	assert.InDelta(t, 80, patch.Size, 1)
	assert.Len(t, patch.Pixels, 400)
}
