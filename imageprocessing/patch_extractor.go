package imageprocessing

import (
	"fmt"
	"image"
	"math"

	"github.com/LdDl/facetrack-go/condensation"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var patchNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("facetrack.patch"))

type patchKey struct {
	level int
	left  int
	top   int
}

// PyramidPatchExtractor cuts fixed size patches out of an image pyramid.
// The level is chosen so that the requested region maps to the patch size.
// Requests mapping to the same cell of the same level get the same patch within a frame.
type PyramidPatchExtractor struct {
	pyramid     *ImagePyramid
	patchWidth  int
	patchHeight int
	filters     []PatchFilter
	cache       map[patchKey]*condensation.Patch
}

// NewPyramidPatchExtractorDefault creates default instance of PyramidPatchExtractor: 20x20 patches with histogram equalization
func NewPyramidPatchExtractorDefault() *PyramidPatchExtractor {
	extractor, _ := NewPyramidPatchExtractor(NewImagePyramidDefault(), 20, 20, NewHistogramEqualization())
	return extractor
}

// NewPyramidPatchExtractor creates new instance of PyramidPatchExtractor
func NewPyramidPatchExtractor(pyramid *ImagePyramid, patchWidth, patchHeight int, filters ...PatchFilter) (*PyramidPatchExtractor, error) {
	if pyramid == nil {
		return nil, ErrNilPyramid
	}
	if patchWidth <= 0 || patchHeight <= 0 {
		return nil, ErrInvalidPatchSize
	}
	return &PyramidPatchExtractor{
		pyramid:     pyramid,
		patchWidth:  patchWidth,
		patchHeight: patchHeight,
		filters:     filters,
		cache:       make(map[patchKey]*condensation.Patch),
	}, nil
}

// Update rebuilds the pyramid and forgets patches of the previous frame
func (extractor *PyramidPatchExtractor) Update(frame image.Image) {
	extractor.pyramid.Update(frame)
	clear(extractor.cache)
}

// Extract returns the patch for the square region of the given size centered on (x, y)
func (extractor *PyramidPatchExtractor) Extract(x, y, size float64) (*condensation.Patch, bool) {
	if !(size > 0) {
		return nil, false
	}
	index, level, ok := extractor.pyramid.GetLevel(float64(extractor.patchWidth) / size)
	if !ok {
		return nil, false
	}
	origin := extractor.pyramid.GetOrigin()
	left := int(math.Round((x-float64(origin.X))*level.ScaleX - float64(extractor.patchWidth)/2.0))
	top := int(math.Round((y-float64(origin.Y))*level.ScaleY - float64(extractor.patchHeight)/2.0))
	if left < 0 || top < 0 || left+extractor.patchWidth > level.Width || top+extractor.patchHeight > level.Height {
		return nil, false
	}
	key := patchKey{level: index, left: left, top: top}
	if patch, ok := extractor.cache[key]; ok {
		return patch, true
	}
	pixels := make([]uint8, 0, extractor.patchWidth*extractor.patchHeight)
	for row := top; row < top+extractor.patchHeight; row++ {
		start := row*level.Width + left
		pixels = append(pixels, level.Pixels[start:start+extractor.patchWidth]...)
	}
	for _, filter := range extractor.filters {
		filter.Filter(pixels)
	}
	patch := &condensation.Patch{
		ID:     uuid.NewSHA1(patchNamespace, []byte(fmt.Sprintf("%d:%d:%d", index, left, top))),
		X:      float64(origin.X) + (float64(left)+float64(extractor.patchWidth)/2.0)/level.ScaleX,
		Y:      float64(origin.Y) + (float64(top)+float64(extractor.patchHeight)/2.0)/level.ScaleY,
		Size:   float64(extractor.patchWidth) / level.ScaleX,
		Width:  extractor.patchWidth,
		Height: extractor.patchHeight,
		Pixels: pixels,
	}
	extractor.cache[key] = patch
	return patch, true
}

// GetPatchSize returns width and height of extracted patches
func (extractor *PyramidPatchExtractor) GetPatchSize() (int, int) {
	return extractor.patchWidth, extractor.patchHeight
}

// PatchFromImage scales a whole image down to a patch, e.g. for training examples
func PatchFromImage(img image.Image, patchWidth, patchHeight int, filters ...PatchFilter) *condensation.Patch {
	bounds := img.Bounds()
	resized := imaging.Resize(imaging.Grayscale(img), patchWidth, patchHeight, imaging.Linear)
	pixels := luminance(resized)
	for _, filter := range filters {
		filter.Filter(pixels)
	}
	return &condensation.Patch{
		ID:     uuid.New(),
		X:      float64(bounds.Min.X) + float64(bounds.Dx())/2.0,
		Y:      float64(bounds.Min.Y) + float64(bounds.Dy())/2.0,
		Size:   float64(bounds.Dx()),
		Width:  patchWidth,
		Height: patchHeight,
		Pixels: pixels,
	}
}
