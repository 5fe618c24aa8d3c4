package imageprocessing

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// PyramidLevel is a downscaled grayscale version of a frame
type PyramidLevel struct {
	// Actual scale factors relative to the frame (after rounding the level dimensions)
	ScaleX float64
	ScaleY float64
	Width  int
	Height int
	// Luminance, row by row
	Pixels []uint8
}

// At returns luminance at (x, y) of the level
func (level *PyramidLevel) At(x, y int) uint8 {
	return level.Pixels[y*level.Width+x]
}

// ImagePyramid holds grayscale versions of the current frame at decreasing scales.
// The first level has the maximum scale, each following one is scaled by the incremental factor.
type ImagePyramid struct {
	minScale         float64
	maxScale         float64
	incrementalScale float64
	// Nominal scale per level
	scales []float64
	levels []*PyramidLevel
	origin image.Point
}

// NewImagePyramidDefault creates default instance of ImagePyramid suited for 20x20 patches
// of faces between 80 and 480 pixels
func NewImagePyramidDefault() *ImagePyramid {
	pyramid, _ := NewImagePyramid(20.0/480.0, 20.0/80.0, 0.85)
	return pyramid
}

// NewImagePyramid creates new instance of ImagePyramid
func NewImagePyramid(minScale, maxScale, incrementalScale float64) (*ImagePyramid, error) {
	if !(minScale > 0) || maxScale < minScale || !(incrementalScale > 0) || incrementalScale >= 1 {
		return nil, errors.Wrapf(ErrInvalidScales, "got min %f, max %f, incremental %f", minScale, maxScale, incrementalScale)
	}
	scales := make([]float64, 0)
	// Tolerance keeps the minimum scale despite accumulated rounding
	for scale := maxScale; scale >= minScale*(1-1e-9); scale *= incrementalScale {
		scales = append(scales, scale)
	}
	return &ImagePyramid{
		minScale:         minScale,
		maxScale:         maxScale,
		incrementalScale: incrementalScale,
		scales:           scales,
	}, nil
}

// Update rebuilds all levels from the frame
func (pyramid *ImagePyramid) Update(frame image.Image) {
	bounds := frame.Bounds()
	pyramid.origin = bounds.Min
	pyramid.levels = pyramid.levels[:0]
	if bounds.Empty() {
		return
	}
	gray := imaging.Grayscale(frame)
	for _, scale := range pyramid.scales {
		width := maxInt(1, int(math.Round(float64(bounds.Dx())*scale)))
		height := maxInt(1, int(math.Round(float64(bounds.Dy())*scale)))
		resized := imaging.Resize(gray, width, height, imaging.Linear)
		pyramid.levels = append(pyramid.levels, &PyramidLevel{
			ScaleX: float64(width) / float64(bounds.Dx()),
			ScaleY: float64(height) / float64(bounds.Dy()),
			Width:  width,
			Height: height,
			Pixels: luminance(resized),
		})
	}
}

// GetLevel returns the level whose scale is nearest to the given one.
// Returns false if the scale lies more than one step outside the pyramid or no frame was set.
func (pyramid *ImagePyramid) GetLevel(scale float64) (int, *PyramidLevel, bool) {
	if len(pyramid.levels) == 0 {
		return -1, nil, false
	}
	first, last := pyramid.scales[0], pyramid.scales[len(pyramid.scales)-1]
	if scale > first/pyramid.incrementalScale || scale < last*pyramid.incrementalScale {
		return -1, nil, false
	}
	best := 0
	for i := 1; i < len(pyramid.scales); i++ {
		if math.Abs(pyramid.scales[i]-scale) < math.Abs(pyramid.scales[best]-scale) {
			best = i
		}
	}
	return best, pyramid.levels[best], true
}

// GetLevels returns levels of the current frame
func (pyramid *ImagePyramid) GetLevels() []*PyramidLevel {
	return pyramid.levels
}

// GetScales returns nominal scales of the levels
func (pyramid *ImagePyramid) GetScales() []float64 {
	return pyramid.scales
}

// GetOrigin returns top left corner of the current frame
func (pyramid *ImagePyramid) GetOrigin() image.Point {
	return pyramid.origin
}

// luminance extracts the red channel of a gray image
func luminance(img *image.NRGBA) []uint8 {
	bounds := img.Bounds()
	pixels := make([]uint8, 0, bounds.Dx()*bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+bounds.Dx()*4]
		for x := 0; x < bounds.Dx(); x++ {
			pixels = append(pixels, row[x*4])
		}
	}
	return pixels
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
