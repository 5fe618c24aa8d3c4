package condensation

import "github.com/google/uuid"

// Sample is a weighted hypothesis about the target: a square region of the frame.
// Weight, Object and ID are only meaningful after the sample went through a measurement model.
type Sample struct {
	// Center of the region
	X float64
	Y float64
	// Side length of the region in frame pixels
	Size float64
	// Relative likelihood of this hypothesis within its population
	Weight float64
	// Whether the measurement model classified the region as target
	Object bool
	// Identifier of the patch the sample was scored on (uuid.Nil if none)
	ID uuid.UUID
}

// NewSample creates unweighted sample
func NewSample(x, y, size float64) Sample {
	return Sample{
		X:    x,
		Y:    y,
		Size: size,
	}
}

// GetBBox returns region covered by the sample
func (sample Sample) GetBBox() Rectangle {
	return NewRectFromCenter(sample.X, sample.Y, sample.Size, sample.Size)
}

// Patch is image data extracted for a sample.
// Patches extracted from the same location of the same frame share ID.
type Patch struct {
	ID uuid.UUID
	// Region in frame coordinates the patch was taken from
	X    float64
	Y    float64
	Size float64
	// Dimensions of the (resampled) patch data
	Width  int
	Height int
	// Grayscale pixels, row-major, Width*Height values
	Pixels []uint8
}

// GetBBox returns region of the frame covered by the patch
func (patch *Patch) GetBBox() Rectangle {
	return NewRectFromCenter(patch.X, patch.Y, patch.Size, patch.Size)
}

// Vector returns patch pixels scaled to [0, 1]
func (patch *Patch) Vector() []float64 {
	vector := make([]float64, len(patch.Pixels))
	for i, px := range patch.Pixels {
		vector[i] = float64(px) / 255.0
	}
	return vector
}
