package imageprocessing

import "math"

// PatchFilter transforms patch pixels in place
type PatchFilter interface {
	Filter(pixels []uint8)
}

// HistogramEqualization spreads the luminance of a patch over the full range
type HistogramEqualization struct{}

// NewHistogramEqualization creates new instance of HistogramEqualization
func NewHistogramEqualization() *HistogramEqualization {
	return &HistogramEqualization{}
}

// Filter equalizes pixels in place. Uniform patches stay unchanged.
func (he *HistogramEqualization) Filter(pixels []uint8) {
	if len(pixels) == 0 {
		return
	}
	var histogram [256]int
	for _, p := range pixels {
		histogram[p]++
	}
	var cdf [256]int
	sum := 0
	cdfMin := 0
	for v := 0; v < 256; v++ {
		sum += histogram[v]
		cdf[v] = sum
		if cdfMin == 0 && sum > 0 {
			cdfMin = sum
		}
	}
	n := len(pixels)
	if cdfMin == n {
		return
	}
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		if cdf[v] < cdfMin {
			continue
		}
		lut[v] = uint8(math.Round(float64(cdf[v]-cdfMin) * 255.0 / float64(n-cdfMin)))
	}
	for i, p := range pixels {
		pixels[i] = lut[p]
	}
}
