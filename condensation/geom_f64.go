package condensation

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned box in frame coordinates.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRectFromCenter creates rectangle of given size centered on (cx, cy)
func NewRectFromCenter(cx, cy, width, height float64) Rectangle {
	return Rectangle{
		X:      cx - width/2.0,
		Y:      cy - height/2.0,
		Width:  width,
		Height: height,
	}
}

// Center returns center of the rectangle
func (rect Rectangle) Center() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// Image converts rectangle to integer image rectangle (rounding corners)
func (rect Rectangle) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(rect.X)),
		int(math.Round(rect.Y)),
		int(math.Round(rect.X+rect.Width)),
		int(math.Round(rect.Y+rect.Height)),
	)
}

type Point struct {
	X float64
	Y float64
}
