// Package imageutil provides pure Go raster primitives for the drawing
// scoring pipeline: grayscale images, binary stroke masks, float grids,
// distance transforms and skeleton operations.
package imageutil

import (
	"image"
	"image/color"
)

// GrayImage wraps image.Gray for single-channel glyph images.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// NewWhiteImage creates a GrayImage filled with white (background).
func NewWhiteImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// GrayImageFromImage converts any image.Image to GrayImage using the
// standard BT.601 luminance formula.
func GrayImageFromImage(src image.Image) *GrayImage {
	if g, ok := src.(*GrayImage); ok {
		return g
	}
	bounds := src.Bounds()
	gray := NewGrayImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			lum := (299*int(r>>8) + 587*int(g>>8) + 114*int(b>>8) + 500) / 1000
			if lum > 255 {
				lum = 255
			}
			gray.Gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(lum)})
		}
	}
	return gray
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.GrayAt(x, y).Y
}

// SetGrayValue sets the grayscale value at (x, y).
func (img *GrayImage) SetGrayValue(x, y int, v uint8) {
	img.Gray.SetGray(x, y, color.Gray{Y: v})
}

// Clone creates a deep copy of the image.
func (img *GrayImage) Clone() *GrayImage {
	clone := NewGrayImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// FloatGrid is a dense row-major grid of float64 values. Normalized glyph
// images use [0,1] where 0 is ink and 1 is background; distance transforms
// store pixel distances.
type FloatGrid struct {
	W, H int
	Data []float64
}

// NewFloatGrid creates a zero-filled grid.
func NewFloatGrid(width, height int) *FloatGrid {
	return &FloatGrid{W: width, H: height, Data: make([]float64, width*height)}
}

// NewFloatGridFilled creates a grid with every cell set to v.
func NewFloatGridFilled(width, height int, v float64) *FloatGrid {
	g := NewFloatGrid(width, height)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// At returns the value at (x, y).
func (g *FloatGrid) At(x, y int) float64 {
	return g.Data[y*g.W+x]
}

// Set stores v at (x, y).
func (g *FloatGrid) Set(x, y int, v float64) {
	g.Data[y*g.W+x] = v
}

// Mean returns the average of all cells, or 0 for an empty grid.
func (g *FloatGrid) Mean() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.Data {
		sum += v
	}
	return sum / float64(len(g.Data))
}

// GridFromGray converts a grayscale image to a [0,1] float grid.
func GridFromGray(img *GrayImage) *FloatGrid {
	g := NewFloatGrid(img.Width(), img.Height())
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Set(x, y, float64(img.GetGray(x, y))/255.0)
		}
	}
	return g
}

// GrayFromGrid converts a [0,1] float grid back to a grayscale image,
// clamping out-of-range values.
func GrayFromGrid(g *FloatGrid) *GrayImage {
	img := NewGrayImage(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGrayValue(x, y, uint8(v*255+0.5))
		}
	}
	return img
}
