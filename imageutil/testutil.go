package imageutil

import "math/rand"

// CreateLineMask creates a mask with a horizontal line of the given length
// starting at (x, y).
func CreateLineMask(width, height, x, y, length int) *BitMask {
	m := NewBitMask(width, height)
	for i := 0; i < length; i++ {
		m.Set(x+i, y, true)
	}
	return m
}

// CreateRectOutlineMask creates a mask with a one-pixel rectangle outline.
func CreateRectOutlineMask(width, height, x0, y0, x1, y1 int) *BitMask {
	m := NewBitMask(width, height)
	for x := x0; x <= x1; x++ {
		m.Set(x, y0, true)
		m.Set(x, y1, true)
	}
	for y := y0; y <= y1; y++ {
		m.Set(x0, y, true)
		m.Set(x1, y, true)
	}
	return m
}

// CreateFilledRectMask creates a mask with a solid rectangle.
func CreateFilledRectMask(width, height, x0, y0, x1, y1 int) *BitMask {
	m := NewBitMask(width, height)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

// CreateRandomMask creates a mask with the given fill fraction using a
// seeded generator, for reproducible property-style tests.
func CreateRandomMask(width, height int, fill float64, seed int64) *BitMask {
	rng := rand.New(rand.NewSource(seed))
	m := NewBitMask(width, height)
	for i := range m.Bits {
		if rng.Float64() < fill {
			m.Bits[i] = true
		}
	}
	return m
}

// CreateStrokeImage creates a white grayscale image with a black thick
// horizontal bar, resembling a drawn stroke.
func CreateStrokeImage(width, height, x0, y0, x1, y1 int) *GrayImage {
	img := NewWhiteImage(width, height)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetGrayValue(x, y, 0)
		}
	}
	return img
}
