package imageutil

// BitMask is a dense boolean grid where true marks a stroke pixel.
type BitMask struct {
	W, H int
	Bits []bool
}

// NewBitMask creates an all-false mask.
func NewBitMask(width, height int) *BitMask {
	return &BitMask{W: width, H: height, Bits: make([]bool, width*height)}
}

// Get returns the bit at (x, y). Out-of-bounds coordinates read as false.
func (m *BitMask) Get(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Set stores v at (x, y). Out-of-bounds coordinates are ignored.
func (m *BitMask) Set(x, y int, v bool) {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return
	}
	m.Bits[y*m.W+x] = v
}

// Count returns the number of set pixels.
func (m *BitMask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Any reports whether at least one pixel is set.
func (m *BitMask) Any() bool {
	for _, b := range m.Bits {
		if b {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the mask.
func (m *BitMask) Clone() *BitMask {
	clone := NewBitMask(m.W, m.H)
	copy(clone.Bits, m.Bits)
	return clone
}

// NeighborCount returns how many of the 8 neighbors of (x, y) are set.
func (m *BitMask) NeighborCount(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if m.Get(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// MaskFromGray thresholds a grayscale image: pixels darker than cutoff
// become stroke pixels.
func MaskFromGray(img *GrayImage, cutoff uint8) *BitMask {
	m := NewBitMask(img.Width(), img.Height())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if img.GetGray(x, y) < cutoff {
				m.Bits[y*m.W+x] = true
			}
		}
	}
	return m
}

// MaskFromGrid thresholds a [0,1] float grid: values below cutoff are ink.
func MaskFromGrid(g *FloatGrid, cutoff float64) *BitMask {
	m := NewBitMask(g.W, g.H)
	for i, v := range g.Data {
		if v < cutoff {
			m.Bits[i] = true
		}
	}
	return m
}

// Intersection returns the count of pixels set in both masks. The masks
// must have identical dimensions.
func Intersection(a, b *BitMask) int {
	n := 0
	for i := range a.Bits {
		if a.Bits[i] && b.Bits[i] {
			n++
		}
	}
	return n
}

// Union returns the count of pixels set in either mask.
func Union(a, b *BitMask) int {
	n := 0
	for i := range a.Bits {
		if a.Bits[i] || b.Bits[i] {
			n++
		}
	}
	return n
}

// DrawLine sets every pixel on the straight line from (x0, y0) to (x1, y1)
// using Bresenham's algorithm. Used to bridge near-touching stroke gaps.
func (m *BitMask) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		m.Set(x0, y0, true)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
