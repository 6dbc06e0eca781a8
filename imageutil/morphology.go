package imageutil

import "image"

// Dilate grows the mask by one pixel in all 8 directions, repeated
// iterations times (3x3 square structuring element).
func Dilate(m *BitMask, iterations int) *BitMask {
	cur := m.Clone()
	for it := 0; it < iterations; it++ {
		next := cur.Clone()
		for y := 0; y < cur.H; y++ {
			for x := 0; x < cur.W; x++ {
				if cur.Get(x, y) {
					continue
				}
				if cur.NeighborCount(x, y) > 0 {
					next.Set(x, y, true)
				}
			}
		}
		cur = next
	}
	return cur
}

// Label assigns a positive component label to each set pixel using
// 8-connectivity. Labels are issued in row-major discovery order starting
// at 1; unset pixels get 0. Returns the label grid and the component count.
func Label(m *BitMask) ([]int, int) {
	labels := make([]int, len(m.Bits))
	next := 0

	var queue []image.Point
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			idx := y*m.W + x
			if !m.Bits[idx] || labels[idx] != 0 {
				continue
			}
			next++
			labels[idx] = next
			queue = append(queue[:0], image.Point{X: x, Y: y})

			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if !m.Get(nx, ny) {
							continue
						}
						nidx := ny*m.W + nx
						if labels[nidx] == 0 {
							labels[nidx] = next
							queue = append(queue, image.Point{X: nx, Y: ny})
						}
					}
				}
			}
		}
	}

	return labels, next
}

// ComponentMask extracts the pixels carrying the given label as a new mask.
func ComponentMask(m *BitMask, labels []int, label int) *BitMask {
	out := NewBitMask(m.W, m.H)
	for i := range m.Bits {
		if labels[i] == label {
			out.Bits[i] = true
		}
	}
	return out
}

// Endpoints returns the coordinates of all skeleton endpoints (set pixels
// with exactly one of their 8 neighbors set) in row-major order.
func Endpoints(m *BitMask) []image.Point {
	var pts []image.Point
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) && m.NeighborCount(x, y) == 1 {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// Junctions returns the coordinates of all skeleton junction pixels (set
// pixels with three or more of their 8 neighbors set) in row-major order.
func Junctions(m *BitMask) []image.Point {
	var pts []image.Point
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) && m.NeighborCount(x, y) >= 3 {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}
