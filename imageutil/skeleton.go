package imageutil

import (
	"image"
	"math"
	"sort"
)

// MedialAxis reduces a stroke mask to a one-pixel-wide centerline by
// distance-ordered thinning: boundary pixels are peeled in order of their
// distance to the background, and a pixel is only removed when doing so
// preserves the local connectivity of the stroke. Processing pixels from
// the outside in follows the medial-axis ridge and yields smoother
// centerlines than raster-order thinning.
func MedialAxis(m *BitMask) *BitMask {
	skel := m.Clone()
	if !skel.Any() {
		return skel
	}

	// Distance of every stroke pixel to the background, for peel ordering.
	background := NewBitMask(m.W, m.H)
	for i, b := range m.Bits {
		background.Bits[i] = !b
	}
	dist := DistanceToNearest(background)

	type pixel struct {
		x, y int
		d    float64
	}
	pixels := make([]pixel, 0, skel.Count())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) {
				pixels = append(pixels, pixel{x: x, y: y, d: dist.At(x, y)})
			}
		}
	}
	// Pixels were collected row-major, so a stable sort on distance alone
	// keeps the (y, x) tie order and the result is deterministic.
	sort.SliceStable(pixels, func(i, j int) bool { return pixels[i].d < pixels[j].d })

	for changed := true; changed; {
		changed = false
		for _, p := range pixels {
			if !skel.Get(p.x, p.y) {
				continue
			}
			n := skel.NeighborCount(p.x, p.y)
			if n < 2 {
				continue // endpoint or isolated dot, keep
			}
			if neighborComponents(skel, p.x, p.y) != 1 {
				continue // removal would split the stroke
			}
			skel.Set(p.x, p.y, false)
			changed = true
		}
	}

	return skel
}

// neighborComponents counts the 8-connected components formed by the set
// neighbors in the 3x3 ring around (x, y), ignoring the center pixel.
func neighborComponents(m *BitMask, x, y int) int {
	var ring [8]bool
	// Clockwise from north.
	offsets := [8][2]int{
		{0, -1}, {1, -1}, {1, 0}, {1, 1},
		{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
	for i, off := range offsets {
		ring[i] = m.Get(x+off[0], y+off[1])
	}

	components := 0
	var visited [8]bool
	for i := 0; i < 8; i++ {
		if !ring[i] || visited[i] {
			continue
		}
		components++
		// Flood along the ring; adjacent ring positions are 8-connected
		// in the image exactly when they are consecutive, except that
		// consecutive diagonal-orthogonal pairs always touch.
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for j := 0; j < 8; j++ {
				if ring[j] && !visited[j] && ringAdjacent(offsets[cur], offsets[j]) {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return components
}

// ringAdjacent reports whether two ring offsets are 8-connected pixels.
func ringAdjacent(a, b [2]int) bool {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1 && !(dx == 0 && dy == 0)
}

// BridgeGaps repairs strokes that render as near-but-not-quite touching.
// For each endpoint it searches a maxGap radius for the nearest skeleton
// pixel not already connected to the endpoint and rasterizes a straight
// connecting line to it.
func BridgeGaps(skel *BitMask, maxGap int) *BitMask {
	result := skel.Clone()
	endpoints := Endpoints(skel)
	if len(endpoints) < 2 {
		return result
	}

	for _, ep := range endpoints {
		// An earlier bridge may have absorbed this endpoint.
		if result.NeighborCount(ep.X, ep.Y) != 1 {
			continue
		}

		// The endpoint's own stroke always has pixels nearby; bridging
		// to those would be a no-op, so only disconnected pixels qualify.
		own := connectedWithin(result, ep, maxGap)

		bestDist := float64(maxGap) + 1
		bestX, bestY := -1, -1
		for dy := -maxGap; dy <= maxGap; dy++ {
			for dx := -maxGap; dx <= maxGap; dx++ {
				tx, ty := ep.X+dx, ep.Y+dy
				if !result.Get(tx, ty) || own[image.Point{X: tx, Y: ty}] {
					continue
				}
				d := math.Sqrt(float64(dx*dx + dy*dy))
				if d > float64(maxGap) {
					continue
				}
				if d < bestDist {
					bestDist = d
					bestX, bestY = tx, ty
				}
			}
		}

		if bestX >= 0 {
			result.DrawLine(ep.X, ep.Y, bestX, bestY)
		}
	}

	return result
}

// connectedWithin flood-fills the skeleton pixels 8-reachable from p
// without leaving the (2*radius+1) square window around it.
func connectedWithin(m *BitMask, p image.Point, radius int) map[image.Point]bool {
	seen := map[image.Point]bool{p: true}
	stack := []image.Point{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				n := image.Point{X: cur.X + dx, Y: cur.Y + dy}
				if abs(n.X-p.X) > radius || abs(n.Y-p.Y) > radius {
					continue
				}
				if !m.Get(n.X, n.Y) || seen[n] {
					continue
				}
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// Sand cleans a stroke mask into a skeleton: medial-axis thinning, then gap
// bridging, then iterative pruning of endpoint pixels to clip overshoots.
// Pruning runs at most pruneLength passes and never removes more than 15%
// of the post-bridging pixels, so short legitimate strokes (serifs, dots)
// survive.
func Sand(m *BitMask, pruneLength, bridgeGap int) *BitMask {
	if !m.Any() {
		return m.Clone()
	}

	skeleton := MedialAxis(m)
	bridged := BridgeGaps(skeleton, bridgeGap)

	maxRemoval := bridged.Count() * 15 / 100
	totalRemoved := 0
	pruned := bridged.Clone()

	for pass := 0; pass < pruneLength; pass++ {
		if totalRemoved >= maxRemoval {
			break
		}

		endpoints := Endpoints(pruned)
		if len(endpoints) == 0 {
			break
		}

		if totalRemoved+len(endpoints) > maxRemoval {
			budget := maxRemoval - totalRemoved
			if budget <= 0 {
				break
			}
			endpoints = endpoints[:budget]
		}

		for _, ep := range endpoints {
			pruned.Set(ep.X, ep.Y, false)
		}
		totalRemoved += len(endpoints)
	}

	return pruned
}
