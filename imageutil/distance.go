package imageutil

import "math"

// DistanceToNearest computes the exact Euclidean distance from every pixel
// to the nearest set pixel of the mask, using the Felzenszwalb-Huttenlocher
// squared-distance transform (two passes of 1D lower-envelope transforms).
// If the mask is empty every cell is +Inf.
func DistanceToNearest(m *BitMask) *FloatGrid {
	w, h := m.W, m.H
	g := NewFloatGrid(w, h)

	// Seed: 0 at set pixels, +Inf elsewhere.
	for i, b := range m.Bits {
		if b {
			g.Data[i] = 0
		} else {
			g.Data[i] = math.Inf(1)
		}
	}

	n := w
	if h > n {
		n = h
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	// Transform columns, then rows; the row pass takes the square root.
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = g.At(x, y)
		}
		edt1d(f[:h], d[:h], v, z)
		for y := 0; y < h; y++ {
			g.Set(x, y, d[y])
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f[x] = g.At(x, y)
		}
		edt1d(f[:w], d[:w], v, z)
		for x := 0; x < w; x++ {
			g.Set(x, y, math.Sqrt(d[x]))
		}
	}

	return g
}

// edt1d computes the 1D squared distance transform of f into d via the
// lower envelope of parabolas rooted at (i, f[i]). Cells with +Inf height
// contribute no parabola; if no cell is finite the whole line stays +Inf.
func edt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := -1

	for q := 0; q < n; q++ {
		if math.IsInf(f[q], 1) {
			continue
		}
		var s float64
		for k >= 0 {
			p := v[k]
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*(q-p))
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		if k == 0 {
			z[0] = math.Inf(-1)
		} else {
			z[k] = s
		}
		z[k+1] = math.Inf(1)
	}

	if k < 0 {
		for q := 0; q < n; q++ {
			d[q] = math.Inf(1)
		}
		return
	}

	j := 0
	for q := 0; q < n; q++ {
		for z[j+1] < float64(q) {
			j++
		}
		p := v[j]
		dq := float64(q - p)
		d[q] = dq*dq + f[p]
	}
}
