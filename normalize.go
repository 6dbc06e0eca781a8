package drawscore

import (
	"image"

	"gonum.org/v1/gonum/floats"

	"github.com/drawscore/drawscore/imageutil"
)

const (
	// ExtractTargetSize is the canonical comparison resolution.
	ExtractTargetSize = 128

	// ExtractPadding is the blank border fraction around a centered glyph.
	ExtractPadding = 0.1

	// inkCutoff separates drawn pixels from background when extracting.
	inkCutoff = 200

	// DefaultStrokeThickness is the uniform stroke width strokes are
	// rebuilt to before comparison.
	DefaultStrokeThickness = 5

	// Sanding parameters: pruning passes and the gap-bridging radius.
	sandPruneLength = 8
	sandBridgeGap   = 10

	epsilon = 1e-8
)

// ExtractAndCenter isolates the drawn ink, rescales it to fit the target
// canvas with padding (preserving aspect ratio), and centers it on a white
// background. The result is a [0,1] grid, so scoring is invariant to where
// and how large the user drew. An all-background input returns an all-ones
// grid.
func ExtractAndCenter(src image.Image, targetSize int, padding float64) *imageutil.FloatGrid {
	gray := imageutil.GrayImageFromImage(src)
	mask := imageutil.MaskFromGray(gray, inkCutoff)
	if !mask.Any() {
		return imageutil.NewFloatGridFilled(targetSize, targetSize, 1.0)
	}

	// Ink bounding box.
	minX, minY := gray.Width(), gray.Height()
	maxX, maxY := -1, -1
	for y := 0; y < gray.Height(); y++ {
		for x := 0; x < gray.Width(); x++ {
			if !mask.Get(x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	regionW := maxX - minX + 1
	regionH := maxY - minY + 1
	region := imageutil.NewGrayImage(regionW, regionH)
	for y := 0; y < regionH; y++ {
		for x := 0; x < regionW; x++ {
			region.SetGrayValue(x, y, gray.GetGray(minX+x, minY+y))
		}
	}

	available := int(float64(targetSize) * (1 - 2*padding))
	scale := float64(available) / float64(regionW)
	if s := float64(available) / float64(regionH); s < scale {
		scale = s
	}
	newW := int(float64(regionW) * scale)
	if newW < 1 {
		newW = 1
	}
	newH := int(float64(regionH) * scale)
	if newH < 1 {
		newH = 1
	}

	resized := imageutil.ResizeGray(region, newW, newH, imageutil.InterpolationArea)

	out := imageutil.NewFloatGridFilled(targetSize, targetSize, 1.0)
	xOff := (targetSize - newW) / 2
	yOff := (targetSize - newH) / 2
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			out.Set(xOff+x, yOff+y, float64(resized.GetGray(x, y))/255.0)
		}
	}

	// Stretch to the full [0,1] range so the threshold downstream is
	// stable regardless of pen pressure or anti-aliasing.
	lo := floats.Min(out.Data)
	hi := floats.Max(out.Data)
	for i, v := range out.Data {
		out.Data[i] = (v - lo) / (hi - lo + epsilon)
	}

	return out
}

// NormalizeThickness rebuilds the mask's strokes at a uniform width: the
// mask is thinned to a skeleton (sanded first when applySanding is set),
// then re-expanded by thresholding the distance transform at half the
// target thickness. Thin precise drawings and thick sloppy ones of the
// same shape normalize to the same mask.
func NormalizeThickness(mask *imageutil.BitMask, targetThickness int, applySanding bool) *imageutil.BitMask {
	if !mask.Any() {
		return mask.Clone()
	}

	var skeleton *imageutil.BitMask
	if applySanding {
		skeleton = imageutil.Sand(mask, sandPruneLength, sandBridgeGap)
	} else {
		skeleton = imageutil.MedialAxis(mask)
	}

	if targetThickness <= 1 {
		return skeleton
	}
	if !skeleton.Any() {
		return mask.Clone()
	}

	dist := imageutil.DistanceToNearest(skeleton)
	normalized := imageutil.NewBitMask(mask.W, mask.H)
	radius := float64(targetThickness) / 2
	for i, d := range dist.Data {
		if d <= radius {
			normalized.Bits[i] = true
		}
	}
	return normalized
}
