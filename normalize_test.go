package drawscore

import (
	"testing"

	"github.com/drawscore/drawscore/imageutil"
)

func TestExtractAndCenterBlank(t *testing.T) {
	blank := imageutil.NewWhiteImage(300, 300)

	grid := ExtractAndCenter(blank, ExtractTargetSize, ExtractPadding)
	if grid.W != ExtractTargetSize || grid.H != ExtractTargetSize {
		t.Fatalf("expected %dx%d grid, got %dx%d",
			ExtractTargetSize, ExtractTargetSize, grid.W, grid.H)
	}
	if mean := grid.Mean(); mean < 0.99 {
		t.Errorf("blank input should stay background, mean = %f", mean)
	}
}

func TestExtractAndCenterCentersInk(t *testing.T) {
	// Small stroke tucked into the top-left corner.
	img := imageutil.CreateStrokeImage(400, 400, 10, 10, 60, 60)

	grid := ExtractAndCenter(img, ExtractTargetSize, ExtractPadding)
	mask := imageutil.MaskFromGrid(grid, 0.5)
	if !mask.Any() {
		t.Fatal("extracted grid has no ink")
	}

	minX, minY := grid.W, grid.H
	maxX, maxY := -1, -1
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
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

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	mid := ExtractTargetSize / 2
	if abs(cx-mid) > 8 || abs(cy-mid) > 8 {
		t.Errorf("ink not centered: bbox center (%d,%d), canvas center %d", cx, cy, mid)
	}
}

func TestExtractAndCenterScaleInvariant(t *testing.T) {
	small := imageutil.CreateStrokeImage(200, 200, 50, 40, 150, 160)
	large := imageutil.CreateStrokeImage(800, 800, 200, 160, 600, 640)

	gridSmall := ExtractAndCenter(small, ExtractTargetSize, ExtractPadding)
	gridLarge := ExtractAndCenter(large, ExtractTargetSize, ExtractPadding)

	maskSmall := imageutil.MaskFromGrid(gridSmall, 0.5)
	maskLarge := imageutil.MaskFromGrid(gridLarge, 0.5)

	inter := imageutil.Intersection(maskSmall, maskLarge)
	union := imageutil.Union(maskSmall, maskLarge)
	if union == 0 {
		t.Fatal("no ink extracted")
	}
	if iou := float64(inter) / float64(union); iou < 0.5 {
		t.Errorf("same shape at different scales should align, IoU = %f", iou)
	}
}

func TestNormalizeThicknessEmpty(t *testing.T) {
	empty := imageutil.NewBitMask(64, 64)

	out := NormalizeThickness(empty, DefaultStrokeThickness, true)
	if out.Any() {
		t.Error("empty mask should normalize to empty")
	}
}

func TestNormalizeThicknessUniformWidth(t *testing.T) {
	// A thick horizontal bar should come out roughly target-thickness tall.
	bar := imageutil.CreateFilledRectMask(100, 60, 10, 20, 90, 40)

	out := NormalizeThickness(bar, DefaultStrokeThickness, false)
	if !out.Any() {
		t.Fatal("normalized mask is empty")
	}

	for x := 30; x <= 70; x += 10 {
		height := 0
		for y := 0; y < 60; y++ {
			if out.Get(x, y) {
				height++
			}
		}
		if height < 3 || height > DefaultStrokeThickness+3 {
			t.Errorf("column %d height %d, want near %d", x, height, DefaultStrokeThickness)
		}
	}
}

func TestNormalizeThicknessThinInput(t *testing.T) {
	// A 1px line must be thickened, not erased.
	line := imageutil.CreateLineMask(80, 80, 10, 40, 60)

	out := NormalizeThickness(line, DefaultStrokeThickness, false)
	if out.Count() <= line.Count() {
		t.Errorf("thin line should expand: %d -> %d pixels", line.Count(), out.Count())
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
