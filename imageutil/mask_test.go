package imageutil

import "testing"

func TestMaskGetSet(t *testing.T) {
	m := NewBitMask(10, 10)
	m.Set(3, 4, true)

	if !m.Get(3, 4) {
		t.Error("Expected pixel (3,4) to be set")
	}
	if m.Get(4, 3) {
		t.Error("Expected pixel (4,3) to be unset")
	}
}

func TestMaskOutOfBounds(t *testing.T) {
	m := NewBitMask(5, 5)
	m.Set(-1, 0, true)
	m.Set(5, 5, true)

	if m.Count() != 0 {
		t.Errorf("Out-of-bounds Set should be ignored, count = %d", m.Count())
	}
	if m.Get(-1, -1) {
		t.Error("Out-of-bounds Get should read false")
	}
}

func TestMaskCountAndAny(t *testing.T) {
	m := NewBitMask(8, 8)
	if m.Any() {
		t.Error("Empty mask should report Any() == false")
	}

	m.Set(1, 1, true)
	m.Set(2, 2, true)
	if got := m.Count(); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}
	if !m.Any() {
		t.Error("Mask with pixels should report Any() == true")
	}
}

func TestMaskClone(t *testing.T) {
	m := NewBitMask(6, 6)
	m.Set(2, 3, true)

	clone := m.Clone()
	clone.Set(2, 3, false)
	if !m.Get(2, 3) {
		t.Error("Modifying clone should not affect original")
	}
}

func TestNeighborCount(t *testing.T) {
	m := CreateLineMask(10, 10, 2, 5, 6)

	if got := m.NeighborCount(2, 5); got != 1 {
		t.Errorf("Line endpoint should have 1 neighbor, got %d", got)
	}
	if got := m.NeighborCount(4, 5); got != 2 {
		t.Errorf("Line interior should have 2 neighbors, got %d", got)
	}
}

func TestMaskFromGray(t *testing.T) {
	img := NewWhiteImage(4, 4)
	img.SetGrayValue(1, 1, 10)
	img.SetGrayValue(2, 2, 199)

	m := MaskFromGray(img, 200)
	if !m.Get(1, 1) || !m.Get(2, 2) {
		t.Error("Pixels darker than cutoff should be stroke pixels")
	}
	if m.Get(0, 0) {
		t.Error("White pixels should not be stroke pixels")
	}
}

func TestIntersectionUnion(t *testing.T) {
	a := CreateLineMask(10, 10, 0, 5, 6)
	b := CreateLineMask(10, 10, 3, 5, 6)

	if got := Intersection(a, b); got != 3 {
		t.Errorf("Expected intersection 3, got %d", got)
	}
	if got := Union(a, b); got != 9 {
		t.Errorf("Expected union 9, got %d", got)
	}
}

func TestDrawLine(t *testing.T) {
	m := NewBitMask(20, 20)
	m.DrawLine(2, 2, 10, 7)

	if !m.Get(2, 2) || !m.Get(10, 7) {
		t.Error("Line must include both endpoints")
	}

	// A Bresenham line visits one pixel per major-axis step.
	if got := m.Count(); got != 9 {
		t.Errorf("Expected 9 pixels on line, got %d", got)
	}
}

func TestDrawLineVertical(t *testing.T) {
	m := NewBitMask(10, 10)
	m.DrawLine(4, 1, 4, 8)
	if got := m.Count(); got != 8 {
		t.Errorf("Expected 8 pixels, got %d", got)
	}
}
