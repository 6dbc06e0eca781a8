package drawscore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCharacterStrokesKnown(t *testing.T) {
	cache := NewStrokeCache("")

	def, err := cache.CharacterStrokes("A", "")
	if err != nil {
		t.Fatalf("CharacterStrokes(A) failed: %v", err)
	}
	if def.Type != "uppercase" {
		t.Errorf("A has type %q, want uppercase", def.Type)
	}
	if len(def.Strokes) == 0 {
		t.Fatal("A has no strokes")
	}
	for i, s := range def.Strokes {
		if !ValidateStrokeDef(s) {
			t.Errorf("stroke %d of A is malformed: %+v", i, s)
		}
	}
}

func TestCharacterStrokesAllSupported(t *testing.T) {
	cache := NewStrokeCache("")

	var chars []string
	for c := 'A'; c <= 'Z'; c++ {
		chars = append(chars, string(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		chars = append(chars, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		chars = append(chars, string(c))
	}

	for _, ch := range chars {
		if _, err := cache.CharacterStrokes(ch, ""); err != nil {
			t.Errorf("CharacterStrokes(%q) failed: %v", ch, err)
		}
	}
}

func TestCharacterStrokesUnknown(t *testing.T) {
	cache := NewStrokeCache("")

	_, err := cache.CharacterStrokes("§", "")
	if !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("expected ErrUnknownCharacter, got %v", err)
	}
}

func TestCharacterStrokesUnknownFontFallsBack(t *testing.T) {
	cache := NewStrokeCache("")

	def, err := cache.CharacterStrokes("B", "NoSuchFont")
	if err != nil {
		t.Fatalf("unknown font should fall back to default, got %v", err)
	}
	if len(def.Strokes) == 0 {
		t.Error("fallback definition has no strokes")
	}
}

func TestFontKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"", DefaultFontKey},
		{"fredoka", "fredoka"},
		{"Fredoka-Regular", "fredoka"},
		{"TotallyUnknown", DefaultFontKey},
	}
	for _, tc := range cases {
		if got := FontKey(tc.name); got != tc.key {
			t.Errorf("FontKey(%q) = %q, want %q", tc.name, got, tc.key)
		}
	}
}

func TestValidateStrokeDef(t *testing.T) {
	valid := StrokeDef{Points: [][2]float64{{0, 0}, {10, 10}}, Direction: "down"}
	if !ValidateStrokeDef(valid) {
		t.Error("well-formed stroke rejected")
	}
	if ValidateStrokeDef(StrokeDef{Points: [][2]float64{{0, 0}}, Direction: "down"}) {
		t.Error("single-point stroke accepted")
	}
	if ValidateStrokeDef(StrokeDef{Points: [][2]float64{{0, 0}, {10, 10}}}) {
		t.Error("stroke without direction accepted")
	}
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	data := `{"font":"fredoka","characters":{
		"A":{"type":"uppercase","strokes":[{"points":[[0,0],[50,100]],"direction":"down-right"}]},
		"B":{"type":"uppercase","strokes":[]},
		"C":{"type":"sideways","strokes":[{"points":[[0,0],[50,100]],"direction":"down"}]}
	}}`
	if err := os.WriteFile(filepath.Join(dir, "fredoka.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewStrokeCache(dir)
	if _, err := cache.CharacterStrokes("A", ""); err != nil {
		t.Errorf("valid entry unavailable: %v", err)
	}
	if _, err := cache.CharacterStrokes("B", ""); !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("strokeless entry should be dropped, got %v", err)
	}
	if _, err := cache.CharacterStrokes("C", ""); !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("unknown-type entry should be dropped, got %v", err)
	}
}

func TestAvailableFonts(t *testing.T) {
	cache := NewStrokeCache("")

	fonts := cache.AvailableFonts()
	if len(fonts) == 0 {
		t.Fatal("no fonts available")
	}
	found := false
	for _, f := range fonts {
		if f.Key == DefaultFontKey {
			found = true
		}
		if f.DisplayName == "" || f.Description == "" {
			t.Errorf("font %q missing display metadata", f.Key)
		}
	}
	if !found {
		t.Errorf("default font %q not listed", DefaultFontKey)
	}
}

func TestMetadata(t *testing.T) {
	meta := Metadata("")
	if meta == nil {
		t.Fatal("default font has no metadata")
	}
	if meta.Key != DefaultFontKey {
		t.Errorf("metadata key = %q, want %q", meta.Key, DefaultFontKey)
	}
}

func TestGuidedStrokes(t *testing.T) {
	cache := NewStrokeCache("")

	guided, err := cache.GuidedStrokes("A", 400, "")
	if err != nil {
		t.Fatalf("GuidedStrokes failed: %v", err)
	}
	if guided.Character != "A" {
		t.Errorf("character = %q, want A", guided.Character)
	}
	if guided.TotalStrokes != len(guided.Strokes) {
		t.Errorf("total %d disagrees with %d strokes", guided.TotalStrokes, len(guided.Strokes))
	}
	if len(guided.Strokes) == 0 {
		t.Fatal("no guided strokes")
	}

	wantRadius := 400 * startEndZoneFraction
	for i, s := range guided.Strokes {
		if s.Order != i+1 {
			t.Errorf("stroke %d has order %d", i, s.Order)
		}
		if s.Instruction == "" {
			t.Errorf("stroke %d has no instruction", i)
		}
		if s.Color == "" {
			t.Errorf("stroke %d has no color", i)
		}
		if s.StartZone.Radius != wantRadius || s.EndZone.Radius != wantRadius {
			t.Errorf("stroke %d zone radius = %f/%f, want %f",
				i, s.StartZone.Radius, s.EndZone.Radius, wantRadius)
		}
		for _, p := range s.Points {
			if p[0] < 0 || p[0] > 400 || p[1] < 0 || p[1] > 400 {
				t.Fatalf("stroke %d point %v outside canvas", i, p)
			}
		}
		first := s.Points[0]
		if s.StartZone.X != first[0] || s.StartZone.Y != first[1] {
			t.Errorf("stroke %d start zone %v not at first point %v",
				i, s.StartZone, first)
		}
	}
}

func TestGuidedStrokesUnknownCharacter(t *testing.T) {
	cache := NewStrokeCache("")

	if _, err := cache.GuidedStrokes("¤", 400, ""); !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("expected ErrUnknownCharacter, got %v", err)
	}
}
