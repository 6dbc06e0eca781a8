package guidecache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/drawscore/drawscore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "guides.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testGuide(character string, size int, font string) *drawscore.Guide {
	return &drawscore.Guide{
		Character:   character,
		Size:        size,
		FontName:    font,
		TraceImage:  "data:image/png;base64,AAAA",
		StrokeCount: 1,
		AnimatedStrokes: []drawscore.AnimatedStroke{
			{Points: [][2]float64{{10, 10}, {90, 90}}, Color: "#FF0000", Order: 1},
		},
	}
}

func TestGetMiss(t *testing.T) {
	store := openTestStore(t)

	guide, err := store.Get("A", 400, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if guide != nil {
		t.Errorf("expected cache miss, got %+v", guide)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	want := testGuide("A", 400, "Fredoka-Regular")
	if err := store.Put(want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("A", 400, "Fredoka-Regular")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Character != want.Character || got.Size != want.Size || got.FontName != want.FontName {
		t.Errorf("round trip changed identity: %+v", got)
	}
	if len(got.AnimatedStrokes) != 1 || got.AnimatedStrokes[0].Color != "#FF0000" {
		t.Errorf("round trip lost strokes: %+v", got.AnimatedStrokes)
	}
}

func TestEmptyFontUsesDefault(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(testGuide("B", 400, drawscore.DefaultFontName)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("B", 400, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Error("empty font name should resolve to the default font's entry")
	}
}

func TestKeysDoNotCollide(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(testGuide("A", 400, "Fredoka-Regular")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(testGuide("A", 200, "Fredoka-Regular")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(testGuide("A", 400, "OpenDyslexic-Regular")); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CachedCount != 3 {
		t.Errorf("expected 3 distinct entries, got %d", stats.CachedCount)
	}
}

func TestPutReplaces(t *testing.T) {
	store := openTestStore(t)

	first := testGuide("A", 400, "Fredoka-Regular")
	if err := store.Put(first); err != nil {
		t.Fatal(err)
	}
	second := testGuide("A", 400, "Fredoka-Regular")
	second.StrokeCount = 7
	if err := store.Put(second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("A", 400, "Fredoka-Regular")
	if err != nil {
		t.Fatal(err)
	}
	if got.StrokeCount != 7 {
		t.Errorf("second Put did not replace: stroke count %d", got.StrokeCount)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.CachedCount != 1 {
		t.Errorf("replacement grew the cache to %d entries", stats.CachedCount)
	}
}

func TestGetOrGenerate(t *testing.T) {
	store := openTestStore(t)

	calls := 0
	gen := func(character string, size int, fontName string) (*drawscore.Guide, error) {
		calls++
		return testGuide(character, size, fontName), nil
	}

	if _, err := store.GetOrGenerate("A", 400, "Fredoka-Regular", gen); err != nil {
		t.Fatalf("first GetOrGenerate failed: %v", err)
	}
	if _, err := store.GetOrGenerate("A", 400, "Fredoka-Regular", gen); err != nil {
		t.Fatalf("second GetOrGenerate failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("generator ran %d times, want 1", calls)
	}
}

func TestGetOrGenerateError(t *testing.T) {
	store := openTestStore(t)

	genErr := errors.New("no such glyph")
	gen := func(string, int, string) (*drawscore.Guide, error) {
		return nil, genErr
	}

	if _, err := store.GetOrGenerate("A", 400, "", gen); !errors.Is(err, genErr) {
		t.Errorf("expected generator error, got %v", err)
	}

	guide, err := store.Get("A", 400, "")
	if err != nil {
		t.Fatal(err)
	}
	if guide != nil {
		t.Error("failed generation must not be cached")
	}
}

func TestPregenerateAll(t *testing.T) {
	store := openTestStore(t)

	gen := func(character string, size int, fontName string) (*drawscore.Guide, error) {
		if character == "Q" {
			return nil, errors.New("synthetic failure")
		}
		return testGuide(character, size, fontName), nil
	}

	generated, err := store.PregenerateAll(400, "Fredoka-Regular", gen)
	if err == nil {
		t.Error("expected the per-character failure to surface")
	}
	if generated != 61 {
		t.Errorf("generated %d guides, want 61 of 62", generated)
	}

	stats, statErr := store.Stats()
	if statErr != nil {
		t.Fatal(statErr)
	}
	if stats.CachedCount != 61 {
		t.Errorf("cached %d guides, want 61", stats.CachedCount)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(testGuide("A", 400, "Fredoka-Regular")); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	guide, err := store.Get("A", 400, "Fredoka-Regular")
	if err != nil {
		t.Fatal(err)
	}
	if guide != nil {
		t.Error("cache should be empty after Clear")
	}

	// The store must stay usable after clearing.
	if err := store.Put(testGuide("B", 400, "Fredoka-Regular")); err != nil {
		t.Errorf("Put after Clear failed: %v", err)
	}
}

func TestStatsByFont(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(testGuide("A", 400, "Fredoka-Regular")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(testGuide("B", 400, "Fredoka-Regular")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(testGuide("A", 400, "OpenDyslexic-Regular")); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.ByFont["Fredoka-Regular"] != 2 {
		t.Errorf("Fredoka count = %d, want 2", stats.ByFont["Fredoka-Regular"])
	}
	if stats.ByFont["OpenDyslexic-Regular"] != 1 {
		t.Errorf("OpenDyslexic count = %d, want 1", stats.ByFont["OpenDyslexic-Regular"])
	}
	if len(stats.Fonts) != 2 {
		t.Errorf("fonts = %v, want 2 entries", stats.Fonts)
	}
}
