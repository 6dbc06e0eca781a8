package drawscore

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/drawscore/drawscore/imageutil"
)

const (
	// DefaultFontName is used whenever a caller passes an empty font name.
	DefaultFontName = "Fredoka-Regular"

	// glyphHeightFraction is the glyph size relative to the canvas.
	glyphHeightFraction = 0.75

	renderDPI = 72
)

// ErrNoFontAvailable indicates that no font in the fallback chain could be
// loaded, including the built-in one. This means bundled assets are missing
// or corrupt; nothing can ever render, so callers should treat it as fatal.
var ErrNoFontAvailable = errors.New("no usable font in fallback chain")

// systemFontPaths are tried after the bundled fonts directory.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

// builtinFontKey is the cache key for the embedded Go Regular fallback.
const builtinFontKey = "\x00builtin"

// FontCache loads and memoizes parsed TrueType fonts. Concurrent first
// access may parse the same file twice; the parses are identical and the
// spare result is discarded, so no extra serialization is needed.
type FontCache struct {
	// FontsDir is the directory holding bundled .ttf files. May be empty,
	// in which case only system paths and the built-in font are tried.
	FontsDir string

	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

// NewFontCache creates a cache reading bundled fonts from fontsDir.
func NewFontCache(fontsDir string) *FontCache {
	return &FontCache{
		FontsDir: fontsDir,
		fonts:    make(map[string]*truetype.Font),
	}
}

// Clear drops all memoized fonts. Intended for test isolation.
func (c *FontCache) Clear() {
	c.mu.Lock()
	c.fonts = make(map[string]*truetype.Font)
	c.mu.Unlock()
}

func (c *FontCache) cached(key string) (*truetype.Font, bool) {
	c.mu.Lock()
	f, ok := c.fonts[key]
	c.mu.Unlock()
	return f, ok
}

func (c *FontCache) store(key string, f *truetype.Font) {
	c.mu.Lock()
	c.fonts[key] = f
	c.mu.Unlock()
}

// loadFile reads and parses a TrueType font from disk, memoizing by path.
func (c *FontCache) loadFile(path string) (*truetype.Font, error) {
	if f, ok := c.cached(path); ok {
		return f, nil
	}

	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	c.store(path, f)
	return f, nil
}

// builtin returns the embedded Go Regular font, the final fallback.
func (c *FontCache) builtin() (*truetype.Font, error) {
	if f, ok := c.cached(builtinFontKey); ok {
		return f, nil
	}
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: built-in font failed to parse: %v", ErrNoFontAvailable, err)
	}
	c.store(builtinFontKey, f)
	return f, nil
}

func ensureTTF(name string) string {
	if strings.HasSuffix(name, ".ttf") {
		return name
	}
	return name + ".ttf"
}

// Resolve walks the fallback chain for fontName: the requested bundled
// font, the default bundled font, known system fonts, and finally the
// embedded built-in font.
func (c *FontCache) Resolve(fontName string) (*truetype.Font, error) {
	var paths []string
	if c.FontsDir != "" {
		if fontName != "" {
			paths = append(paths, filepath.Join(c.FontsDir, ensureTTF(fontName)))
		}
		paths = append(paths, filepath.Join(c.FontsDir, ensureTTF(DefaultFontName)))
	}
	paths = append(paths, systemFontPaths...)

	for _, path := range paths {
		if f, err := c.loadFile(path); err == nil {
			return f, nil
		}
	}
	return c.builtin()
}

// RenderCharacter renders a single character as black ink on a white
// size x size canvas. The glyph is drawn at 75% of the canvas height and
// centered using its ink bounding box. Output is pixel-identical across
// calls for the same (character, size, fontName).
func (c *FontCache) RenderCharacter(character string, size int, fontName string) (*imageutil.GrayImage, error) {
	f, err := c.Resolve(fontName)
	if err != nil {
		return nil, err
	}

	fontSize := float64(int(float64(size) * glyphHeightFraction))
	img := imageutil.NewWhiteImage(size, size)

	face := truetype.NewFace(f, &truetype.Options{
		Size:    fontSize,
		DPI:     renderDPI,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	// Ink bounding box relative to the baseline origin.
	bounds, _ := font.BoundString(face, character)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	// Place the baseline so the ink box lands centered on the canvas.
	x := (size-w)/2 - bounds.Min.X.Floor()
	y := (size-h)/2 - bounds.Min.Y.Floor()

	ctx := freetype.NewContext()
	ctx.SetDPI(renderDPI)
	ctx.SetFont(f)
	ctx.SetFontSize(fontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.Gray)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)

	if _, err := ctx.DrawString(character, freetype.Pt(x, y)); err != nil {
		return nil, fmt.Errorf("drawing %q: %w", character, err)
	}

	return img, nil
}

// AvailableFontFiles lists the bundled font identifiers (file names without
// the .ttf extension), sorted. A missing directory yields an empty list.
func (c *FontCache) AvailableFontFiles() []string {
	entries, err := os.ReadDir(c.FontsDir)
	if err != nil {
		return nil
	}

	var fonts []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".ttf") {
			fonts = append(fonts, strings.TrimSuffix(name, ".ttf"))
		}
	}
	sort.Strings(fonts)
	return fonts
}

// RenderFontPreview renders a sample sheet of the font's letters and digits
// and returns it as a PNG data URL.
func (c *FontCache) RenderFontPreview(fontName string, size int) (string, error) {
	f, err := c.Resolve(fontName)
	if err != nil {
		return "", err
	}

	img := imageutil.NewWhiteImage(size, size)
	fontSize := float64(size) / 16

	ctx := freetype.NewContext()
	ctx.SetDPI(renderDPI)
	ctx.SetFont(f)
	ctx.SetFontSize(fontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.Gray)
	ctx.SetSrc(image.Black)
	// No hinting here: at preview point sizes the bytecode hinter can hit
	// a zero divisor on some glyphs, and hinting gains nothing visually.
	ctx.SetHinting(font.HintingNone)

	lines := []string{
		"ABCDEFGHIJKLM",
		"NOPQRSTUVWXYZ",
		"abcdefghijklm",
		"nopqrstuvwxyz",
		"0123456789",
	}

	lineHeight := int(float64(size) * 0.12)
	y := int(float64(size) * 0.12)
	for _, line := range lines {
		if _, err := ctx.DrawString(line, freetype.Pt(10, y)); err != nil {
			return "", fmt.Errorf("drawing preview line: %w", err)
		}
		y += lineHeight
	}

	return pngDataURL(img)
}
