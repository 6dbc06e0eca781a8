package drawscore

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Bundled stroke definitions, one JSON file per font key.
//
//go:embed strokedata/*.json
var strokeFS embed.FS

// DefaultFontKey identifies the font whose stroke definitions are used
// when the requested font has none.
const DefaultFontKey = "fredoka"

// ErrUnknownCharacter is returned when a character has no stroke
// definition in the requested font or the default fallback. It is an
// expected input-validation case, not a failure.
var ErrUnknownCharacter = errors.New("character not found in stroke definitions")

// fontNameMap maps font display names to stroke file keys.
var fontNameMap = map[string]string{
	"Fredoka-Regular":     "fredoka",
	"PlaywriteUS-Regular": "playwrite-us",
	"Nunito-Regular":      "nunito",
	"PatrickHand-Regular": "patrick-hand",
	"Schoolbell-Regular":  "schoolbell",
}

// FontMetadata describes a font for UI display.
type FontMetadata struct {
	Key             string   `json:"key"`
	FileName        string   `json:"file_name"`
	DisplayName     string   `json:"display_name"`
	Style           string   `json:"style"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
}

var fontMetadata = map[string]FontMetadata{
	"fredoka": {
		Key:             "fredoka",
		FileName:        "Fredoka-Regular",
		DisplayName:     "Fredoka",
		Style:           "Rounded Playful",
		Description:     `Bubbly round letters with a playful feel. Number "1" has a base.`,
		Characteristics: []string{"rounded", "playful", "kid-friendly"},
	},
	"playwrite-us": {
		Key:             "playwrite-us",
		FileName:        "PlaywriteUS-Regular",
		DisplayName:     "Playwrite US",
		Style:           "Educational Manuscript",
		Description:     "Designed for US handwriting education with clean, teachable strokes.",
		Characteristics: []string{"educational", "manuscript", "clean"},
	},
	"nunito": {
		Key:             "nunito",
		FileName:        "Nunito-Regular",
		DisplayName:     "Nunito",
		Style:           "Clean Sans-serif",
		Description:     `Simple geometric shapes. Number "1" is a straight line without base.`,
		Characteristics: []string{"geometric", "simple", "modern"},
	},
	"patrick-hand": {
		Key:             "patrick-hand",
		FileName:        "PatrickHand-Regular",
		DisplayName:     "Patrick Hand",
		Style:           "Casual Handwriting",
		Description:     "Natural pen strokes with a casual, handwritten feel.",
		Characteristics: []string{"casual", "handwritten", "natural"},
	},
	"schoolbell": {
		Key:             "schoolbell",
		FileName:        "Schoolbell-Regular",
		DisplayName:     "Schoolbell",
		Style:           "Playful Handwriting",
		Description:     "Kid-friendly handwriting style with a slightly bouncy baseline.",
		Characteristics: []string{"playful", "bouncy", "fun"},
	},
}

// StrokeDef is one expected stroke: ordered points in 0-100 coordinate
// space plus a direction tag.
type StrokeDef struct {
	Points    [][2]float64 `json:"points"`
	Direction string       `json:"direction"`
}

// CharacterDef is the stroke definition of one character.
type CharacterDef struct {
	Type     string      `json:"type"`
	Phonetic string      `json:"phonetic"`
	Sound    string      `json:"sound"`
	Strokes  []StrokeDef `json:"strokes"`
}

// strokeFile mirrors the on-disk JSON contract.
type strokeFile struct {
	Characters map[string]CharacterDef `json:"characters"`
}

// ValidateStrokeDef checks the fixed external stroke contract: at least
// two points, each a finite [x, y] pair, and a direction tag.
func ValidateStrokeDef(s StrokeDef) bool {
	return s.Direction != "" && len(s.Points) >= 2
}

// ValidateCharacterDef checks a full character entry: known type and at
// least one well-formed stroke.
func ValidateCharacterDef(c CharacterDef) bool {
	switch c.Type {
	case "uppercase", "lowercase", "number":
	default:
		return false
	}
	if len(c.Strokes) == 0 {
		return false
	}
	for _, s := range c.Strokes {
		if !ValidateStrokeDef(s) {
			return false
		}
	}
	return true
}

// FontKey converts a display font name to its stroke file key, defaulting
// when the name is empty or unknown.
func FontKey(fontName string) string {
	if fontName == "" {
		return DefaultFontKey
	}
	if _, ok := fontMetadata[strings.ToLower(fontName)]; ok {
		return strings.ToLower(fontName)
	}
	if key, ok := fontNameMap[fontName]; ok {
		return key
	}
	return DefaultFontKey
}

// StrokeCache loads and memoizes stroke definition files. Malformed
// character entries are dropped at load time so lookups never see them.
type StrokeCache struct {
	// Dir optionally overrides the embedded definitions with files on
	// disk, one <fontkey>.json per font.
	Dir string

	mu    sync.Mutex
	files map[string]*strokeFile
}

// NewStrokeCache creates a cache. dir may be empty to use only the
// bundled definitions.
func NewStrokeCache(dir string) *StrokeCache {
	return &StrokeCache{Dir: dir, files: make(map[string]*strokeFile)}
}

// Clear drops all memoized definitions. Intended for test isolation.
func (c *StrokeCache) Clear() {
	c.mu.Lock()
	c.files = make(map[string]*strokeFile)
	c.mu.Unlock()
}

// PreloadAll warms the cache for every known font key.
func (c *StrokeCache) PreloadAll() {
	for key := range fontMetadata {
		// Best effort; fonts without definitions simply stay cold.
		c.load(key)
	}
}

// load fetches a font's stroke file from the override directory or the
// embedded data, validating and memoizing it.
func (c *StrokeCache) load(fontKey string) (*strokeFile, error) {
	c.mu.Lock()
	if f, ok := c.files[fontKey]; ok {
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	var raw []byte
	var err error
	if c.Dir != "" {
		raw, err = os.ReadFile(filepath.Join(c.Dir, fontKey+".json"))
	}
	if c.Dir == "" || err != nil {
		raw, err = strokeFS.ReadFile("strokedata/" + fontKey + ".json")
	}
	if err != nil {
		return nil, fmt.Errorf("no stroke definitions for %s: %w", fontKey, err)
	}

	var file strokeFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing stroke definitions for %s: %w", fontKey, err)
	}
	if file.Characters == nil {
		return nil, fmt.Errorf("stroke file for %s has no characters", fontKey)
	}

	// Reject malformed entries rather than crash on them later.
	for ch, def := range file.Characters {
		if !ValidateCharacterDef(def) {
			delete(file.Characters, ch)
		}
	}

	c.mu.Lock()
	c.files[fontKey] = &file
	c.mu.Unlock()
	return &file, nil
}

// CharacterStrokes returns the stroke definition for character in the
// given font, falling back to the default font's definitions. A character
// absent from both yields ErrUnknownCharacter.
func (c *StrokeCache) CharacterStrokes(character, fontName string) (*CharacterDef, error) {
	key := FontKey(fontName)
	file, err := c.load(key)
	if err != nil && key != DefaultFontKey {
		file, err = c.load(DefaultFontKey)
	}
	if err != nil {
		return nil, err
	}

	def, ok := file.Characters[character]
	if !ok {
		return nil, fmt.Errorf("%w: %q in font %s", ErrUnknownCharacter, character, key)
	}
	return &def, nil
}

// AvailableFonts lists the fonts that have loadable stroke definitions,
// sorted by key, with their display metadata.
func (c *StrokeCache) AvailableFonts() []FontMetadata {
	var fonts []FontMetadata
	for key, meta := range fontMetadata {
		if _, err := c.load(key); err == nil {
			fonts = append(fonts, meta)
		}
	}
	sort.Slice(fonts, func(i, j int) bool { return fonts[i].Key < fonts[j].Key })
	return fonts
}

// Metadata returns the display metadata for a font name, or nil if the
// resolved key is unknown.
func Metadata(fontName string) *FontMetadata {
	if meta, ok := fontMetadata[FontKey(fontName)]; ok {
		return &meta
	}
	return nil
}

// Zone is a circular start or end target for a guided stroke.
type Zone struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// GuidedStroke is one stroke prepared for step-by-step instruction,
// scaled to the requested canvas size.
type GuidedStroke struct {
	Order       int          `json:"order"`
	Points      [][2]float64 `json:"points"`
	Direction   string       `json:"direction"`
	Instruction string       `json:"instruction"`
	StartZone   Zone         `json:"start_zone"`
	EndZone     Zone         `json:"end_zone"`
	Color       string       `json:"color"`
}

// GuidedCharacter is the full guided-mode payload for one character.
type GuidedCharacter struct {
	Character    string         `json:"character"`
	TotalStrokes int            `json:"total_strokes"`
	Strokes      []GuidedStroke `json:"strokes"`
	Font         string         `json:"font"`
}

// guidedStrokeColors are cycled per stroke in guided mode.
var guidedStrokeColors = []string{
	"#FF6B6B", // Red
	"#4ECDC4", // Teal
	"#FFE66D", // Yellow
	"#95E1D3", // Mint
	"#F38181", // Coral
	"#AA96DA", // Purple
}

// directionInstructions maps stroke direction tags to kid-friendly text.
var directionInstructions = map[string]string{
	"down":          "Start at the top. Draw straight down.",
	"up":            "Start at the bottom. Draw straight up.",
	"right":         "Start on the left. Draw to the right.",
	"left":          "Start on the right. Draw to the left.",
	"down-left":     "Start at the top. Draw down to the left.",
	"down-right":    "Start at the top. Draw down to the right.",
	"up-left":       "Start at the bottom. Draw up to the left.",
	"up-right":      "Start at the bottom. Draw up to the right.",
	"curve-left":    "Start on the right. Curve around to the left.",
	"curve-right":   "Start on the left. Curve around to the right.",
	"right-curve":   "Draw to the right, then curve down.",
	"down-curve":    "Draw down, then curve at the bottom.",
	"curve-down":    "Start with a curve, then go down.",
	"down-curve-up": "Draw down, curve at the bottom, then back up.",
	"oval":          "Draw a round circle shape.",
	"s-curve":       "Make an S shape, curving back and forth.",
	"curve-in":      "Curve around, then come back in.",
	"curve-loop":    "Curve around in a loop shape.",
	"curve":         "Follow the curving path.",
	"slant-down":    "Draw at an angle going down.",
	"figure-8":      "Draw a figure 8 shape.",
	"loop-down":     "Make a loop, then go down.",
	"dot":           "Make a small dot.",
	"curve-up":      "Curve upward.",
}

const fallbackInstruction = "Follow the path from the green circle to the arrow."

// GuidedStrokes scales a character's stroke definition to the requested
// canvas size and attaches instructions, colors and start/end zones.
func (c *StrokeCache) GuidedStrokes(character string, size int, fontName string) (*GuidedCharacter, error) {
	def, err := c.CharacterStrokes(character, fontName)
	if err != nil {
		return nil, err
	}

	scale := float64(size) / 100
	toleranceRadius := float64(size) * startEndZoneFraction

	strokes := make([]GuidedStroke, 0, len(def.Strokes))
	for i, stroke := range def.Strokes {
		points := make([][2]float64, len(stroke.Points))
		for j, p := range stroke.Points {
			points[j] = [2]float64{p[0] * scale, p[1] * scale}
		}

		instruction, ok := directionInstructions[stroke.Direction]
		if !ok {
			instruction = fallbackInstruction
		}

		start := points[0]
		end := points[len(points)-1]
		strokes = append(strokes, GuidedStroke{
			Order:       i + 1,
			Points:      points,
			Direction:   stroke.Direction,
			Instruction: instruction,
			StartZone:   Zone{X: start[0], Y: start[1], Radius: toleranceRadius},
			EndZone:     Zone{X: end[0], Y: end[1], Radius: toleranceRadius},
			Color:       guidedStrokeColors[i%len(guidedStrokeColors)],
		})
	}

	return &GuidedCharacter{
		Character:    character,
		TotalStrokes: len(strokes),
		Strokes:      strokes,
		Font:         fontName,
	}, nil
}
