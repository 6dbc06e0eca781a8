// Package drawscore scores hand-drawn letters and numbers against
// reference glyphs rendered from a font, and generates step-by-step
// tracing guides from the font's actual stroke skeleton.
package drawscore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"gonum.org/v1/gonum/stat"

	"github.com/drawscore/drawscore/imageutil"
)

const (
	// referenceRenderSize is the canvas the reference glyph is rendered at
	// before normalization.
	referenceRenderSize = 200

	// binaryCutoff thresholds a normalized [0,1] grid into a stroke mask.
	binaryCutoff = 0.5

	// coverageTolerance is how far (in pixels) a drawn pixel may sit from
	// a reference pixel and still count as covering it.
	coverageTolerance = 4.0

	// accuracyDilation widens the reference into an acceptance zone,
	// tuned for the 128px comparison resolution.
	accuracyDilation = 5

	// chamferMaxDist is the distance scale at which similarity decays
	// toward zero.
	chamferMaxDist = 20.0

	// Metric weights for the combined percentage.
	coverageWeight   = 0.35
	accuracyWeight   = 0.35
	similarityWeight = 0.30

	// Stroke similarity blends IoU with the Chamfer similarity.
	iouWeight     = 0.4
	chamferWeight = 0.6
)

// DecodeError reports an image payload that could not be parsed. It is a
// caller input error and is never retried.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ScoreDetails carries the per-metric percentages, rounded to 1 decimal.
type ScoreDetails struct {
	Coverage   float64 `json:"coverage"`
	Accuracy   float64 `json:"accuracy"`
	Similarity float64 `json:"similarity"`
}

// DebugImages are PNG data URLs of intermediate pipeline stages.
type DebugImages struct {
	DrawnUnsanded       string `json:"drawn_unsanded"`
	DrawnSanded         string `json:"drawn_sanded"`
	ReferenceNormalized string `json:"reference_normalized"`
	DrawnCentered       string `json:"drawn_centered"`
	ReferenceCentered   string `json:"reference_centered"`
}

// ScoreResult is the outcome of scoring one drawing.
type ScoreResult struct {
	Score          int          `json:"score"`
	Stars          int          `json:"stars"`
	Feedback       string       `json:"feedback"`
	Details        ScoreDetails `json:"details"`
	ReferenceImage string       `json:"reference_image"`
	Debug          *DebugImages `json:"debug,omitempty"`
}

// CalculateCoverage measures how much of the reference character the
// drawing covers: the fraction of reference stroke pixels within tolerance
// of any drawn pixel. Both sides are thickness-normalized first, the drawn
// side with sanding.
func CalculateCoverage(drawn, reference *imageutil.FloatGrid, tolerance float64) float64 {
	drawnNorm := NormalizeThickness(imageutil.MaskFromGrid(drawn, binaryCutoff), DefaultStrokeThickness, true)
	refNorm := NormalizeThickness(imageutil.MaskFromGrid(reference, binaryCutoff), DefaultStrokeThickness, false)

	refCount := refNorm.Count()
	if refCount == 0 || !drawnNorm.Any() {
		return 0
	}

	drawnDist := imageutil.DistanceToNearest(drawnNorm)
	covered := 0
	for i, b := range refNorm.Bits {
		if b && drawnDist.Data[i] <= tolerance {
			covered++
		}
	}

	coverage := float64(covered) / (float64(refCount) + epsilon)
	return math.Min(coverage, 1.0)
}

// CalculateAccuracy measures how well the drawing stays on the lines: the
// fraction of drawn pixels inside a dilated zone around the reference.
// Gaps in reference coverage are not penalized here.
func CalculateAccuracy(drawn, reference *imageutil.FloatGrid) float64 {
	drawnNorm := NormalizeThickness(imageutil.MaskFromGrid(drawn, binaryCutoff), DefaultStrokeThickness, true)
	refNorm := NormalizeThickness(imageutil.MaskFromGrid(reference, binaryCutoff), DefaultStrokeThickness, false)

	drawnCount := drawnNorm.Count()
	if drawnCount == 0 {
		return 0
	}

	zone := imageutil.Dilate(refNorm, accuracyDilation)
	within := imageutil.Intersection(drawnNorm, zone)

	accuracy := float64(within) / (float64(drawnCount) + epsilon)
	return math.Min(accuracy, 1.0)
}

// CalculateStrokeSimilarity captures overall shape correspondence with a
// weighted blend of intersection-over-union and symmetric Chamfer distance
// converted to a similarity by exponential decay. More appropriate than a
// structural-similarity index for sparse line art.
func CalculateStrokeSimilarity(drawn, reference *imageutil.FloatGrid) float64 {
	drawnNorm := NormalizeThickness(imageutil.MaskFromGrid(drawn, binaryCutoff), DefaultStrokeThickness, true)
	refNorm := NormalizeThickness(imageutil.MaskFromGrid(reference, binaryCutoff), DefaultStrokeThickness, false)

	if !drawnNorm.Any() || !refNorm.Any() {
		return 0
	}

	iou := float64(imageutil.Intersection(drawnNorm, refNorm)) /
		(float64(imageutil.Union(drawnNorm, refNorm)) + epsilon)

	refDist := imageutil.DistanceToNearest(refNorm)
	drawnDist := imageutil.DistanceToNearest(drawnNorm)

	drawnToRef := meanDistanceOver(drawnNorm, refDist)
	refToDrawn := meanDistanceOver(refNorm, drawnDist)
	chamfer := (drawnToRef + refToDrawn) / 2

	chamferScore := math.Exp(-chamfer / (chamferMaxDist / 3))

	similarity := iou*iouWeight + chamferScore*chamferWeight
	return math.Min(math.Max(similarity, 0.0), 1.0)
}

// meanDistanceOver averages dist values at the mask's set pixels.
func meanDistanceOver(m *imageutil.BitMask, dist *imageutil.FloatGrid) float64 {
	var samples []float64
	for i, b := range m.Bits {
		if b {
			samples = append(samples, dist.Data[i])
		}
	}
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// StarRating maps a 0-100 percentage to a 1-5 star count and the matching
// feedback line. Thresholds are tuned to be achievable for kids.
func StarRating(percentage int) (int, string) {
	switch {
	case percentage >= 80:
		return 5, "Amazing! Perfect!"
	case percentage >= 65:
		return 4, "Great job!"
	case percentage >= 50:
		return 3, "Good work!"
	case percentage >= 30:
		return 2, "Nice try!"
	default:
		return 1, "Keep practicing!"
	}
}

// decodeDrawnImage accepts a raw base64 payload or a data URL and decodes
// the embedded image.
func decodeDrawnImage(data string) (image.Image, error) {
	if idx := strings.Index(data, ","); idx >= 0 {
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ScoreDrawing scores a drawn character against the reference glyph for
// character in the given font. drawnImageData is raw base64 or a data URL.
// An unparseable payload yields a *DecodeError. Any structurally valid
// image always produces a well-formed result; empty drawings score zero
// rather than failing.
func (c *FontCache) ScoreDrawing(drawnImageData, character, fontName string) (*ScoreResult, error) {
	drawnImg, err := decodeDrawnImage(drawnImageData)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	reference, err := c.RenderCharacter(character, referenceRenderSize, fontName)
	if err != nil {
		return nil, err
	}

	drawnProc := ExtractAndCenter(drawnImg, ExtractTargetSize, ExtractPadding)
	refProc := ExtractAndCenter(reference, ExtractTargetSize, ExtractPadding)

	coverage := CalculateCoverage(drawnProc, refProc, coverageTolerance)
	accuracy := CalculateAccuracy(drawnProc, refProc)
	similarity := CalculateStrokeSimilarity(drawnProc, refProc)

	combined := coverage*coverageWeight + accuracy*accuracyWeight + similarity*similarityWeight
	percentage := int(math.Min(100, combined*100))
	if percentage < 0 {
		percentage = 0
	}

	stars, feedback := StarRating(percentage)

	refURL, err := pngDataURL(reference)
	if err != nil {
		return nil, fmt.Errorf("encoding reference image: %w", err)
	}

	drawnMask := imageutil.MaskFromGrid(drawnProc, binaryCutoff)
	refMask := imageutil.MaskFromGrid(refProc, binaryCutoff)
	debug := &DebugImages{
		DrawnUnsanded:       maskDataURL(NormalizeThickness(drawnMask, DefaultStrokeThickness, false)),
		DrawnSanded:         maskDataURL(NormalizeThickness(drawnMask, DefaultStrokeThickness, true)),
		ReferenceNormalized: maskDataURL(NormalizeThickness(refMask, DefaultStrokeThickness, false)),
		DrawnCentered:       gridDataURL(drawnProc),
		ReferenceCentered:   gridDataURL(refProc),
	}

	return &ScoreResult{
		Score:          percentage,
		Stars:          stars,
		Feedback:       feedback,
		Details:        ScoreDetails{Coverage: round1(coverage * 100), Accuracy: round1(accuracy * 100), Similarity: round1(similarity * 100)},
		ReferenceImage: refURL,
		Debug:          debug,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// pngDataURL encodes an image as a PNG data URL.
func pngDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// maskDataURL renders a stroke mask as black ink on white and encodes it.
func maskDataURL(m *imageutil.BitMask) string {
	img := imageutil.NewWhiteImage(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) {
				img.SetGrayValue(x, y, 0)
			}
		}
	}
	url, _ := pngDataURL(img)
	return url
}

// gridDataURL encodes a [0,1] grid as a grayscale PNG data URL.
func gridDataURL(g *imageutil.FloatGrid) string {
	url, _ := pngDataURL(imageutil.GrayFromGrid(g))
	return url
}
