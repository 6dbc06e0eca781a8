package drawscore

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/drawscore/drawscore/imageutil"
)

const (
	// DefaultGuideSize is the canvas size guides are generated at.
	DefaultGuideSize = 400

	// guideMinPathLength discards skeleton fragments shorter than this.
	guideMinPathLength = 15

	// guideSimplifyTolerance is the point-decimation distance for
	// animation-friendly paths.
	guideSimplifyTolerance = 4

	// pathOverlapThreshold is the pixel-set overlap above which two paths
	// are considered duplicates.
	pathOverlapThreshold = 0.8

	// Trace image dash pattern and stroke width.
	traceDilation = 3
	traceDashOn   = 10
	traceDashOff  = 6
)

// strokeColors are cycled through guide strokes for visual distinction.
var strokeColors = []string{
	"#FF0000", // Red
	"#00AA00", // Green
	"#0000FF", // Blue
	"#FF8800", // Orange
	"#AA00AA", // Purple
	"#00AAAA", // Cyan
	"#FFAA00", // Gold
	"#FF00AA", // Pink
}

// AnimatedStroke is one ordered stroke of a tracing guide, with points in
// the resolution-independent 0-100 coordinate space.
type AnimatedStroke struct {
	Points [][2]float64 `json:"points"`
	Color  string       `json:"color"`
	Order  int          `json:"order"`
}

// Guide holds everything needed to teach one character: a dashed trace
// image and the ordered animated strokes. Cacheable by
// (character, size, font name).
type Guide struct {
	Character       string           `json:"character"`
	Size            int              `json:"size"`
	FontName        string           `json:"font_name"`
	TraceImage      string           `json:"trace_image"`
	AnimatedStrokes []AnimatedStroke `json:"animated_strokes"`
	StrokeCount     int              `json:"stroke_count"`
}

// edgeKey canonicalizes an undirected pixel-pair edge so a connection is
// never walked from both directions.
type edgeKey struct {
	ax, ay, bx, by int
}

func makeEdgeKey(a, b image.Point) edgeKey {
	if a.Y < b.Y || (a.Y == b.Y && a.X <= b.X) {
		return edgeKey{ax: a.X, ay: a.Y, bx: b.X, by: b.Y}
	}
	return edgeKey{ax: b.X, ay: b.Y, bx: a.X, by: a.Y}
}

var walkOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// tracePath walks 8-connected skeleton pixels from start, consuming edges
// from visited, until it reaches a special point (junction or endpoint) or
// runs out of unvisited neighbors.
func tracePath(skel *imageutil.BitMask, start image.Point, visited map[edgeKey]bool, special map[image.Point]bool) []image.Point {
	path := []image.Point{start}
	local := map[image.Point]bool{start: true}
	current := start

	for {
		var next image.Point
		found := false

		for _, off := range walkOffsets {
			cand := image.Point{X: current.X + off[0], Y: current.Y + off[1]}
			if !skel.Get(cand.X, cand.Y) || local[cand] {
				continue
			}
			edge := makeEdgeKey(current, cand)
			if visited[edge] {
				continue
			}
			visited[edge] = true
			next = cand
			found = true
			break
		}

		if !found {
			break
		}

		path = append(path, next)
		local[next] = true
		current = next

		if special[next] && next != start {
			break
		}
	}

	return path
}

// ExtractStrokePaths converts a skeleton into ordered stroke polylines.
// Each connected component of at least minLength pixels is walked from its
// endpoints and junctions (or an arbitrary pixel for closed loops); paths
// are deduplicated and sorted top to bottom by starting point.
func ExtractStrokePaths(skel *imageutil.BitMask, minLength int) [][]image.Point {
	labels, n := imageutil.Label(skel)
	var allPaths [][]image.Point

	for comp := 1; comp <= n; comp++ {
		component := imageutil.ComponentMask(skel, labels, comp)
		if component.Count() < minLength {
			continue
		}

		endpoints := imageutil.Endpoints(component)
		junctions := imageutil.Junctions(component)

		special := make(map[image.Point]bool, len(endpoints)+len(junctions))
		for _, p := range endpoints {
			special[p] = true
		}
		for _, p := range junctions {
			special[p] = true
		}

		seeds := append(append([]image.Point{}, endpoints...), junctions...)
		if len(seeds) == 0 {
			// Closed loop: seed from the first pixel.
			seeds = []image.Point{firstPixel(component)}
		}

		visited := make(map[edgeKey]bool)
		for _, seed := range seeds {
			for _, off := range walkOffsets {
				cand := image.Point{X: seed.X + off[0], Y: seed.Y + off[1]}
				if !component.Get(cand.X, cand.Y) {
					continue
				}
				if visited[makeEdgeKey(seed, cand)] {
					continue
				}
				path := tracePath(component, seed, visited, special)
				if len(path) >= 2 {
					allPaths = append(allPaths, path)
				}
			}
		}
	}

	var filtered [][]image.Point
	for _, p := range allPaths {
		if len(p) >= minLength {
			filtered = append(filtered, p)
		}
	}
	filtered = DeduplicatePaths(filtered)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i][0].Y < filtered[j][0].Y
	})

	return filtered
}

func firstPixel(m *imageutil.BitMask) image.Point {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) {
				return image.Point{X: x, Y: y}
			}
		}
	}
	return image.Point{}
}

// DeduplicatePaths removes paths whose pixel sets overlap an existing path
// by more than 80% (relative to the shorter one), keeping the longer path.
func DeduplicatePaths(paths [][]image.Point) [][]image.Point {
	if len(paths) == 0 {
		return paths
	}

	var unique [][]image.Point
	for _, path := range paths {
		pathSet := make(map[image.Point]bool, len(path))
		for _, p := range path {
			pathSet[p] = true
		}

		duplicate := false
		replaceIdx := -1
		for i, existing := range unique {
			existingSet := make(map[image.Point]bool, len(existing))
			for _, p := range existing {
				existingSet[p] = true
			}

			overlap := 0
			for p := range pathSet {
				if existingSet[p] {
					overlap++
				}
			}
			minLen := len(pathSet)
			if len(existingSet) < minLen {
				minLen = len(existingSet)
			}
			if minLen > 0 && float64(overlap)/float64(minLen) > pathOverlapThreshold {
				if len(path) > len(existing) {
					replaceIdx = i
				}
				duplicate = true
				break
			}
		}

		if replaceIdx >= 0 {
			unique = append(unique[:replaceIdx], unique[replaceIdx+1:]...)
			unique = append(unique, path)
		} else if !duplicate {
			unique = append(unique, path)
		}
	}

	return unique
}

// SimplifyPath decimates a path by dropping points closer than tolerance
// to the last kept point. The first and last points always survive.
func SimplifyPath(path []image.Point, tolerance float64) []image.Point {
	if len(path) < 2 {
		return path
	}

	simplified := []image.Point{path[0]}
	for _, p := range path[1:] {
		last := simplified[len(simplified)-1]
		dx := float64(p.X - last.X)
		dy := float64(p.Y - last.Y)
		if math.Sqrt(dx*dx+dy*dy) >= tolerance {
			simplified = append(simplified, p)
		}
	}

	if simplified[len(simplified)-1] != path[len(path)-1] {
		simplified = append(simplified, path[len(path)-1])
	}

	return simplified
}

// animatedStrokes extracts, simplifies and normalizes the skeleton paths
// of a rendered character into 0-100 space.
func animatedStrokes(img *imageutil.GrayImage, size int) []AnimatedStroke {
	mask := imageutil.MaskFromGray(img, 128)
	skel := imageutil.MedialAxis(mask)

	raw := ExtractStrokePaths(skel, guideMinPathLength)

	var strokes []AnimatedStroke
	for i, path := range raw {
		path = SimplifyPath(path, guideSimplifyTolerance)
		if len(path) < 2 {
			continue
		}

		points := make([][2]float64, len(path))
		for j, p := range path {
			points[j] = [2]float64{
				float64(p.X) * 100 / float64(size),
				float64(p.Y) * 100 / float64(size),
			}
		}

		strokes = append(strokes, AnimatedStroke{
			Points: points,
			Color:  strokeColors[i%len(strokeColors)],
			Order:  i + 1,
		})
	}

	return strokes
}

// traceImage renders the character's skeleton as a dashed gray line on a
// transparent canvas and returns it as a PNG data URL.
func traceImage(img *imageutil.GrayImage, size int) (string, error) {
	mask := imageutil.MaskFromGray(img, 128)
	skel := imageutil.MedialAxis(mask)
	line := imageutil.Dilate(skel, traceDilation)

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	dashOn := true
	counter := 0
	gray := color.RGBA{R: 120, G: 120, B: 120, A: 200}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !line.Get(x, y) {
				continue
			}
			if dashOn {
				out.SetRGBA(x, y, gray)
			}
			counter++
			if dashOn && counter >= traceDashOn {
				dashOn = false
				counter = 0
			} else if !dashOn && counter >= traceDashOff {
				dashOn = true
				counter = 0
			}
		}
	}

	return pngDataURL(out)
}

// GenerateAllGuides renders the character, extracts its skeleton strokes,
// and assembles the complete tracing guide.
func (c *FontCache) GenerateAllGuides(character string, size int, fontName string) (*Guide, error) {
	if size <= 0 {
		size = DefaultGuideSize
	}
	if fontName == "" {
		fontName = DefaultFontName
	}

	img, err := c.RenderCharacter(character, size, fontName)
	if err != nil {
		return nil, err
	}

	trace, err := traceImage(img, size)
	if err != nil {
		return nil, err
	}

	strokes := animatedStrokes(img, size)

	return &Guide{
		Character:       character,
		Size:            size,
		FontName:        fontName,
		TraceImage:      trace,
		AnimatedStrokes: strokes,
		StrokeCount:     len(strokes),
	}, nil
}
