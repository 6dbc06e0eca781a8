package drawscore

import "math"

const (
	// minValidationCanvas is the smallest canvas assumed when detecting
	// the drawn points' coordinate scale.
	minValidationCanvas = 400

	// startEndZoneFraction sizes the start/end target zones relative to
	// the canvas. Generous on purpose: the audience is children.
	startEndZoneFraction = 0.25

	// maxPathSamples caps how many drawn points are measured against the
	// expected polyline.
	maxPathSamples = 20

	// minPathAccuracy is the lowest path-following score that still
	// validates; start and end position matter more than a perfect path.
	minPathAccuracy = 15
)

// StrokeValidation is the outcome of checking one drawn stroke against
// its expected path.
type StrokeValidation struct {
	Valid            bool    `json:"valid"`
	StartedCorrectly bool    `json:"started_correctly"`
	EndedCorrectly   bool    `json:"ended_correctly"`
	PathAccuracy     float64 `json:"path_accuracy"`
	Feedback         string  `json:"feedback"`
}

// pointToSegmentDistance returns the distance from (px, py) to the line
// segment (x1,y1)-(x2,y2).
func pointToSegmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	if dx == 0 && dy == 0 {
		return math.Hypot(px-x1, py-y1)
	}

	t := ((px-x1)*dx + (py-y1)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

// pointToPathDistance returns the minimum distance from a point to a
// polyline.
func pointToPathDistance(px, py float64, path [][2]float64) float64 {
	minDist := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		d := pointToSegmentDistance(px, py, path[i][0], path[i][1], path[i+1][0], path[i+1][1])
		if d < minDist {
			minDist = d
		}
	}
	return minDist
}

// ValidateStroke checks a drawn point sequence against the expected stroke
// path (points in 0-100 space). The drawn canvas size is detected from the
// points' maximum coordinate, assuming at least a 400px canvas.
// toleranceMultiplier widens or narrows the start/end zones; zero means 1.
// Validity requires correct start and end positions and a deliberately
// lenient minimum path accuracy. Feedback names the first failed
// criterion: start, then end, then path-following.
func ValidateStroke(expected StrokeDef, drawnPoints [][2]float64, toleranceMultiplier float64) StrokeValidation {
	if len(drawnPoints) < 2 || len(expected.Points) < 2 {
		return StrokeValidation{
			Feedback: "Try drawing a longer line!",
		}
	}
	if toleranceMultiplier == 0 {
		toleranceMultiplier = 1.0
	}

	maxCoord := 0.0
	for _, p := range drawnPoints {
		if p[0] > maxCoord {
			maxCoord = p[0]
		}
		if p[1] > maxCoord {
			maxCoord = p[1]
		}
	}
	canvasSize := math.Max(minValidationCanvas, maxCoord)
	scale := canvasSize / 100

	scaledExpected := make([][2]float64, len(expected.Points))
	for i, p := range expected.Points {
		scaledExpected[i] = [2]float64{p[0] * scale, p[1] * scale}
	}

	tolerance := canvasSize * startEndZoneFraction * toleranceMultiplier

	startExpected := scaledExpected[0]
	startDrawn := drawnPoints[0]
	startedCorrectly := math.Hypot(startDrawn[0]-startExpected[0], startDrawn[1]-startExpected[1]) <= tolerance

	endExpected := scaledExpected[len(scaledExpected)-1]
	endDrawn := drawnPoints[len(drawnPoints)-1]
	endedCorrectly := math.Hypot(endDrawn[0]-endExpected[0], endDrawn[1]-endExpected[1]) <= tolerance

	// Average distance of sampled drawn points to the expected polyline.
	sampleCount := len(drawnPoints)
	if sampleCount > maxPathSamples {
		sampleCount = maxPathSamples
	}
	step := len(drawnPoints) / sampleCount
	if step < 1 {
		step = 1
	}

	totalDistance := 0.0
	samples := 0
	for i := 0; i < len(drawnPoints); i += step {
		totalDistance += pointToPathDistance(drawnPoints[i][0], drawnPoints[i][1], scaledExpected)
		samples++
	}
	avgDistance := totalDistance / math.Max(1, float64(samples))

	// 0 distance = 100%, tolerance = 50%, 2x tolerance = 0%.
	pathAccuracy := 100 - (avgDistance/tolerance)*50
	if pathAccuracy < 0 {
		pathAccuracy = 0
	} else if pathAccuracy > 100 {
		pathAccuracy = 100
	}
	pathAccuracy = round1(pathAccuracy)

	valid := startedCorrectly && endedCorrectly && pathAccuracy >= minPathAccuracy

	var feedback string
	if valid {
		switch {
		case pathAccuracy >= 80:
			feedback = "Perfect! Great job!"
		case pathAccuracy >= 60:
			feedback = "Good work! Keep practicing!"
		default:
			feedback = "Nice try! You got it!"
		}
	} else {
		switch {
		case !startedCorrectly:
			feedback = "Start at the green circle!"
		case !endedCorrectly:
			feedback = "Try to reach the arrow at the end!"
		default:
			feedback = "Follow the dotted line more closely!"
		}
	}

	return StrokeValidation{
		Valid:            valid,
		StartedCorrectly: startedCorrectly,
		EndedCorrectly:   endedCorrectly,
		PathAccuracy:     pathAccuracy,
		Feedback:         feedback,
	}
}
