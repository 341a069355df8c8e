package winselect

import "math"

const (
	minWindowWidth  = 30
	minWindowHeight = 30

	distanceWeight = 0.6
	angleWeight    = 0.4
)

// Rect is a window or monitor rectangle in virtual-screen pixels.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Center returns the geometric center with fractional precision.
func (r Rect) Center() (x, y float64) {
	return float64(r.Left) + float64(r.Width())/2, float64(r.Top) + float64(r.Height())/2
}

// Point is an integer screen coordinate.
type Point struct {
	X int32
	Y int32
}

// CenterPoint truncates Center toward zero.
func (r Rect) CenterPoint() Point {
	x, y := r.Center()
	return Point{X: int32(x), Y: int32(y)}
}

// ScreenBounds is the union of all monitor rectangles.
type ScreenBounds struct {
	StartX, StartY  int32
	EndX, EndY      int32
	TotalWidth      int32
	TotalHeight     int32
	DiagonalSquared float64
}

// ComputeBounds unions monitors. It reports false for an empty list.
func ComputeBounds(monitors []Rect) (ScreenBounds, bool) {
	if len(monitors) == 0 {
		return ScreenBounds{}, false
	}
	b := ScreenBounds{
		StartX: monitors[0].Left,
		StartY: monitors[0].Top,
		EndX:   monitors[0].Right,
		EndY:   monitors[0].Bottom,
	}
	for _, m := range monitors[1:] {
		b.StartX = min(b.StartX, m.Left)
		b.StartY = min(b.StartY, m.Top)
		b.EndX = max(b.EndX, m.Right)
		b.EndY = max(b.EndY, m.Bottom)
	}
	b.TotalWidth = b.EndX - b.StartX
	b.TotalHeight = b.EndY - b.StartY
	w, h := float64(b.TotalWidth), float64(b.TotalHeight)
	b.DiagonalSquared = w*w + h*h
	return b, true
}

// containsCenter reports whether (x, y) lies inside b, edges included.
func (b ScreenBounds) containsCenter(x, y float64) bool {
	return x >= float64(b.StartX) && x <= float64(b.EndX) &&
		y >= float64(b.StartY) && y <= float64(b.EndY)
}

// partlyOnscreen reports whether r overlaps b with a plausible size.
func (b ScreenBounds) partlyOnscreen(r Rect) bool {
	w, h := r.Width(), r.Height()
	return r.Right >= b.StartX &&
		r.Bottom >= b.StartY &&
		r.Left <= b.EndX &&
		r.Top <= b.EndY &&
		w >= minWindowWidth && w <= b.TotalWidth &&
		h >= minWindowHeight && h <= b.TotalHeight
}

// normalizeAngle maps degrees into (-180, 180].
func normalizeAngle(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// directionalWeight scores candidate relative to focused; lower is better.
// target is the direction angle in degrees. For a leftward target the
// candidate angle is folded with its absolute value so that windows just
// above and just below the horizontal score alike.
func directionalWeight(focused, candidate Rect, target float64, leftward bool, diagonalSquared float64) float64 {
	fx, fy := focused.Center()
	cx, cy := candidate.Center()
	dx, dy := cx-fx, cy-fy

	angle := normalizeAngle(math.Atan2(dy, dx) * 180 / math.Pi)
	var angleRatio float64
	if leftward {
		angleRatio = math.Abs(target-math.Abs(angle)) / 180
	} else {
		angleRatio = math.Abs(target-angle) / 180
	}

	var distanceRatio float64
	if diagonalSquared > 0 {
		distanceRatio = (dx*dx + dy*dy) / diagonalSquared
	}
	return distanceWeight*distanceRatio + angleWeight*angleRatio
}
