package dnd

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Zone is a drop target.
type Zone struct {
	ID   string `json:"id"`
	Rect Rect   `json:"rect"`
}

// ClosestCenter returns the zone whose center is nearest to p. Ties go to
// the zone registered first. It reports false when zones is empty.
func ClosestCenter(zones []Zone, p Point) (Zone, bool) {
	var (
		best     Zone
		bestDist = math.Inf(1)
		found    bool
	)
	for _, z := range zones {
		d := z.Rect.Center().DistanceTo(p)
		if d < bestDist {
			best, bestDist, found = z, d, true
		}
	}
	return best, found
}
