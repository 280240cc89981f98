// Package geom holds the 2D arithmetic shared by the world model, the scorer
// and motion guidance. Angles are radians, counter-clockwise from +x.
package geom

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(v Vector) Point { return Point{X: p.X + v.X, Y: p.Y + v.Y} }

// To returns the displacement from p to q.
func (p Point) To(q Point) Vector { return Vector{X: q.X - p.X, Y: q.Y - p.Y} }

func (v Vector) Scale(k float64) Vector { return Vector{X: v.X * k, Y: v.Y * k} }

func (v Vector) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

// Bearing is the angle of v from the positive x-axis, in (-π, π].
func (v Vector) Bearing() float64 { return math.Atan2(v.Y, v.X) }

func Distance(a, b Point) float64 { return a.To(b).Magnitude() }

// Bearing returns the absolute direction of the ray a->b.
func Bearing(a, b Point) float64 { return a.To(b).Bearing() }

// AngleDiff returns heading-target folded into (-π, π]. A positive result
// means target lies clockwise of heading.
func AngleDiff(heading, target float64) float64 {
	d := heading - target
	if d <= -math.Pi {
		d += 2 * math.Pi
	} else if d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
