package geom

import "math"

// Point is a 2D vector in world or local units.
// Angles are radians, counter-clockwise from +x (math.Atan2 convention).
type Point struct {
	X float64
	Y float64
}

// Zero is the origin.
var Zero = Point{}

func New(x, y float64) Point { return Point{X: x, Y: y} }

// FromAngle returns a vector of the given length pointing along angle.
func FromAngle(angle, length float64) Point {
	return Point{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }
func (p Point) Neg() Point { return Point{X: -p.X, Y: -p.Y} }
func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) LengthSquared() float64 { return p.X*p.X + p.Y*p.Y }
func (p Point) Distance(o Point) float64 { return math.Hypot(o.X-p.X, o.Y-p.Y) }

// DistanceSquared avoids the square root for comparisons.
func (p Point) DistanceSquared(o Point) float64 {
	dx, dy := o.X-p.X, o.Y-p.Y
	return dx*dx + dy*dy
}

// Angle returns the direction of p.
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// AngleTo returns the direction from p to o.
func (p Point) AngleTo(o Point) float64 { return math.Atan2(o.Y-p.Y, o.X-p.X) }

// Rotate rotates p counter-clockwise by angle about the origin.
func (p Point) Rotate(angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// Normalize returns the unit vector of p. The zero vector is returned unchanged.
func (p Point) Normalize() Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// Perp returns p rotated by +90 degrees.
func (p Point) Perp() Point { return Point{X: -p.Y, Y: p.X} }

// ApproxEqual compares component-wise within tolerance.
func (p Point) ApproxEqual(o Point, tolerance float64) bool {
	return math.Abs(p.X-o.X) <= tolerance && math.Abs(p.Y-o.Y) <= tolerance
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	} else if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// AngleDifference returns the signed smallest rotation taking from to to.
func AngleDifference(from, to float64) float64 { return WrapAngle(to - from) }
