package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// areaEpsilon is the smallest area a polygon may have before it is considered degenerate
const areaEpsilon = 1e-12

// Vertices is an immutable list of local-space polygon vertices.
// A single Vertices value can be shared by any number of polygons: since it
// cannot be modified, changing one body's shape never affects another one.
type Vertices struct {
	points []mgl64.Vec2

	area        float64
	centroid    mgl64.Vec2
	unitInertia float64 // second moment of area about the local origin, per unit mass
}

// NewVertices copies points into a new vertex template and computes its mass properties.
// The points must describe a simple convex polygon, in either winding order.
func NewVertices(points []mgl64.Vec2) (*Vertices, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: %d vertices, need at least 3", ErrDegeneratePolygon, len(points))
	}

	v := &Vertices{
		points: make([]mgl64.Vec2, len(points)),
	}
	copy(v.points, points)

	if err := v.computeMassProperties(); err != nil {
		return nil, err
	}

	return v, nil
}

// NewBox returns the four corners of a box centered on the origin
func NewBox(halfWidth, halfHeight float64) (*Vertices, error) {
	return NewVertices([]mgl64.Vec2{
		{halfWidth, halfHeight},
		{-halfWidth, halfHeight},
		{-halfWidth, -halfHeight},
		{halfWidth, -halfHeight},
	})
}

// NewRegularPolygon returns a regular polygon with the given number of sides,
// centered on the origin, its vertices lying on a circle of the given radius
func NewRegularPolygon(radius float64, sides int) (*Vertices, error) {
	if sides < 3 {
		return nil, fmt.Errorf("%w: %d sides, need at least 3", ErrDegeneratePolygon, sides)
	}

	points := make([]mgl64.Vec2, sides)
	step := 2 * math.Pi / float64(sides)
	for i := range points {
		angle := step * float64(i)
		points[i] = mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)}
	}

	return NewVertices(points)
}

// computeMassProperties sums the signed triangles (origin, p[i], p[i+1]).
// The sign of each sum follows the winding, so the ratios below do not depend on it.
func (v *Vertices) computeMassProperties() error {
	var area, inertia float64
	var center mgl64.Vec2

	for i, p1 := range v.points {
		p2 := v.points[(i+1)%len(v.points)]

		d := Cross(p1, p2)
		area += 0.5 * d
		center = center.Add(p1.Add(p2).Mul(d / 6.0))
		inertia += d * (p1.Dot(p1) + p1.Dot(p2) + p2.Dot(p2)) / 12.0
	}

	if math.Abs(area) < areaEpsilon || math.IsNaN(area) {
		return fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}

	v.area = math.Abs(area)
	v.centroid = center.Mul(1.0 / area)
	v.unitInertia = inertia / area

	return nil
}

// Len returns the number of vertices
func (v *Vertices) Len() int {
	return len(v.points)
}

// At returns the i-th local vertex
func (v *Vertices) At(i int) mgl64.Vec2 {
	return v.points[i]
}

// Points returns a copy of the local vertices
func (v *Vertices) Points() []mgl64.Vec2 {
	points := make([]mgl64.Vec2, len(v.points))
	copy(points, v.points)

	return points
}

// Area returns the (unsigned) polygon area
func (v *Vertices) Area() float64 {
	return v.area
}

// Centroid returns the center of mass of a uniform polygon, in local space
func (v *Vertices) Centroid() mgl64.Vec2 {
	return v.centroid
}

// ComputeInertia returns the rotational inertia of a uniform polygon of the given mass,
// about the local origin
func (v *Vertices) ComputeInertia(mass float64) float64 {
	return mass * v.unitInertia
}
