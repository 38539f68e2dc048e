package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a pose in 2D space
type Transform struct {
	Position mgl64.Vec2
	Rotation float64 // radians, counter-clockwise
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec2{0, 0},
		Rotation: 0,
	}
}

// Apply rotates a local point about the origin, then translates it by Position
func (t Transform) Apply(point mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Rotate2D(t.Rotation).Mul2x1(point).Add(t.Position)
}

// ApplyAll writes the transformed points of src into dst, in order.
// dst must be at least as long as src.
func (t Transform) ApplyAll(dst, src []mgl64.Vec2) {
	rotation := mgl64.Rotate2D(t.Rotation)
	for i, point := range src {
		dst[i] = rotation.Mul2x1(point).Add(t.Position)
	}
}

// Cross returns the z component of the 3D cross product of a and b
func Cross(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// CrossScalar returns w × r, the tangential velocity of a point at r rotating at w rad/s
func CrossScalar(w float64, r mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-w * r.Y(), w * r.X()}
}
