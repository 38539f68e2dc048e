package actor

import "github.com/go-gl/mathgl/mgl64"

// Face is one edge of a polygon in world space
type Face struct {
	Position mgl64.Vec2 // first endpoint of the edge
	Normal   mgl64.Vec2 // unit normal pointing out of the polygon
}

// newFace builds the face going from a to b, with its normal pointing away from centroid
func newFace(a, b, centroid mgl64.Vec2) Face {
	edge := b.Sub(a)
	normal := mgl64.Vec2{edge.Y(), -edge.X()}.Normalize()

	if normal.Dot(a.Sub(centroid)) < 0 {
		normal = normal.Mul(-1)
	}

	return Face{Position: a, Normal: normal}
}

// Distance returns the signed distance from point to the face's plane.
// Negative means the point lies behind the face, inside the half-plane of the polygon.
func (f Face) Distance(point mgl64.Vec2) float64 {
	return point.Sub(f.Position).Dot(f.Normal)
}
