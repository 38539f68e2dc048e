package constraint

import (
	"math"

	"github.com/akmonengine/sat2d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Collision describes the overlap of two polygons during one step.
// Normal is the outward normal of FaceBody's best face, so it points from FaceBody towards
// ContactBody: moving ContactBody by Normal * Penetration() separates the pair.
type Collision struct {
	FaceBody    *actor.Polygon
	ContactBody *actor.Polygon
	// ContactVertex is ContactBody's deepest vertex along Normal, in world space
	ContactVertex mgl64.Vec2
	// Depth is the signed distance of ContactVertex to the face: 0 when touching, negative when overlapping
	Depth  float64
	Normal mgl64.Vec2
}

// NewCollision returns an empty record, deeper than any real contact
func NewCollision() Collision {
	return Collision{Depth: math.Inf(-1)}
}

// Penetration returns the overlap distance, as a non-negative number
func (c Collision) Penetration() float64 {
	return -c.Depth
}

// Involves reports whether body is one of the two polygons of the collision
func (c Collision) Involves(body *actor.Polygon) bool {
	return c.FaceBody == body || c.ContactBody == body
}
