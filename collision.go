package sat2d

import (
	"github.com/akmonengine/sat2d/actor"
	"github.com/akmonengine/sat2d/constraint"
)

// LayersAccept reports whether the pair passes the collision layer filter.
// Both allow-lists must accept the other polygon's layer; an empty list accepts every layer.
func LayersAccept(bodyA, bodyB *actor.Polygon) bool {
	return bodyA.CollidesWithLayer(bodyB.Layer()) && bodyB.CollidesWithLayer(bodyA.Layer())
}

// BroadPhase is a cheap, conservative pre-check using the AABB overlap of both polygons.
// It never rejects overlapping polygons, but it can accept separated ones.
func BroadPhase(bodyA, bodyB *actor.Polygon) bool {
	return bodyA.AABB().Overlaps(bodyB.AABB())
}

// TestCollision runs the separating axis test with the faces of bodyA against the vertices
// of bodyB, then the other way round. The pair collides only if neither pass finds a
// separating face; the returned collision is the shallowest penetration of both passes.
func TestCollision(bodyA, bodyB *actor.Polygon) (constraint.Collision, bool) {
	collision := constraint.NewCollision()

	if !TestSeparatingAxisOnFaces(bodyA, bodyB, &collision) {
		return constraint.Collision{}, false
	}
	if !TestSeparatingAxisOnFaces(bodyB, bodyA, &collision) {
		return constraint.Collision{}, false
	}

	return collision, true
}

// TestSeparatingAxisOnFaces checks every face of faceBody as a separating axis against the
// vertices of vertexBody. It returns false as soon as a face has all the vertices strictly in
// front of it. Otherwise it returns true, and stores in collision the face whose nearest
// vertex is the least deep, if it is shallower than what collision already holds.
func TestSeparatingAxisOnFaces(faceBody, vertexBody *actor.Polygon, collision *constraint.Collision) bool {
	vertices := vertexBody.GlobalVertices()

	for _, face := range faceBody.Faces() {
		minDistance := face.Distance(vertices[0])
		minVertex := vertices[0]
		for _, vertex := range vertices[1:] {
			if distance := face.Distance(vertex); distance < minDistance {
				minDistance = distance
				minVertex = vertex
			}
		}

		// Touching (distance 0) is not a separation
		if minDistance > 0 {
			return false
		}

		if minDistance > collision.Depth {
			collision.FaceBody = faceBody
			collision.ContactBody = vertexBody
			collision.ContactVertex = minVertex
			collision.Depth = minDistance
			collision.Normal = face.Normal
		}
	}

	return true
}
