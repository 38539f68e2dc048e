package sat2d

import (
	"github.com/akmonengine/sat2d/actor"
	"github.com/akmonengine/sat2d/constraint"
)

// Registry holds the collisions detected during the current step
type Registry struct {
	collisions []constraint.Collision
	handles    [][2]Handle // face body, contact body
}

// Clear empties the registry, keeping its storage
func (r *Registry) Clear() {
	r.collisions = r.collisions[:0]
	r.handles = r.handles[:0]
}

// Add records a collision between the polygons at faceHandle and contactHandle
func (r *Registry) Add(faceHandle, contactHandle Handle, collision constraint.Collision) {
	r.collisions = append(r.collisions, collision)
	r.handles = append(r.handles, [2]Handle{faceHandle, contactHandle})
}

func (r *Registry) Len() int {
	return len(r.collisions)
}

// Collisions returns the recorded collisions in detection order.
// The slice is reused by the next step and must not be kept.
func (r *Registry) Collisions() []constraint.Collision {
	return r.collisions
}

// Handles returns the face and contact handles of the i-th collision
func (r *Registry) Handles(i int) (face Handle, contact Handle) {
	return r.handles[i][0], r.handles[i][1]
}

// IsColliding scans the registry for a collision involving body
func (r *Registry) IsColliding(body *actor.Polygon) bool {
	for _, c := range r.collisions {
		if c.Involves(body) {
			return true
		}
	}

	return false
}

// Remove drops every collision involving the polygon at handle
func (r *Registry) Remove(handle Handle) {
	n := 0
	for i, pair := range r.handles {
		if pair[0] == handle || pair[1] == handle {
			continue
		}
		r.collisions[n] = r.collisions[i]
		r.handles[n] = pair
		n++
	}

	clear(r.collisions[n:])
	r.collisions = r.collisions[:n]
	r.handles = r.handles[:n]
}
