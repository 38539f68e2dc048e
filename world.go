package sat2d

import (
	"fmt"
	"math"

	"github.com/akmonengine/sat2d/actor"
	"github.com/akmonengine/sat2d/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// stepTolerance is the fraction of a fixed step under which the accumulator counts a whole step
const stepTolerance = 1e-9

// DEFAULT_GRAVITY is the gravity acceleration along Y (m/s², or N/kg)
const DEFAULT_GRAVITY = -9.81

// entry is a live polygon with its handle
type entry struct {
	handle Handle
	body   *actor.Polygon
}

// candidate is a pair that passed the layer filter and the broad phase
type candidate struct {
	bodyA     entry
	bodyB     entry
	collision constraint.Collision
	colliding bool
}

// World owns every polygon and advances them with a fixed timestep
type World struct {
	// Gravity acceleration along Y (m/s², or N/kg)
	Gravity float64
	// Workers is the number of goroutines sharing the narrow phase and the integration
	Workers int
	// Resolver reacts to the collisions of each step; nil disables resolution
	Resolver constraint.Resolver

	Events Events
	// SpatialGrid, when set, replaces the all-pairs scan of the broad phase.
	// Both find the same pairs in the same order.
	SpatialGrid *SpatialGrid

	fixedTimestepSeconds   float64
	accumulatedTimeSeconds float64
	currentTimeSeconds     float64
	stepCount              uint64

	bodies     arena
	collisions Registry

	live       []entry
	liveBodies []*actor.Polygon
	candidates []*candidate
}

// NewWorld creates an empty world stepping every fixedTimestepSeconds.
// gravity is the acceleration along Y, negative values pull downwards.
func NewWorld(fixedTimestepSeconds float64, gravity float64) *World {
	return &World{
		Gravity:              gravity,
		Workers:              DEFAULT_WORKERS,
		Resolver:             constraint.DefaultImpulse(),
		Events:               NewEvents(),
		fixedTimestepSeconds: fixedTimestepSeconds,
	}
}

// ============================================================================
// Polygons
// ============================================================================

// CreatePolygon adds a dynamic polygon on layer 0 colliding with every layer
func (w *World) CreatePolygon(vertices *actor.Vertices, position mgl64.Vec2, rotation, mass float64, useGravity bool) (Handle, error) {
	return w.CreatePolygonFromDef(actor.PolygonDef{
		Vertices:   vertices,
		Position:   position,
		Rotation:   rotation,
		Mass:       mass,
		UseGravity: useGravity,
	})
}

// CreateLayeredPolygon adds a polygon with explicit layer, allow-list and static flag
func (w *World) CreateLayeredPolygon(vertices *actor.Vertices, position mgl64.Vec2, rotation, mass float64, useGravity bool, layer int, collisionLayers []int, isStatic bool) (Handle, error) {
	return w.CreatePolygonFromDef(actor.PolygonDef{
		Vertices:        vertices,
		Position:        position,
		Rotation:        rotation,
		Mass:            mass,
		UseGravity:      useGravity,
		Static:          isStatic,
		Layer:           layer,
		CollisionLayers: collisionLayers,
	})
}

// CreatePolygonFromDef adds a polygon built from def and returns its handle
func (w *World) CreatePolygonFromDef(def actor.PolygonDef) (Handle, error) {
	body, err := actor.NewPolygonFromDef(def)
	if err != nil {
		return InvalidHandle, err
	}

	return w.bodies.insert(body), nil
}

// DestroyPolygon removes the polygon at handle; the handle is invalid afterwards
func (w *World) DestroyPolygon(handle Handle) error {
	if !w.bodies.remove(handle) {
		return fmt.Errorf("%w: %v", ErrHandleNotFound, handle)
	}

	w.collisions.Remove(handle)
	w.Events.forget(handle)

	return nil
}

// GetPolygon resolves a handle to its polygon
func (w *World) GetPolygon(handle Handle) (*actor.Polygon, error) {
	body, ok := w.bodies.get(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrHandleNotFound, handle)
	}

	return body, nil
}

// Len returns the number of polygons in the world
func (w *World) Len() int {
	return w.bodies.len()
}

// Handles returns the handles of every polygon, in stepping order
func (w *World) Handles() []Handle {
	handles := make([]Handle, 0, w.bodies.len())
	w.bodies.each(func(h Handle, _ *actor.Polygon) {
		handles = append(handles, h)
	})

	return handles
}

// ============================================================================
// Clock
// ============================================================================

// Update feeds deltaTimeSeconds of real time to the world, and runs as many fixed
// steps as the accumulated time allows. The remainder is kept for the next call.
// Non-positive and non-finite deltas are ignored.
func (w *World) Update(deltaTimeSeconds float64) {
	if !(deltaTimeSeconds > 0) || math.IsInf(deltaTimeSeconds, 0) || !(w.fixedTimestepSeconds > 0) {
		return
	}

	// Steps are counted from the total, with a tolerance for decimal timesteps:
	// 0.1 at 0.02 is 5 steps, 0.7 at 0.1 is 7
	accumulated := w.accumulatedTimeSeconds + deltaTimeSeconds
	steps := math.Floor(accumulated/w.fixedTimestepSeconds + stepTolerance)
	accumulated -= steps * w.fixedTimestepSeconds
	if accumulated >= w.fixedTimestepSeconds {
		steps++
		accumulated -= w.fixedTimestepSeconds
	}
	w.accumulatedTimeSeconds = max(accumulated, 0)

	for range int(steps) {
		w.Step(w.fixedTimestepSeconds)
		w.stepCount++
		w.currentTimeSeconds = float64(w.stepCount) * w.fixedTimestepSeconds
	}
}

// GetCurrentTimeSeconds returns the simulated time. It only moves by whole fixed
// steps, and excludes the accumulated time not simulated yet.
func (w *World) GetCurrentTimeSeconds() float64 {
	return w.currentTimeSeconds
}

// AccumulatedTimeSeconds returns the time waiting for the next fixed step
func (w *World) AccumulatedTimeSeconds() float64 {
	return w.accumulatedTimeSeconds
}

func (w *World) FixedTimestepSeconds() float64 {
	return w.fixedTimestepSeconds
}

// ============================================================================
// Collisions
// ============================================================================

// IsColliding reports whether the polygon at handle took part in a collision during the last step
func (w *World) IsColliding(handle Handle) (bool, error) {
	body, err := w.GetPolygon(handle)
	if err != nil {
		return false, err
	}

	return w.collisions.IsColliding(body), nil
}

// Collisions returns a copy of the collisions detected during the last step
func (w *World) Collisions() []constraint.Collision {
	return append([]constraint.Collision(nil), w.collisions.Collisions()...)
}

// ============================================================================
// Step
// ============================================================================

// Step advances the simulation by dt, regardless of the accumulator.
// Detection only reads the polygons; resolution and integration run once it is over.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	w.gather()

	// Phase 1: Collision detection - layer filter & broad phase, then narrow phase
	w.collisions.Clear()
	w.detectCollision()
	w.Events.recordCollisions(&w.collisions)

	// Phase 2: Resolution, over the full registry
	w.resolve(dt)

	// Phase 3: Integration
	w.integrate(dt)

	w.Events.processSleepEvents(w.live)
	w.Events.flush()
}

// gather lists the live polygons in slot order
func (w *World) gather() {
	w.live = w.live[:0]
	w.bodies.each(func(h Handle, body *actor.Polygon) {
		w.live = append(w.live, entry{handle: h, body: body})
	})
}

func (w *World) detectCollision() {
	w.candidates = w.candidates[:0]

	if w.SpatialGrid != nil {
		w.findGridCandidates()
	} else {
		w.findCandidates()
	}

	task(w.Workers, w.candidates, func(c *candidate) {
		c.collision, c.colliding = TestCollision(c.bodyA.body, c.bodyB.body)
	})

	// Merged in pair order, whatever the number of workers
	for _, c := range w.candidates {
		if !c.colliding {
			continue
		}

		faceHandle, contactHandle := c.bodyA.handle, c.bodyB.handle
		if c.collision.FaceBody != c.bodyA.body {
			faceHandle, contactHandle = contactHandle, faceHandle
		}
		w.collisions.Add(faceHandle, contactHandle, c.collision)
	}
}

// acceptPair applies the checks run before the narrow phase, except the AABB test
func acceptPair(a, b entry) bool {
	return a.body.IsAwake() && b.body.IsAwake() && LayersAccept(a.body, b.body)
}

func (w *World) findCandidates() {
	for i, a := range w.live {
		for _, b := range w.live[i+1:] {
			if acceptPair(a, b) && BroadPhase(a.body, b.body) {
				w.candidates = append(w.candidates, &candidate{bodyA: a, bodyB: b})
			}
		}
	}
}

func (w *World) findGridCandidates() {
	w.liveBodies = w.liveBodies[:0]
	w.SpatialGrid.Clear()
	for i, e := range w.live {
		w.liveBodies = append(w.liveBodies, e.body)
		w.SpatialGrid.Insert(i, e.body)
	}

	accept := func(a, b int) bool {
		return acceptPair(w.live[a], w.live[b])
	}
	for _, pair := range w.SpatialGrid.FindPairs(w.liveBodies, accept) {
		w.candidates = append(w.candidates, &candidate{bodyA: w.live[pair.A], bodyB: w.live[pair.B]})
	}
}

func (w *World) resolve(dt float64) {
	if w.Resolver == nil || w.collisions.Len() == 0 {
		return
	}

	w.Resolver.Resolve(w.collisions.Collisions(), dt)
}

func (w *World) integrate(dt float64) {
	task(w.Workers, w.live, func(e entry) {
		e.body.Integrate(dt, w.Gravity)
	})
}
