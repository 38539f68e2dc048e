package actor

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// PolygonDef holds every parameter a polygon can be created with
type PolygonDef struct {
	Vertices   *Vertices
	Position   mgl64.Vec2
	Rotation   float64
	Mass       float64
	UseGravity bool

	// Static polygons are never integrated and have zero inverse mass
	Static bool
	// Layer is the collision layer this polygon belongs to
	Layer int
	// CollisionLayers lists the layers this polygon collides with. Empty means all of them.
	CollisionLayers []int
}

// Polygon is a convex rigid body.
// Its global vertices, faces and AABB are derived from the local vertices and the
// transform; every mutator touching one of those recomputes them before returning.
type Polygon struct {
	vertices       *Vertices
	globalVertices []mgl64.Vec2
	faces          []Face
	aabb           AABB

	transform Transform

	velocity        mgl64.Vec2
	angularVelocity float64

	mass              float64
	rotationalInertia float64

	accumulatedForce  mgl64.Vec2
	accumulatedTorque float64

	useGravity bool
	static     bool
	awake      bool

	layer           int
	collisionLayers []int
}

// NewPolygon creates an awake dynamic polygon on layer 0 that collides with every layer
func NewPolygon(vertices *Vertices, position mgl64.Vec2, rotation, mass float64, useGravity bool) (*Polygon, error) {
	return NewPolygonFromDef(PolygonDef{
		Vertices:   vertices,
		Position:   position,
		Rotation:   rotation,
		Mass:       mass,
		UseGravity: useGravity,
	})
}

// NewPolygonFromDef creates a polygon from a full definition
func NewPolygonFromDef(def PolygonDef) (*Polygon, error) {
	if def.Vertices == nil {
		return nil, fmt.Errorf("%w: no vertices", ErrDegeneratePolygon)
	}
	if !def.Static && !validMass(def.Mass) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMass, def.Mass)
	}

	p := &Polygon{
		transform: Transform{
			Position: def.Position,
			Rotation: def.Rotation,
		},
		mass:            def.Mass,
		useGravity:      def.UseGravity,
		static:          def.Static,
		awake:           true,
		layer:           def.Layer,
		collisionLayers: slices.Clone(def.CollisionLayers),
	}
	p.setVertices(def.Vertices)

	return p, nil
}

func validMass(mass float64) bool {
	return mass > 0 && !math.IsInf(mass, 0) && !math.IsNaN(mass)
}

// setVertices swaps the vertex template and rebuilds every piece of derived state
func (p *Polygon) setVertices(vertices *Vertices) {
	p.vertices = vertices
	if len(p.globalVertices) != vertices.Len() {
		p.globalVertices = make([]mgl64.Vec2, vertices.Len())
		p.faces = make([]Face, vertices.Len())
	}

	p.updateRotationalInertia()
	p.updateGlobalState()
}

func (p *Polygon) updateRotationalInertia() {
	p.rotationalInertia = p.vertices.ComputeInertia(p.mass)
}

func (p *Polygon) updateGlobalState() {
	p.updateGlobalVertices()
	p.updateFaces()
	p.aabb = ComputeAABB(p.globalVertices)
}

func (p *Polygon) updateGlobalVertices() {
	p.transform.ApplyAll(p.globalVertices, p.vertices.points)
}

func (p *Polygon) updateFaces() {
	var centroid mgl64.Vec2
	for _, vertex := range p.globalVertices {
		centroid = centroid.Add(vertex)
	}
	centroid = centroid.Mul(1.0 / float64(len(p.globalVertices)))

	for i, a := range p.globalVertices {
		b := p.globalVertices[(i+1)%len(p.globalVertices)]
		p.faces[i] = newFace(a, b, centroid)
	}
}

// ============================================================================
// Geometry
// ============================================================================

// Vertices returns the shared local vertex template
func (p *Polygon) Vertices() *Vertices {
	return p.vertices
}

// SetVertices replaces the local vertex template
func (p *Polygon) SetVertices(vertices *Vertices) error {
	if vertices == nil {
		return fmt.Errorf("%w: no vertices", ErrDegeneratePolygon)
	}
	p.setVertices(vertices)

	return nil
}

// Vertex returns the i-th local vertex
func (p *Polygon) Vertex(i int) mgl64.Vec2 {
	return p.vertices.At(i)
}

// GlobalVertices returns the world-space vertices, in the order of the local ones.
// The slice is owned by the polygon and must not be modified.
func (p *Polygon) GlobalVertices() []mgl64.Vec2 {
	return p.globalVertices
}

// GlobalVertex returns the i-th world-space vertex
func (p *Polygon) GlobalVertex(i int) mgl64.Vec2 {
	return p.globalVertices[i]
}

// Faces returns the world-space faces; face i goes from global vertex i to i+1.
// The slice is owned by the polygon and must not be modified.
func (p *Polygon) Faces() []Face {
	return p.faces
}

// Face returns the i-th face
func (p *Polygon) Face(i int) Face {
	return p.faces[i]
}

// AABB returns the world-space bounding box
func (p *Polygon) AABB() AABB {
	return p.aabb
}

// ============================================================================
// Pose
// ============================================================================

func (p *Polygon) Transform() Transform {
	return p.transform
}

func (p *Polygon) Position() mgl64.Vec2 {
	return p.transform.Position
}

func (p *Polygon) SetPosition(position mgl64.Vec2) {
	p.transform.Position = position
	p.updateGlobalState()
}

func (p *Polygon) Translate(delta mgl64.Vec2) {
	p.SetPosition(p.transform.Position.Add(delta))
}

func (p *Polygon) Rotation() float64 {
	return p.transform.Rotation
}

func (p *Polygon) SetRotation(rotation float64) {
	p.transform.Rotation = rotation
	p.updateGlobalState()
}

func (p *Polygon) Rotate(delta float64) {
	p.SetRotation(p.transform.Rotation + delta)
}

// ============================================================================
// Velocity
// ============================================================================

func (p *Polygon) Velocity() mgl64.Vec2 {
	return p.velocity
}

func (p *Polygon) SetVelocity(velocity mgl64.Vec2) {
	p.velocity = velocity
}

// Accelerate adds a velocity change
func (p *Polygon) Accelerate(delta mgl64.Vec2) {
	p.velocity = p.velocity.Add(delta)
}

func (p *Polygon) AngularVelocity() float64 {
	return p.angularVelocity
}

func (p *Polygon) SetAngularVelocity(angularVelocity float64) {
	p.angularVelocity = angularVelocity
}

// AccelerateRotation adds an angular velocity change
func (p *Polygon) AccelerateRotation(delta float64) {
	p.angularVelocity += delta
}

// ============================================================================
// Mass
// ============================================================================

func (p *Polygon) Mass() float64 {
	return p.mass
}

// SetMass changes the mass and recomputes the rotational inertia
func (p *Polygon) SetMass(mass float64) error {
	if !p.static && !validMass(mass) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}
	p.mass = mass
	p.updateRotationalInertia()

	return nil
}

// RotationalInertia returns the inertia about the local origin, the point the polygon rotates around
func (p *Polygon) RotationalInertia() float64 {
	return p.rotationalInertia
}

// CenterOfMass returns the center of mass in local space
func (p *Polygon) CenterOfMass() mgl64.Vec2 {
	return p.vertices.Centroid()
}

// InverseMass is 0 for static polygons
func (p *Polygon) InverseMass() float64 {
	if p.static || p.mass <= 0 {
		return 0
	}

	return 1.0 / p.mass
}

// InverseInertia is 0 for static polygons
func (p *Polygon) InverseInertia() float64 {
	if p.static || p.rotationalInertia <= 0 {
		return 0
	}

	return 1.0 / p.rotationalInertia
}

// ============================================================================
// Flags & layers
// ============================================================================

func (p *Polygon) UseGravity() bool {
	return p.useGravity
}

func (p *Polygon) SetUseGravity(useGravity bool) {
	p.useGravity = useGravity
}

func (p *Polygon) IsStatic() bool {
	return p.static
}

// SetStatic freezes or releases the polygon. A frozen polygon loses its velocity and pending forces.
// Releasing a polygon whose mass is not valid for a dynamic body fails, and it stays static.
func (p *Polygon) SetStatic(static bool) error {
	if !static && !validMass(p.mass) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, p.mass)
	}

	p.static = static
	if static {
		p.velocity = mgl64.Vec2{}
		p.angularVelocity = 0
		p.ClearForces()
	}

	return nil
}

func (p *Polygon) IsAwake() bool {
	return p.awake
}

// Sleep removes the polygon from detection and integration until Wake is called
func (p *Polygon) Sleep() {
	p.awake = false
	p.velocity = mgl64.Vec2{}
	p.angularVelocity = 0
	p.ClearForces()
}

func (p *Polygon) Wake() {
	p.awake = true
}

func (p *Polygon) Layer() int {
	return p.layer
}

func (p *Polygon) SetLayer(layer int) {
	p.layer = layer
}

// CollisionLayers returns a copy of the allow-list
func (p *Polygon) CollisionLayers() []int {
	return slices.Clone(p.collisionLayers)
}

func (p *Polygon) SetCollisionLayers(layers []int) {
	p.collisionLayers = slices.Clone(layers)
}

// CollidesWithLayer reports whether the allow-list accepts layer. An empty list accepts every layer.
func (p *Polygon) CollidesWithLayer(layer int) bool {
	return len(p.collisionLayers) == 0 || slices.Contains(p.collisionLayers, layer)
}

// ============================================================================
// Forces
// ============================================================================

// ApplyForce accumulates a force (N) applied at the polygon origin, consumed by the next Integrate
func (p *Polygon) ApplyForce(force mgl64.Vec2) {
	if p.static {
		return
	}
	p.Wake()

	p.accumulatedForce = p.accumulatedForce.Add(force)
}

// ApplyTorque accumulates a torque (N⋅m), consumed by the next Integrate
func (p *Polygon) ApplyTorque(torque float64) {
	if p.static {
		return
	}
	p.Wake()

	p.accumulatedTorque += torque
}

// ApplyImpulse changes the velocities immediately, as if impulse was applied at the world point
func (p *Polygon) ApplyImpulse(impulse mgl64.Vec2, point mgl64.Vec2) {
	if p.static {
		return
	}
	p.Wake()

	r := point.Sub(p.transform.Position)
	p.velocity = p.velocity.Add(impulse.Mul(p.InverseMass()))
	p.angularVelocity += Cross(r, impulse) * p.InverseInertia()
}

func (p *Polygon) ClearForces() {
	p.accumulatedForce = mgl64.Vec2{}
	p.accumulatedTorque = 0
}

// Integrate advances the polygon by dt with semi-implicit Euler: accelerations are
// applied to the velocities first, then the new velocities move the polygon.
// Gravity is an acceleration along Y.
func (p *Polygon) Integrate(dt float64, gravity float64) {
	if p.static || !p.awake {
		return
	}

	if p.useGravity {
		p.Accelerate(mgl64.Vec2{0, gravity * dt})
	}
	p.Accelerate(p.accumulatedForce.Mul(p.InverseMass() * dt))
	p.AccelerateRotation(p.accumulatedTorque * p.InverseInertia() * dt)

	p.transform.Position = p.transform.Position.Add(p.velocity.Mul(dt))
	p.transform.Rotation += p.angularVelocity * dt
	p.updateGlobalState()

	p.ClearForces()
}
