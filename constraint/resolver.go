package constraint

import (
	"math"

	"github.com/akmonengine/sat2d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultRestitution gives slightly bouncy contacts
	DefaultRestitution = 0.2
	// DefaultCorrectionPercent is the share of the penetration removed per step.
	// Lower values = softer contacts (more penetration, smoother)
	// Higher values = stiffer contacts (less penetration, potential jitter)
	DefaultCorrectionPercent = 0.8
	// DefaultSlop is the penetration left uncorrected, keeping resting contacts alive
	DefaultSlop = 0.01
)

// Resolver reacts to the collisions detected during a step.
// It runs once per step, after detection is complete and before integration.
// Implementations must give the same result whatever the order of the collisions.
type Resolver interface {
	Resolve(collisions []Collision, dt float64)
}

// NoResolution lets polygons go through each other; collisions are only reported
type NoResolution struct{}

func (NoResolution) Resolve(collisions []Collision, dt float64) {}

// VelocityInversion reverses the velocity of every contact body, once per step
// even when it takes part in several collisions
type VelocityInversion struct{}

func (VelocityInversion) Resolve(collisions []Collision, dt float64) {
	inverted := make(map[*actor.Polygon]bool, len(collisions))

	for _, c := range collisions {
		body := c.ContactBody
		if body.IsStatic() || inverted[body] {
			continue
		}
		inverted[body] = true

		body.SetVelocity(body.Velocity().Mul(-1))
	}
}

// Impulse applies a normal impulse with restitution at each contact vertex, then
// pushes the polygons apart along the normal to remove most of the penetration.
// Every correction is computed from the state before resolution, then applied at once.
type Impulse struct {
	Restitution float64 // 0 = no rebound, 1 = perfect restitution
	Percent     float64
	Slop        float64
}

// DefaultImpulse returns an Impulse resolver with the default tuning
func DefaultImpulse() *Impulse {
	return &Impulse{
		Restitution: DefaultRestitution,
		Percent:     DefaultCorrectionPercent,
		Slop:        DefaultSlop,
	}
}

// correction holds the changes of one body for one collision, computed before any is applied
type correction struct {
	body            *actor.Polygon
	velocity        mgl64.Vec2
	angularVelocity float64
	shift           mgl64.Vec2
}

func (r *Impulse) Resolve(collisions []Collision, dt float64) {
	corrections := make([]correction, 0, 2*len(collisions))

	// ========== 1. Compute, read only ==========
	for _, c := range collisions {
		corrections = r.appendCorrections(corrections, c)
	}

	// ========== 2. Apply velocities ==========
	for _, k := range corrections {
		if k.body.IsStatic() {
			continue
		}
		k.body.Accelerate(k.velocity)
		k.body.AccelerateRotation(k.angularVelocity)
	}

	// ========== 3. Apply positions ==========
	for _, k := range corrections {
		if k.body.IsStatic() || k.shift == (mgl64.Vec2{}) {
			continue
		}
		k.body.Translate(k.shift)
	}
}

func (r *Impulse) appendCorrections(corrections []correction, c Collision) []correction {
	bodyA := c.FaceBody
	bodyB := c.ContactBody
	n := c.Normal

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	invInertiaA := bodyA.InverseInertia()
	invInertiaB := bodyB.InverseInertia()

	rA := c.ContactVertex.Sub(bodyA.Position())
	rB := c.ContactVertex.Sub(bodyB.Position())
	rAn := actor.Cross(rA, n)
	rBn := actor.Cross(rB, n)

	k := invMassA + invMassB + rAn*rAn*invInertiaA + rBn*rBn*invInertiaB
	if k <= 1e-12 {
		return corrections
	}

	var impulse mgl64.Vec2
	velocityA := bodyA.Velocity().Add(actor.CrossScalar(bodyA.AngularVelocity(), rA))
	velocityB := bodyB.Velocity().Add(actor.CrossScalar(bodyB.AngularVelocity(), rB))
	normalVelocity := velocityB.Sub(velocityA).Dot(n)
	// Only approaching contacts receive an impulse
	if normalVelocity < 0 {
		j := -(1 + r.Restitution) * normalVelocity / k
		impulse = n.Mul(j)
	}

	var shift mgl64.Vec2
	linearMass := invMassA + invMassB
	if linearMass > 0 {
		depth := math.Max(c.Penetration()-r.Slop, 0)
		shift = n.Mul(depth * r.Percent / linearMass)
	}

	impulseA := impulse.Mul(-1)
	return append(corrections,
		correction{
			body:            bodyA,
			velocity:        impulseA.Mul(invMassA),
			angularVelocity: actor.Cross(rA, impulseA) * invInertiaA,
			shift:           shift.Mul(-invMassA),
		},
		correction{
			body:            bodyB,
			velocity:        impulse.Mul(invMassB),
			angularVelocity: actor.Cross(rB, impulse) * invInertiaB,
			shift:           shift.Mul(invMassB),
		},
	)
}
