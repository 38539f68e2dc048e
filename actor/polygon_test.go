package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// expectedGlobalVertices rotates then translates every local vertex by hand
func expectedGlobalVertices(vertices *Vertices, position mgl64.Vec2, rotation float64) []mgl64.Vec2 {
	c, s := math.Cos(rotation), math.Sin(rotation)
	out := make([]mgl64.Vec2, vertices.Len())
	for i := range out {
		v := vertices.At(i)
		out[i] = mgl64.Vec2{
			c*v.X() - s*v.Y() + position.X(),
			s*v.X() + c*v.Y() + position.Y(),
		}
	}

	return out
}

func assertGlobalState(t *testing.T, p *Polygon) {
	t.Helper()

	want := expectedGlobalVertices(p.Vertices(), p.Position(), p.Rotation())
	got := p.GlobalVertices()
	if len(got) != len(want) {
		t.Fatalf("len(GlobalVertices()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !vec2AlmostEqual(got[i], want[i], 1e-10) {
			t.Errorf("GlobalVertex(%d) = %v, want %v", i, got[i], want[i])
		}
	}

	faces := p.Faces()
	if len(faces) != len(want) {
		t.Fatalf("len(Faces()) = %d, want %d", len(faces), len(want))
	}
	for i, face := range faces {
		if !vec2AlmostEqual(face.Position, want[i], 1e-10) {
			t.Errorf("Face(%d).Position = %v, want %v", i, face.Position, want[i])
		}
		if !almostEqual(face.Normal.Len(), 1, 1e-10) {
			t.Errorf("Face(%d).Normal = %v, want unit length", i, face.Normal)
		}
		// every vertex lies on or behind every face of a convex polygon
		for j, v := range want {
			if d := face.Distance(v); d > 1e-9 {
				t.Errorf("vertex %d is %v in front of face %d", j, d, i)
			}
		}
	}

	wantAABB := ComputeAABB(want)
	if !vec2AlmostEqual(p.AABB().Min, wantAABB.Min, 1e-10) || !vec2AlmostEqual(p.AABB().Max, wantAABB.Max, 1e-10) {
		t.Errorf("AABB() = %v, want %v", p.AABB(), wantAABB)
	}
}

// =============================================================================
// NewPolygon Tests
// =============================================================================

func TestNewPolygon(t *testing.T) {
	vertices := square(t, 4)

	p, err := NewPolygon(vertices, mgl64.Vec2{1, 2}, 0.5, 3, true)
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	if p.Position() != (mgl64.Vec2{1, 2}) {
		t.Errorf("Position() = %v, want (1, 2)", p.Position())
	}
	if p.Rotation() != 0.5 {
		t.Errorf("Rotation() = %v, want 0.5", p.Rotation())
	}
	if p.Mass() != 3 {
		t.Errorf("Mass() = %v, want 3", p.Mass())
	}
	if !p.UseGravity() {
		t.Error("UseGravity() = false, want true")
	}
	if p.IsStatic() {
		t.Error("IsStatic() = true, want false")
	}
	if !p.IsAwake() {
		t.Error("IsAwake() = false, want true")
	}
	if p.Layer() != 0 || len(p.CollisionLayers()) != 0 {
		t.Errorf("Layer() = %d, CollisionLayers() = %v, want 0 and empty", p.Layer(), p.CollisionLayers())
	}
	if !almostEqual(p.RotationalInertia(), 3*32.0/12.0, 1e-10) {
		t.Errorf("RotationalInertia() = %v, want %v", p.RotationalInertia(), 3*32.0/12.0)
	}
	if !almostEqual(p.InverseMass(), 1.0/3.0, 1e-12) {
		t.Errorf("InverseMass() = %v, want 1/3", p.InverseMass())
	}

	assertGlobalState(t, p)
}

func TestNewPolygon_Errors(t *testing.T) {
	vertices := square(t, 1)

	tests := []struct {
		name string
		def  PolygonDef
		want error
	}{
		{"nil vertices", PolygonDef{Mass: 1}, ErrDegeneratePolygon},
		{"zero mass", PolygonDef{Vertices: vertices}, ErrInvalidMass},
		{"negative mass", PolygonDef{Vertices: vertices, Mass: -2}, ErrInvalidMass},
		{"infinite mass", PolygonDef{Vertices: vertices, Mass: math.Inf(1)}, ErrInvalidMass},
		{"NaN mass", PolygonDef{Vertices: vertices, Mass: math.NaN()}, ErrInvalidMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolygonFromDef(tt.def)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewPolygonFromDef() error = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Error("NewPolygonFromDef() should not return a polygon on error")
			}
		})
	}
}

func TestNewPolygon_Static(t *testing.T) {
	p, err := NewPolygonFromDef(PolygonDef{
		Vertices:        square(t, 2),
		Static:          true,
		Layer:           3,
		CollisionLayers: []int{1, 2},
	})
	if err != nil {
		t.Fatalf("NewPolygonFromDef() error = %v, static polygons accept any mass", err)
	}

	if p.InverseMass() != 0 {
		t.Errorf("InverseMass() = %v, want 0 for static polygon", p.InverseMass())
	}
	if p.InverseInertia() != 0 {
		t.Errorf("InverseInertia() = %v, want 0 for static polygon", p.InverseInertia())
	}
	if p.Layer() != 3 {
		t.Errorf("Layer() = %d, want 3", p.Layer())
	}
}

// =============================================================================
// Global State Consistency Tests
// =============================================================================

func TestPolygon_GlobalStateFollowsMutations(t *testing.T) {
	triangle, err := NewVertices([]mgl64.Vec2{{0, 0}, {2, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("NewVertices() error = %v", err)
	}

	p, err := NewPolygon(square(t, 2), mgl64.Vec2{0, 0}, 0, 1, false)
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func()
	}{
		{"SetPosition", func() { p.SetPosition(mgl64.Vec2{3, -4}) }},
		{"Translate", func() { p.Translate(mgl64.Vec2{0.5, 0.25}) }},
		{"SetRotation", func() { p.SetRotation(math.Pi / 3) }},
		{"Rotate", func() { p.Rotate(-1.2) }},
		{"SetVertices", func() { _ = p.SetVertices(triangle) }},
		{"Integrate", func() {
			p.SetVelocity(mgl64.Vec2{1, 2})
			p.SetAngularVelocity(0.7)
			p.Integrate(0.1, -9.81)
		}},
	}

	// Sequential: each mutation starts from the state left by the previous one
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mutate()
			assertGlobalState(t, p)
		})
	}
}

func TestPolygon_SetVerticesRecomputesInertia(t *testing.T) {
	p, err := NewPolygon(square(t, 2), mgl64.Vec2{}, 0, 2, false)
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	big := square(t, 4)
	if err := p.SetVertices(big); err != nil {
		t.Fatalf("SetVertices() error = %v", err)
	}
	if want := big.ComputeInertia(2); !almostEqual(p.RotationalInertia(), want, 1e-12) {
		t.Errorf("RotationalInertia() = %v, want %v", p.RotationalInertia(), want)
	}

	if err := p.SetMass(5); err != nil {
		t.Fatalf("SetMass() error = %v", err)
	}
	if want := big.ComputeInertia(5); !almostEqual(p.RotationalInertia(), want, 1e-12) {
		t.Errorf("RotationalInertia() = %v, want %v", p.RotationalInertia(), want)
	}

	if err := p.SetMass(0); !errors.Is(err, ErrInvalidMass) {
		t.Errorf("SetMass(0) error = %v, want ErrInvalidMass", err)
	}
	if p.Mass() != 5 {
		t.Errorf("Mass() = %v, a rejected SetMass must not change the mass", p.Mass())
	}

	if err := p.SetVertices(nil); !errors.Is(err, ErrDegeneratePolygon) {
		t.Errorf("SetVertices(nil) error = %v, want ErrDegeneratePolygon", err)
	}
}

func TestPolygon_SharedTemplate(t *testing.T) {
	template := square(t, 2)

	a, _ := NewPolygon(template, mgl64.Vec2{0, 0}, 0, 1, false)
	b, _ := NewPolygon(template, mgl64.Vec2{10, 0}, 0.3, 1, false)

	if a.Vertices() != b.Vertices() {
		t.Error("polygons should share the template")
	}

	a.SetRotation(1)
	assertGlobalState(t, a)
	assertGlobalState(t, b)
	if b.Rotation() != 0.3 {
		t.Errorf("b.Rotation() = %v, moving a must not affect b", b.Rotation())
	}
}

// =============================================================================
// Faces Tests
// =============================================================================

func TestPolygon_FaceNormals(t *testing.T) {
	tests := []struct {
		name     string
		vertices []mgl64.Vec2
	}{
		{"clockwise", []mgl64.Vec2{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}},
		{"counter-clockwise", []mgl64.Vec2{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices, err := NewVertices(tt.vertices)
			if err != nil {
				t.Fatalf("NewVertices() error = %v", err)
			}
			p, _ := NewPolygon(vertices, mgl64.Vec2{5, 5}, 0, 1, false)

			for i, face := range p.Faces() {
				// outward: the polygon center is behind every face
				if d := face.Distance(p.Position()); d >= 0 {
					t.Errorf("Face(%d) distance to center = %v, want negative", i, d)
				}
				axisAligned := almostEqual(math.Abs(face.Normal.X())+math.Abs(face.Normal.Y()), 1, 1e-12)
				if !axisAligned {
					t.Errorf("Face(%d).Normal = %v, want axis aligned", i, face.Normal)
				}
			}
		})
	}
}

func TestFace_Distance(t *testing.T) {
	face := Face{Position: mgl64.Vec2{2, 0}, Normal: mgl64.Vec2{1, 0}}

	tests := []struct {
		name  string
		point mgl64.Vec2
		want  float64
	}{
		{"in front", mgl64.Vec2{5, 3}, 3},
		{"on plane", mgl64.Vec2{2, -7}, 0},
		{"behind", mgl64.Vec2{1, 1}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := face.Distance(tt.point); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("Distance(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestPolygon_Integrate(t *testing.T) {
	p, _ := NewPolygon(square(t, 2), mgl64.Vec2{0, 10}, 0, 2, true)
	p.SetVelocity(mgl64.Vec2{1, 0})
	p.SetAngularVelocity(0.5)

	dt := 0.1
	gravity := -10.0
	p.Integrate(dt, gravity)

	// semi-implicit: velocity first, then position with the new velocity
	wantVelocity := mgl64.Vec2{1, -1}
	if !vec2AlmostEqual(p.Velocity(), wantVelocity, 1e-12) {
		t.Errorf("Velocity() = %v, want %v", p.Velocity(), wantVelocity)
	}
	wantPosition := mgl64.Vec2{0.1, 9.9}
	if !vec2AlmostEqual(p.Position(), wantPosition, 1e-12) {
		t.Errorf("Position() = %v, want %v", p.Position(), wantPosition)
	}
	if !almostEqual(p.Rotation(), 0.05, 1e-12) {
		t.Errorf("Rotation() = %v, want 0.05", p.Rotation())
	}
}

func TestPolygon_IntegrateWithoutGravity(t *testing.T) {
	p, _ := NewPolygon(square(t, 2), mgl64.Vec2{0, 0}, 0, 1, false)

	p.Integrate(1, -9.81)

	if p.Velocity() != (mgl64.Vec2{}) || p.Position() != (mgl64.Vec2{}) {
		t.Errorf("Velocity() = %v, Position() = %v, want both zero", p.Velocity(), p.Position())
	}
}

func TestPolygon_IntegrateSkipsStaticAndSleeping(t *testing.T) {
	static, _ := NewPolygonFromDef(PolygonDef{Vertices: square(t, 2), Position: mgl64.Vec2{1, 1}, UseGravity: true, Static: true})
	sleeping, _ := NewPolygon(square(t, 2), mgl64.Vec2{1, 1}, 0, 1, true)
	sleeping.Sleep()

	for _, p := range []*Polygon{static, sleeping} {
		p.Integrate(0.5, -9.81)

		if p.Position() != (mgl64.Vec2{1, 1}) || p.Velocity() != (mgl64.Vec2{}) || p.Rotation() != 0 {
			t.Errorf("polygon moved: Position() = %v, Velocity() = %v, Rotation() = %v", p.Position(), p.Velocity(), p.Rotation())
		}
	}
}

// =============================================================================
// Forces Tests
// =============================================================================

func TestPolygon_ApplyForce(t *testing.T) {
	p, _ := NewPolygon(square(t, 2), mgl64.Vec2{}, 0, 2, false)
	p.Sleep()

	p.ApplyForce(mgl64.Vec2{4, 0})
	p.ApplyTorque(p.RotationalInertia())

	if !p.IsAwake() {
		t.Error("ApplyForce should wake the polygon")
	}

	p.Integrate(0.5, 0)

	// a = F/m = 2, v = a*dt = 1
	if !vec2AlmostEqual(p.Velocity(), mgl64.Vec2{1, 0}, 1e-12) {
		t.Errorf("Velocity() = %v, want (1, 0)", p.Velocity())
	}
	// α = τ/I = 1, ω = α*dt = 0.5
	if !almostEqual(p.AngularVelocity(), 0.5, 1e-12) {
		t.Errorf("AngularVelocity() = %v, want 0.5", p.AngularVelocity())
	}

	// forces are consumed by Integrate
	p.Integrate(0.5, 0)
	if !vec2AlmostEqual(p.Velocity(), mgl64.Vec2{1, 0}, 1e-12) {
		t.Errorf("Velocity() = %v after a second step, forces should have been cleared", p.Velocity())
	}
}

func TestPolygon_ApplyImpulse(t *testing.T) {
	p, _ := NewPolygon(square(t, 2), mgl64.Vec2{0, 0}, 0, 2, false)

	// an impulse through the origin only changes the linear velocity
	p.ApplyImpulse(mgl64.Vec2{2, 0}, mgl64.Vec2{0, 0})
	if !vec2AlmostEqual(p.Velocity(), mgl64.Vec2{1, 0}, 1e-12) || p.AngularVelocity() != 0 {
		t.Errorf("Velocity() = %v, AngularVelocity() = %v, want (1, 0) and 0", p.Velocity(), p.AngularVelocity())
	}

	// an impulse off the origin also spins the polygon
	p.ApplyImpulse(mgl64.Vec2{0, 1}, mgl64.Vec2{1, 0})
	wantAngular := 1.0 / p.RotationalInertia()
	if !almostEqual(p.AngularVelocity(), wantAngular, 1e-12) {
		t.Errorf("AngularVelocity() = %v, want %v", p.AngularVelocity(), wantAngular)
	}

	static, _ := NewPolygonFromDef(PolygonDef{Vertices: square(t, 2), Static: true})
	static.ApplyImpulse(mgl64.Vec2{10, 10}, mgl64.Vec2{1, 1})
	static.ApplyForce(mgl64.Vec2{10, 10})
	static.Integrate(1, 0)
	if static.Velocity() != (mgl64.Vec2{}) || static.AngularVelocity() != 0 {
		t.Error("static polygons must ignore impulses and forces")
	}
}

// =============================================================================
// Layers Tests
// =============================================================================

func TestPolygon_CollidesWithLayer(t *testing.T) {
	tests := []struct {
		name   string
		layers []int
		layer  int
		want   bool
	}{
		{"empty allow-list accepts all", nil, 42, true},
		{"listed layer", []int{1, 2}, 2, true},
		{"unlisted layer", []int{1, 2}, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewPolygon(square(t, 1), mgl64.Vec2{}, 0, 1, false)
			p.SetCollisionLayers(tt.layers)

			if got := p.CollidesWithLayer(tt.layer); got != tt.want {
				t.Errorf("CollidesWithLayer(%d) = %v, want %v", tt.layer, got, tt.want)
			}
		})
	}
}

func TestPolygon_CollisionLayersAreCopied(t *testing.T) {
	layers := []int{1}
	p, _ := NewPolygonFromDef(PolygonDef{Vertices: square(t, 1), Mass: 1, CollisionLayers: layers})

	layers[0] = 9
	if !p.CollidesWithLayer(1) || p.CollidesWithLayer(9) {
		t.Errorf("CollisionLayers() = %v, editing the input slice must not change the polygon", p.CollisionLayers())
	}
}

func TestPolygon_SetStatic(t *testing.T) {
	p, _ := NewPolygon(square(t, 1), mgl64.Vec2{}, 0, 1, true)
	p.SetVelocity(mgl64.Vec2{3, 3})
	p.SetAngularVelocity(2)

	if err := p.SetStatic(true); err != nil {
		t.Fatalf("SetStatic(true) error = %v", err)
	}

	if p.Velocity() != (mgl64.Vec2{}) || p.AngularVelocity() != 0 {
		t.Errorf("Velocity() = %v, AngularVelocity() = %v, want zero once static", p.Velocity(), p.AngularVelocity())
	}
	if p.InverseMass() != 0 {
		t.Errorf("InverseMass() = %v, want 0", p.InverseMass())
	}

	if err := p.SetStatic(false); err != nil {
		t.Fatalf("SetStatic(false) error = %v", err)
	}
	if p.InverseMass() != 1 {
		t.Errorf("InverseMass() = %v, want 1 once dynamic again", p.InverseMass())
	}
}

func TestPolygon_SetStatic_InvalidMass(t *testing.T) {
	tests := []struct {
		name string
		mass float64
	}{
		{"zero", 0},
		{"negative", -2},
		{"NaN", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolygonFromDef(PolygonDef{Vertices: square(t, 1), Mass: tt.mass, Static: true})
			if err != nil {
				t.Fatalf("NewPolygonFromDef() error = %v", err)
			}

			if err := p.SetStatic(false); !errors.Is(err, ErrInvalidMass) {
				t.Errorf("SetStatic(false) error = %v, want ErrInvalidMass", err)
			}
			if !p.IsStatic() {
				t.Error("a polygon without a valid mass should stay static")
			}

			// freezing again is always allowed
			if err := p.SetStatic(true); err != nil {
				t.Errorf("SetStatic(true) error = %v", err)
			}
		})
	}
}
