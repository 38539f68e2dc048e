package main

import (
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/sat2d"
	"github.com/akmonengine/sat2d/actor"
	"github.com/akmonengine/sat2d/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scene is the YAML description of a world and the way to drive it
type Scene struct {
	FixedTimestep float64  `yaml:"fixed_timestep"`
	Gravity       *float64 `yaml:"gravity,omitempty"`
	Workers       int      `yaml:"workers,omitempty"`
	// CellSize enables the hashed grid broad phase when positive
	CellSize float64 `yaml:"cell_size,omitempty"`
	// Resolver is one of "impulse", "inversion" or "none"
	Resolver    string  `yaml:"resolver,omitempty"`
	Restitution float64 `yaml:"restitution,omitempty"`

	Ticks       int     `yaml:"ticks"`
	TickSeconds float64 `yaml:"tick_seconds"`

	// Shapes are vertex templates, shared by every polygon naming them
	Shapes   map[string]ShapeDef `yaml:"shapes"`
	Polygons []PolygonDef        `yaml:"polygons"`
}

// ShapeDef describes a vertex template: explicit vertices, a box, or a regular polygon
type ShapeDef struct {
	Vertices [][2]float64 `yaml:"vertices,omitempty"`
	Box      *[2]float64  `yaml:"box,omitempty"` // half extents
	Sides    int          `yaml:"sides,omitempty"`
	Radius   float64      `yaml:"radius,omitempty"`
}

type PolygonDef struct {
	Name            string     `yaml:"name"`
	Shape           string     `yaml:"shape"`
	Position        [2]float64 `yaml:"position"`
	Rotation        float64    `yaml:"rotation,omitempty"`
	Mass            float64    `yaml:"mass,omitempty"`
	Velocity        [2]float64 `yaml:"velocity,omitempty"`
	UseGravity      bool       `yaml:"use_gravity,omitempty"`
	Static          bool       `yaml:"static,omitempty"`
	Layer           int        `yaml:"layer,omitempty"`
	CollisionLayers []int      `yaml:"collision_layers,omitempty"`
}

// NamedHandle ties a scene polygon name to its handle in the world
type NamedHandle struct {
	Name   string
	Handle sat2d.Handle
}

// DefaultScene returns two 4x4 squares rotated by π/4, 12 units apart, stepped at 50Hz
func DefaultScene() Scene {
	return Scene{
		FixedTimestep: 0.02,
		Resolver:      "impulse",
		Restitution:   constraint.DefaultRestitution,
		Ticks:         2,
		TickSeconds:   0.02,
		Shapes: map[string]ShapeDef{
			"square": {Vertices: [][2]float64{{2, 2}, {2, -2}, {-2, -2}, {-2, 2}}},
		},
		Polygons: []PolygonDef{
			{Name: "left", Shape: "square", Position: [2]float64{-1.5, 0}, Rotation: math.Pi / 4, Mass: 1},
			{Name: "right", Shape: "square", Position: [2]float64{10.5, 0}, Rotation: math.Pi / 4, Mass: 1},
		},
	}
}

// LoadScene reads a YAML scene file
func LoadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("read scene: %w", err)
	}

	return ParseScene(data)
}

// ParseScene decodes a YAML scene, and fills the missing settings with defaults
func ParseScene(data []byte) (Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return Scene{}, fmt.Errorf("parse scene: %w", err)
	}
	scene.applyDefaults()

	return scene, nil
}

func (s *Scene) applyDefaults() {
	def := DefaultScene()
	if s.FixedTimestep <= 0 {
		s.FixedTimestep = def.FixedTimestep
	}
	if s.TickSeconds <= 0 {
		s.TickSeconds = s.FixedTimestep
	}
	if s.Ticks <= 0 {
		s.Ticks = def.Ticks
	}
	if s.Resolver == "" {
		s.Resolver = def.Resolver
	}
	for i := range s.Polygons {
		if s.Polygons[i].Mass == 0 {
			s.Polygons[i].Mass = 1
		}
	}
}

func (s Scene) gravity() float64 {
	if s.Gravity == nil {
		return sat2d.DEFAULT_GRAVITY
	}

	return *s.Gravity
}

func (s Scene) resolver() (constraint.Resolver, error) {
	switch s.Resolver {
	case "impulse":
		r := constraint.DefaultImpulse()
		r.Restitution = s.Restitution
		return r, nil
	case "inversion":
		return constraint.VelocityInversion{}, nil
	case "none":
		return constraint.NoResolution{}, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", s.Resolver)
	}
}

func (d ShapeDef) build() (*actor.Vertices, error) {
	switch {
	case len(d.Vertices) > 0:
		points := make([]mgl64.Vec2, len(d.Vertices))
		for i, v := range d.Vertices {
			points[i] = mgl64.Vec2{v[0], v[1]}
		}
		return actor.NewVertices(points)
	case d.Box != nil:
		return actor.NewBox(d.Box[0], d.Box[1])
	default:
		return actor.NewRegularPolygon(d.Radius, d.Sides)
	}
}

// Build creates the world described by the scene, and returns the handles in declaration order
func (s Scene) Build() (*sat2d.World, []NamedHandle, error) {
	world := sat2d.NewWorld(s.FixedTimestep, s.gravity())
	world.Workers = max(sat2d.DEFAULT_WORKERS, s.Workers)
	if s.CellSize > 0 {
		world.SpatialGrid = sat2d.NewSpatialGrid(s.CellSize, 1024)
	}

	resolver, err := s.resolver()
	if err != nil {
		return nil, nil, err
	}
	world.Resolver = resolver

	templates := make(map[string]*actor.Vertices, len(s.Shapes))
	for name, shape := range s.Shapes {
		vertices, err := shape.build()
		if err != nil {
			return nil, nil, fmt.Errorf("shape %q: %w", name, err)
		}
		templates[name] = vertices
	}

	handles := make([]NamedHandle, 0, len(s.Polygons))
	for i, p := range s.Polygons {
		vertices, ok := templates[p.Shape]
		if !ok {
			return nil, nil, fmt.Errorf("polygon %d (%s): unknown shape %q", i, p.Name, p.Shape)
		}

		handle, err := world.CreateLayeredPolygon(
			vertices,
			mgl64.Vec2{p.Position[0], p.Position[1]},
			p.Rotation,
			p.Mass,
			p.UseGravity,
			p.Layer,
			p.CollisionLayers,
			p.Static,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("polygon %d (%s): %w", i, p.Name, err)
		}

		body, err := world.GetPolygon(handle)
		if err != nil {
			return nil, nil, err
		}
		if !p.Static {
			body.SetVelocity(mgl64.Vec2{p.Velocity[0], p.Velocity[1]})
		}

		handles = append(handles, NamedHandle{Name: p.Name, Handle: handle})
	}

	return world, handles, nil
}
