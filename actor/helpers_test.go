package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec2AlmostEqual(a, b mgl64.Vec2, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) && almostEqual(a.Y(), b.Y(), epsilon)
}

// square returns the vertices of a square of the given side, centered on the origin
func square(t *testing.T, side float64) *Vertices {
	t.Helper()

	vertices, err := NewBox(side/2, side/2)
	if err != nil {
		t.Fatalf("NewBox(%v) error = %v", side, err)
	}

	return vertices
}
