package actor

import "errors"

var (
	// ErrDegeneratePolygon is returned for vertex lists with fewer than 3 points or no area
	ErrDegeneratePolygon = errors.New("degenerate polygon")
	// ErrInvalidMass is returned when a dynamic polygon is given a non-positive or non-finite mass
	ErrInvalidMass = errors.New("invalid mass")
)
