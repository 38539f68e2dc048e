package sat2d

import (
	"math"
	"slices"

	"github.com/akmonengine/sat2d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - coordinates of a grid cell
type CellKey struct {
	X, Y int
}

// Cell holds the indices of the polygons whose AABB touches it
type Cell struct {
	bodyIndices []int
}

// Pair - indices of two polygons that may collide, A < B
type Pair struct {
	A, B int
}

// SpatialGrid is a uniform hashed grid over the polygon AABBs.
// Hash collisions only add false candidates, filtered by the AABB test.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	seen       []bool
	candidates []int
}

// NewSpatialGrid creates a grid of cellSize wide cells, hashed over numCells buckets
// rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo rounds n up to a power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body index to every cell its AABB touches
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.Polygon) {
	sg.visitCells(body.AABB(), func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

// FindPairs returns the pairs of inserted polygons accepted by accept and whose AABBs
// overlap, sorted by A then B. accept runs before the AABB test; nil accepts every pair.
// bodies must be the slice whose indices were inserted.
func (sg *SpatialGrid) FindPairs(bodies []*actor.Polygon, accept func(a, b int) bool) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	if cap(sg.seen) < len(bodies) {
		sg.seen = make([]bool, len(bodies))
	}
	seen := sg.seen[:len(bodies)]

	for bodyIdx, bodyA := range bodies {
		sg.candidates = sg.candidates[:0]

		sg.visitCells(bodyA.AABB(), func(cellIdx int) {
			for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
				// Avoid duplicates (A,B) and (B,A)
				if otherIdx <= bodyIdx || seen[otherIdx] {
					continue
				}
				seen[otherIdx] = true
				sg.candidates = append(sg.candidates, otherIdx)
			}
		})

		// Deterministic order, whatever the cells visited first
		slices.Sort(sg.candidates)
		for _, otherIdx := range sg.candidates {
			seen[otherIdx] = false
			if accept != nil && !accept(bodyIdx, otherIdx) {
				continue
			}
			if BroadPhase(bodyA, bodies[otherIdx]) {
				pairs = append(pairs, Pair{A: bodyIdx, B: otherIdx})
			}
		}
	}

	return pairs
}

func (sg *SpatialGrid) visitCells(aabb actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			fn(sg.hashCell(CellKey{x, y}))
		}
	}
}

// worldToCell converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
	}
}

// hashCell maps a cell to its bucket
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663)
	return h & sg.cellMask
}
