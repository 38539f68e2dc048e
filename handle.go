package sat2d

import (
	"fmt"

	"github.com/akmonengine/sat2d/actor"
)

// Handle is an opaque reference to a polygon owned by a World.
// The low 32 bits index a slot, the high 32 bits hold the slot generation, so a
// handle to a destroyed polygon stays invalid even once its slot is reused.
type Handle uint64

// InvalidHandle is never issued by a World
const InvalidHandle Handle = 0

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.index(), h.generation())
}

type slot struct {
	body       *actor.Polygon
	generation uint32
}

// arena stores polygons in slots; freed slots are reused with a new generation
type arena struct {
	slots []slot
	free  []uint32
	count int
}

func (a *arena) insert(body *actor.Polygon) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{generation: 1})
	}

	a.slots[index].body = body
	a.count++

	return makeHandle(index, a.slots[index].generation)
}

func (a *arena) get(h Handle) (*actor.Polygon, bool) {
	index := h.index()
	if int(index) >= len(a.slots) {
		return nil, false
	}

	s := a.slots[index]
	if s.body == nil || s.generation != h.generation() {
		return nil, false
	}

	return s.body, true
}

func (a *arena) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}

	s := &a.slots[h.index()]
	s.body = nil
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, h.index())
	a.count--

	return true
}

func (a *arena) len() int {
	return a.count
}

// each visits live polygons in slot order
func (a *arena) each(fn func(h Handle, body *actor.Polygon)) {
	for i, s := range a.slots {
		if s.body != nil {
			fn(makeHandle(uint32(i), s.generation), s.body)
		}
	}
}
