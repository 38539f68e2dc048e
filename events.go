package sat2d

import (
	"cmp"
	"slices"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type pairKey struct {
	handleA Handle
	handleB Handle
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(handleA, handleB Handle) pairKey {
	if handleB < handleA {
		handleA, handleB = handleB, handleA
	}

	return pairKey{handleA: handleA, handleB: handleB}
}

func comparePairKeys(a, b pairKey) int {
	if c := cmp.Compare(a.handleA, b.handleA); c != 0 {
		return c
	}
	return cmp.Compare(a.handleB, b.handleB)
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events. HandleA is always the lower handle of the pair.
type CollisionEnterEvent struct {
	HandleA Handle
	HandleB Handle
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	HandleA Handle
	HandleB Handle
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	HandleA Handle
	HandleB Handle
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Handle Handle
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Handle Handle
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events dispatches collision and sleep events at the end of each step
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool

	sleepStates map[Handle]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
		sleepStates:         make(map[Handle]bool),
	}
}

// init allocates the maps of a zero value Events
func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions marks every pair of the registry as active for this step
func (e *Events) recordCollisions(registry *Registry) {
	e.init()
	for i := range registry.Len() {
		face, contact := registry.Handles(i)
		e.currentActivePairs[makePairKey(face, contact)] = true
	}
}

// forget drops every state tracked for a destroyed polygon, without emitting events
func (e *Events) forget(handle Handle) {
	e.init()
	delete(e.sleepStates, handle)
	for pair := range e.previousActivePairs {
		if pair.handleA == handle || pair.handleB == handle {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.handleA == handle || pair.handleB == handle {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit.
// Events are buffered in handle order.
func (e *Events) processCollisionEvents() {
	current := sortedPairs(e.currentActivePairs)
	for _, pair := range current {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{HandleA: pair.handleA, HandleB: pair.handleB})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{HandleA: pair.handleA, HandleB: pair.handleB})
		}
	}

	previous := sortedPairs(e.previousActivePairs)
	for _, pair := range previous {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{HandleA: pair.handleA, HandleB: pair.handleB})
		}
	}

	// Swap for next step and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func sortedPairs(pairs map[pairKey]bool) []pairKey {
	keys := make([]pairKey, 0, len(pairs))
	for pair := range pairs {
		keys = append(keys, pair)
	}
	slices.SortFunc(keys, comparePairKeys)

	return keys
}

func (e *Events) processSleepEvents(bodies []entry) {
	e.init()
	for _, b := range bodies {
		sleeping := !b.body.IsAwake()
		trackedState, exists := e.sleepStates[b.handle]
		if !exists {
			e.sleepStates[b.handle] = sleeping
			continue
		}

		if !trackedState && sleeping {
			e.buffer = append(e.buffer, SleepEvent{Handle: b.handle})
			e.sleepStates[b.handle] = true
		} else if trackedState && !sleeping {
			e.buffer = append(e.buffer, WakeEvent{Handle: b.handle})
			e.sleepStates[b.handle] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.init()
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
