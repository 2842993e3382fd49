// Package motion holds the one value shared between the physics loop and the
// render loop.
//
// State is a best-effort snapshot cell: position and velocity are each stored
// in their own 32-bit atomic word, so a reader never sees a half-written
// field. The pair as a whole is not published atomically. A reader racing a
// write may get the position of tick N with the velocity of tick N+1. The
// renderers are smooth in both fields, so such a torn pair costs at most one
// frame of slight jitter. Do not add a lock here: the render loop must never
// stall the physics loop. If either field is widened past one machine word
// this contract has to be revisited.
package motion

import (
	"math"
	"sync/atomic"
)

// float32 stored as raw bits.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (f *atomicFloat32) Store(v float32) { f.bits.Store(math.Float32bits(v)) }
func (f *atomicFloat32) Load() float32   { return math.Float32frombits(f.bits.Load()) }

type State struct {
	position atomicFloat32
	velocity atomicFloat32

	// written once in New, before any loop starts
	sourceAvailable bool
	trackLength     int
}

// Snapshot is a field-by-field copy of State. Position and Velocity may come
// from different ticks.
type Snapshot struct {
	Position        float32
	Velocity        float32
	SourceAvailable bool
}

// New returns a state resting at the middle of a track of trackLength
// elements.
func New(trackLength int, sourceAvailable bool) *State {
	s := &State{sourceAvailable: sourceAvailable, trackLength: trackLength}
	s.position.Store(float32(trackLength-1) / 2)
	return s
}

// Publish stores a new pair. Only the physics integrator calls it, and only
// with a position already inside [0, trackLength-1].
func (s *State) Publish(position, velocity float32) {
	s.position.Store(position)
	s.velocity.Store(velocity)
}

func (s *State) Position() float32 { return s.position.Load() }
func (s *State) Velocity() float32 { return s.velocity.Load() }

func (s *State) SourceAvailable() bool { return s.sourceAvailable }
func (s *State) TrackLength() int      { return s.trackLength }

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Position:        s.position.Load(),
		Velocity:        s.velocity.Load(),
		SourceAvailable: s.sourceAvailable,
	}
}
