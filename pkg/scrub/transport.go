// ABOUTME: Shared transport state between control threads and the render thread
// ABOUTME: Every field is an independent atomic so reads never tear
package scrub

import (
	"math"
	"sync/atomic"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// ControlInput is a snapshot of the external control signal taken at the
// start of a block.
type ControlInput struct {
	Scrubbing    bool
	RawTarget    int
	RawVelocity  float64
	LivePlayhead int
}

// Transport is the shared "where are we" context. The control side writes
// the scrub flag, target, velocity and live playhead; the engine publishes
// its position. Each field is a single atomic word.
type Transport struct {
	scrubbing   atomic.Bool
	rawTarget   atomic.Int64
	rawVelocity atomic.Uint64
	playhead    atomic.Int64
	position    atomic.Int64
	source      atomic.Pointer[audio.SourceBuffer]
	closed      atomic.Bool
}

// NewTransport creates the transport for a loaded source buffer.
func NewTransport(src *audio.SourceBuffer) *Transport {
	t := &Transport{}
	t.source.Store(src)
	t.rawVelocity.Store(math.Float64bits(DefaultVelocityScale))
	return t
}

// SetScrubbing turns scrubbing on or off.
func (t *Transport) SetScrubbing(on bool) { t.scrubbing.Store(on) }

// Scrubbing reports whether scrubbing is enabled.
func (t *Transport) Scrubbing() bool { return t.scrubbing.Load() }

// SetTarget sets the raw scrub target frame.
func (t *Transport) SetTarget(frame int) { t.rawTarget.Store(int64(frame)) }

// Target returns the raw scrub target frame.
func (t *Transport) Target() int { return int(t.rawTarget.Load()) }

// SetVelocity sets the raw gesture velocity (100 = real time).
func (t *Transport) SetVelocity(v float64) { t.rawVelocity.Store(math.Float64bits(v)) }

// Velocity returns the raw gesture velocity.
func (t *Transport) Velocity() float64 { return math.Float64frombits(t.rawVelocity.Load()) }

// Move updates velocity then target for one gesture step.
func (t *Transport) Move(frame int, velocity float64) {
	t.SetVelocity(velocity)
	t.SetTarget(frame)
}

// SetPlayhead sets the live playhead used while not scrubbing.
func (t *Transport) SetPlayhead(frame int) { t.playhead.Store(int64(frame)) }

// Playhead returns the live playhead.
func (t *Transport) Playhead() int { return int(t.playhead.Load()) }

// AdvancePlayhead moves the live playhead by delta frames and returns the
// new value.
func (t *Transport) AdvancePlayhead(delta int) int {
	return int(t.playhead.Add(int64(delta)))
}

// Position returns the last position published by the engine. It is
// advisory: the render thread may already be past it.
func (t *Transport) Position() int { return int(t.position.Load()) }

func (t *Transport) publish(frame int) { t.position.Store(int64(frame)) }

// Source returns the current source buffer, or nil after Close.
func (t *Transport) Source() *audio.SourceBuffer {
	if t.closed.Load() {
		return nil
	}
	return t.source.Load()
}

// SwapSource installs a new source buffer and returns the previous one.
// The engine picks it up at the next block boundary.
func (t *Transport) SwapSource(src *audio.SourceBuffer) *audio.SourceBuffer {
	return t.source.Swap(src)
}

// Control snapshots the control input for one block.
func (t *Transport) Control() ControlInput {
	return ControlInput{
		Scrubbing:    t.scrubbing.Load(),
		RawTarget:    int(t.rawTarget.Load()),
		RawVelocity:  math.Float64frombits(t.rawVelocity.Load()),
		LivePlayhead: int(t.playhead.Load()),
	}
}

// Close tears the transport down. Blocks processed afterwards are silent.
func (t *Transport) Close() {
	t.closed.Store(true)
	t.scrubbing.Store(false)
}

// Closed reports whether Close has been called.
func (t *Transport) Closed() bool { return t.closed.Load() }
