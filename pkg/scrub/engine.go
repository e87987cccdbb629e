// ABOUTME: Scrub render engine: pass-through and scrubbing state machine
// ABOUTME: Turns target and velocity into a stride and walks the source buffer
package scrub

import (
	"fmt"
	"math"
	"time"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

const (
	// DefaultStallWindow is how long a stalled gesture keeps extrapolating
	DefaultStallWindow = 200 * time.Millisecond

	// Velocity band in gesture units; DefaultVelocityScale units = 1x stride
	DefaultMinVelocity   = 25.0
	DefaultMaxVelocity   = 400.0
	DefaultVelocityScale = 100.0
)

// Direction is the sign of the last nonzero movement.
type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Interpolation selects how fractional source positions are read.
type Interpolation int

const (
	// InterpolationLinear blends the read frame with its neighbour in the
	// direction of travel, weighted by the position's fractional part.
	InterpolationLinear Interpolation = iota
	// InterpolationNone reads the truncated frame as is.
	InterpolationNone
)

// Config holds engine configuration. Zero fields take defaults.
type Config struct {
	SampleRate    int
	StallWindow   time.Duration
	MinVelocity   float64
	MaxVelocity   float64
	VelocityScale float64
	Interpolation Interpolation
}

// State is the engine's position bookkeeping, owned by the render thread.
type State struct {
	LastPosition   int
	TargetPosition int
	Direction      Direction
	StalledFrames  int
	Stride         float64
	ReachedTarget  bool
}

// Engine renders one block per call. It never allocates, locks or returns
// errors; malformed block geometry panics.
type Engine struct {
	cfg        Config
	stallLimit int
	state      State

	// mode of the previous block, and the raw target it saw
	scrubbing     bool
	prevRawTarget int
	hasPrevTarget bool
}

// NewEngine creates an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("scrub sample rate must be > 0: %d", cfg.SampleRate)
	}
	if cfg.StallWindow == 0 {
		cfg.StallWindow = DefaultStallWindow
	}
	if cfg.MinVelocity == 0 {
		cfg.MinVelocity = DefaultMinVelocity
	}
	if cfg.MaxVelocity == 0 {
		cfg.MaxVelocity = DefaultMaxVelocity
	}
	if cfg.VelocityScale == 0 {
		cfg.VelocityScale = DefaultVelocityScale
	}
	if cfg.StallWindow < 0 {
		return nil, fmt.Errorf("stall window must be >= 0: %v", cfg.StallWindow)
	}
	if cfg.MinVelocity < 0 || cfg.MaxVelocity < cfg.MinVelocity {
		return nil, fmt.Errorf("velocity band must satisfy 0 <= min <= max: [%f, %f]",
			cfg.MinVelocity, cfg.MaxVelocity)
	}
	if cfg.VelocityScale < 0 || math.IsNaN(cfg.VelocityScale) || math.IsInf(cfg.VelocityScale, 0) {
		return nil, fmt.Errorf("velocity scale must be > 0: %f", cfg.VelocityScale)
	}
	if cfg.Interpolation != InterpolationLinear && cfg.Interpolation != InterpolationNone {
		return nil, fmt.Errorf("unknown interpolation: %d", cfg.Interpolation)
	}

	return &Engine{
		cfg:        cfg,
		stallLimit: int(math.Round(cfg.StallWindow.Seconds() * float64(cfg.SampleRate))),
		state:      State{Direction: Forward, ReachedTarget: true},
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// StallLimit returns the stall window in frames.
func (e *Engine) StallLimit() int { return e.stallLimit }

// State returns a copy of the engine state. Only the render thread may call it
// while blocks are being processed.
func (e *Engine) State() State { return e.state }

// Reset forgets gesture history and parks the engine at position.
func (e *Engine) Reset(position int) {
	e.state = State{
		LastPosition:   position,
		TargetPosition: position,
		Direction:      Forward,
		ReachedTarget:  true,
	}
	e.scrubbing = false
	e.hasPrevTarget = false
}

// StrideForVelocity clamps a raw gesture velocity into the supported band
// and converts it to a stride magnitude.
func (c Config) StrideForVelocity(v float64) float64 {
	v = math.Abs(v)
	if math.IsNaN(v) || v < c.MinVelocity {
		v = c.MinVelocity
	}
	if v > c.MaxVelocity {
		v = c.MaxVelocity
	}
	return v / c.VelocityScale
}

// Process renders one block from the transport's control snapshot and
// source, then publishes the resulting position back to the transport.
func (e *Engine) Process(t *Transport, in, out [][]float32, frameCount int) {
	e.ProcessControl(t, t.Control(), in, out, frameCount)
}

// ProcessControl is Process with a control snapshot the caller already
// took. Hosts that fill in or advance the playhead from the same snapshot
// use it so the host and the engine agree on the block's mode.
func (e *Engine) ProcessControl(t *Transport, ctl ControlInput, in, out [][]float32, frameCount int) {
	src := t.Source()
	if src == nil {
		silence(out, frameCount)
		return
	}
	e.RenderBlock(ctl, src, in, out, frameCount)
	t.publish(e.state.LastPosition)
}

// RenderBlock fills out[ch][:frameCount] either by copying in (scrubbing
// off) or by resampling src toward the scrub target (scrubbing on).
func (e *Engine) RenderBlock(ctl ControlInput, src *audio.SourceBuffer, in, out [][]float32, frameCount int) {
	checkGeometry(src, in, out, frameCount)

	if !ctl.Scrubbing {
		for ch := range out {
			copy(out[ch][:frameCount], in[ch][:frameCount])
		}
		e.state.LastPosition = src.Clamp(ctl.LivePlayhead)
		e.scrubbing = false
		return
	}

	if !e.scrubbing {
		// a new gesture: the first target counts as movement
		e.scrubbing = true
		e.hasPrevTarget = false
	}

	e.resolveTarget(ctl, src, frameCount)

	if e.state.TargetPosition == e.state.LastPosition || e.state.Stride == 0 {
		silence(out, frameCount)
		e.state.ReachedTarget = true
		return
	}

	e.walk(src, out, frameCount)
}

// resolveTarget picks this block's target and stride.
func (e *Engine) resolveTarget(ctl ControlInput, src *audio.SourceBuffer, frameCount int) {
	last := src.Clamp(e.state.LastPosition)
	e.state.LastPosition = last
	span := blockSpan(frameCount)

	if !e.hasPrevTarget || ctl.RawTarget != e.prevRawTarget {
		target := src.Clamp(ctl.RawTarget)
		e.state.TargetPosition = target
		e.state.StalledFrames = 0
		if target > last {
			e.state.Direction = Forward
		} else if target < last {
			e.state.Direction = Backward
		}
		e.state.Stride = float64(target-last) / span
	} else {
		if e.state.StalledFrames <= e.stallLimit {
			e.state.StalledFrames += frameCount
		}
		if e.state.StalledFrames <= e.stallLimit {
			stride := e.cfg.StrideForVelocity(ctl.RawVelocity) * float64(e.state.Direction)
			end := snap(float64(last) + stride*span)
			e.state.Stride = stride
			e.state.TargetPosition = src.Clamp(frameAt(end, e.state.Direction))
		} else {
			e.state.TargetPosition = last
			e.state.Stride = 0
		}
	}

	e.prevRawTarget = ctl.RawTarget
	e.hasPrevTarget = true
}

// walk resamples the source from LastPosition toward TargetPosition.
func (e *Engine) walk(src *audio.SourceBuffer, out [][]float32, frameCount int) {
	frames := src.Frames()
	stride := e.state.Stride
	target := e.state.TargetPosition
	dir := Forward
	if stride < 0 {
		dir = Backward
	}

	start := float64(e.state.LastPosition)
	// a one-frame block is both the start and the end of its walk
	offset := 0
	if frameCount == 1 {
		offset = 1
	}

	lastOut := -1
	for i := 0; i < frameCount; i++ {
		p := snap(start + float64(i+offset)*stride)
		idx := frameAt(p, dir)

		if idx < 0 || idx >= frames ||
			(dir == Forward && idx > target) || (dir == Backward && idx < target) {
			for ch := range out {
				out[ch][i] = 0
			}
			continue
		}

		next := clampFrame(idx+int(dir), frames)
		frac := float32(math.Abs(p - float64(idx)))
		if frac > 1 {
			frac = 1
		}
		for ch := range out {
			out[ch][i] = e.read(src.Channel(ch), idx, next, frac)
		}
		lastOut = idx
	}

	if lastOut >= 0 && lastOut != target {
		e.state.LastPosition = lastOut
		e.state.ReachedTarget = false
		return
	}
	e.state.LastPosition = target
	e.state.ReachedTarget = true
}

func (e *Engine) read(data []float32, idx, next int, frac float32) float32 {
	if e.cfg.Interpolation == InterpolationNone {
		return data[idx]
	}
	return lerp(data[idx], data[next], frac)
}

func checkGeometry(src *audio.SourceBuffer, in, out [][]float32, frameCount int) {
	if src == nil || src.Frames() < 1 {
		panic("scrub: source buffer is empty")
	}
	if frameCount < 1 {
		panic(fmt.Sprintf("scrub: frame count must be >= 1, got %d", frameCount))
	}
	if len(out) != src.Channels() || len(in) != src.Channels() {
		panic(fmt.Sprintf("scrub: channel mismatch (in %d, out %d, source %d)",
			len(in), len(out), src.Channels()))
	}
	for ch := range out {
		if len(out[ch]) < frameCount || len(in[ch]) < frameCount {
			panic(fmt.Sprintf("scrub: channel %d block shorter than %d frames", ch, frameCount))
		}
	}
}
