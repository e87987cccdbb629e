// ABOUTME: Tests for the scrub render engine
// ABOUTME: Covers pass-through, silence, direct jumps, stall extrapolation and clamping
package scrub

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// rampSource returns a buffer whose sample value is frame index + 1, so a
// zero output always means silence and value-1 recovers the source frame.
func rampSource(t *testing.T, frames, channels int) *audio.SourceBuffer {
	t.Helper()
	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, frames)
		for i := range planar[ch] {
			planar[ch][i] = float32(i + 1)
		}
	}
	buf, err := audio.NewSourceBuffer(48000, planar)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return buf
}

func constSource(t *testing.T, frames int, value float32) *audio.SourceBuffer {
	t.Helper()
	data := make([]float32, frames)
	for i := range data {
		data[i] = value
	}
	buf, err := audio.NewSourceBuffer(48000, [][]float32{data})
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return buf
}

func newBlock(channels, frames int) [][]float32 {
	block := make([][]float32, channels)
	for ch := range block {
		block[ch] = make([]float32, frames)
	}
	return block
}

func newEngine(t *testing.T, interp Interpolation) *Engine {
	t.Helper()
	e, err := NewEngine(Config{SampleRate: 48000, Interpolation: interp})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

// park runs one pass-through block so the engine's position is playhead.
func park(e *Engine, src *audio.SourceBuffer, playhead, frames int) {
	in := newBlock(src.Channels(), frames)
	out := newBlock(src.Channels(), frames)
	e.RenderBlock(ControlInput{LivePlayhead: playhead}, src, in, out, frames)
}

func isSilent(block [][]float32) bool {
	for _, ch := range block {
		for _, v := range ch {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(Config{SampleRate: 44100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := e.Config()
	if cfg.StallWindow != DefaultStallWindow {
		t.Errorf("expected stall window %v, got %v", DefaultStallWindow, cfg.StallWindow)
	}
	if cfg.MinVelocity != 25 || cfg.MaxVelocity != 400 || cfg.VelocityScale != 100 {
		t.Errorf("unexpected velocity band: %+v", cfg)
	}
	if e.StallLimit() != 8820 {
		t.Errorf("expected stall limit 8820, got %d", e.StallLimit())
	}
	if e.State().Direction != Forward {
		t.Errorf("expected forward direction, got %v", e.State().Direction)
	}
}

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero sample rate", Config{}},
		{"negative stall window", Config{SampleRate: 48000, StallWindow: -time.Second}},
		{"inverted band", Config{SampleRate: 48000, MinVelocity: 300, MaxVelocity: 200}},
		{"negative scale", Config{SampleRate: 48000, VelocityScale: -1}},
		{"unknown interpolation", Config{SampleRate: 48000, Interpolation: Interpolation(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if e != nil {
				t.Error("expected nil engine on error")
			}
		})
	}
}

func TestPassThroughIdentity(t *testing.T) {
	src := rampSource(t, 1000, 2)
	e := newEngine(t, InterpolationLinear)
	rng := rand.New(rand.NewSource(1))

	for block := 0; block < 5; block++ {
		in := newBlock(2, 256)
		for ch := range in {
			for i := range in[ch] {
				in[ch][i] = rng.Float32()*2 - 1
			}
		}
		out := newBlock(2, 256)

		e.RenderBlock(ControlInput{LivePlayhead: 300 + block}, src, in, out, 256)

		for ch := range in {
			for i := range in[ch] {
				if out[ch][i] != in[ch][i] {
					t.Fatalf("block %d ch %d frame %d: expected %v, got %v", block, ch, i, in[ch][i], out[ch][i])
				}
			}
		}
		if e.State().LastPosition != 300+block {
			t.Errorf("expected position %d, got %d", 300+block, e.State().LastPosition)
		}
	}
}

func TestPassThroughClampsPlayhead(t *testing.T) {
	src := rampSource(t, 1000, 1)
	e := newEngine(t, InterpolationLinear)

	park(e, src, 5000, 16)
	if got := e.State().LastPosition; got != 999 {
		t.Errorf("expected clamped position 999, got %d", got)
	}

	park(e, src, -20, 16)
	if got := e.State().LastPosition; got != 0 {
		t.Errorf("expected clamped position 0, got %d", got)
	}
}

func TestStationaryTargetIsSilent(t *testing.T) {
	src := rampSource(t, 4000, 2)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 500, 128)

	in := newBlock(2, 128)
	out := newBlock(2, 128)
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = 42
		}
	}

	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 500, RawVelocity: 100}, src, in, out, 128)

	if !isSilent(out) {
		t.Error("expected silent block for stationary target")
	}
	st := e.State()
	if st.LastPosition != 500 {
		t.Errorf("expected position 500, got %d", st.LastPosition)
	}
	if !st.ReachedTarget {
		t.Error("expected reachedTarget after silent block")
	}
}

func TestDirectJumpForward(t *testing.T) {
	src := rampSource(t, 4000, 2)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 1000, 501)

	in := newBlock(2, 501)
	out := newBlock(2, 501)
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 2000}, src, in, out, 501)

	st := e.State()
	if st.Stride != 2.0 {
		t.Fatalf("expected stride 2.0, got %v", st.Stride)
	}
	for ch := range out {
		for i, v := range out[ch] {
			want := float32(1000 + 2*i + 1)
			if v != want {
				t.Fatalf("ch %d frame %d: expected source frame %v, got %v", ch, i, want-1, v-1)
			}
		}
	}
	if st.LastPosition != 2000 {
		t.Errorf("expected position 2000, got %d", st.LastPosition)
	}
	if !st.ReachedTarget {
		t.Error("expected reachedTarget")
	}
	if st.Direction != Forward {
		t.Errorf("expected forward, got %v", st.Direction)
	}
}

func TestDirectJumpBackward(t *testing.T) {
	src := rampSource(t, 4000, 1)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 2000, 501)

	in := newBlock(1, 501)
	out := newBlock(1, 501)
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 1000}, src, in, out, 501)

	st := e.State()
	if st.Stride != -2.0 {
		t.Fatalf("expected stride -2.0, got %v", st.Stride)
	}
	for i, v := range out[0] {
		want := float32(2000 - 2*i + 1)
		if v != want {
			t.Fatalf("frame %d: expected %v, got %v", i, want, v)
		}
	}
	if st.LastPosition != 1000 || !st.ReachedTarget {
		t.Errorf("expected to land on 1000, got %d (reached %v)", st.LastPosition, st.ReachedTarget)
	}
	if st.Direction != Backward {
		t.Errorf("expected backward, got %v", st.Direction)
	}
}

func TestFractionalStrideInterpolates(t *testing.T) {
	src := rampSource(t, 100, 1)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 10, 5)

	in := newBlock(1, 5)
	out := newBlock(1, 5)
	// stride 0.5: positions 10, 10.5, 11, 11.5, 12
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 12}, src, in, out, 5)

	want := []float32{11, 11.5, 12, 12.5, 13}
	for i := range want {
		if out[0][i] != want[i] {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], out[0][i])
		}
	}
}

func TestFractionalStrideNearest(t *testing.T) {
	src := rampSource(t, 100, 1)
	e := newEngine(t, InterpolationNone)
	park(e, src, 12, 5)

	in := newBlock(1, 5)
	out := newBlock(1, 5)
	// stride -0.5: positions 12, 11.5, 11, 10.5, 10; backward travel ceils
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 10}, src, in, out, 5)

	want := []float32{13, 13, 12, 12, 11}
	for i := range want {
		if out[0][i] != want[i] {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], out[0][i])
		}
	}
}

func TestStallExtrapolatesThenMutes(t *testing.T) {
	const frames = 480
	src := constSource(t, 200000, 0.5)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 10000, frames)

	in := newBlock(1, frames)
	out := newBlock(1, frames)
	ctl := ControlInput{Scrubbing: true, RawTarget: 10480, RawVelocity: 100}
	e.RenderBlock(ctl, src, in, out, frames)
	if e.State().LastPosition != 10480 {
		t.Fatalf("expected position 10480 after direct move, got %d", e.State().LastPosition)
	}

	limit := e.StallLimit()
	if limit != 9600 {
		t.Fatalf("expected stall limit 9600, got %d", limit)
	}

	audible := 0
	for block := 0; block < limit/frames+5; block++ {
		before := e.State().LastPosition
		e.RenderBlock(ctl, src, in, out, frames)
		st := e.State()
		if isSilent(out) {
			if st.LastPosition != before {
				t.Fatalf("block %d: silent block moved position %d -> %d", block, before, st.LastPosition)
			}
			continue
		}
		if audible != block {
			t.Fatalf("block %d: audio resumed after muting", block)
		}
		if st.LastPosition != before+frames-1 {
			t.Errorf("block %d: expected position %d, got %d", block, before+frames-1, st.LastPosition)
		}
		audible++
	}

	if got := audible * frames; got != limit {
		t.Errorf("expected %d frames of extrapolated audio, got %d", limit, got)
	}

	// moving the target again wakes the engine up
	ctl.RawTarget = e.State().LastPosition + 1000
	e.RenderBlock(ctl, src, in, out, frames)
	if isSilent(out) {
		t.Error("expected audio after the gesture moved again")
	}
	if e.State().StalledFrames != 0 {
		t.Errorf("expected stall counter reset, got %d", e.State().StalledFrames)
	}
}

func TestStallKeepsDirection(t *testing.T) {
	src := rampSource(t, 20000, 1)
	e := newEngine(t, InterpolationNone)
	park(e, src, 10000, 100)

	in := newBlock(1, 100)
	out := newBlock(1, 100)
	ctl := ControlInput{Scrubbing: true, RawTarget: 9000, RawVelocity: 200}
	e.RenderBlock(ctl, src, in, out, 100)
	e.RenderBlock(ctl, src, in, out, 100)

	st := e.State()
	if st.Direction != Backward {
		t.Fatalf("expected backward, got %v", st.Direction)
	}
	if st.Stride != -2 {
		t.Errorf("expected stride -2, got %v", st.Stride)
	}
	if st.LastPosition != 9000-198 {
		t.Errorf("expected position %d, got %d", 9000-198, st.LastPosition)
	}
}

func TestVelocityClamp(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		expected float64
	}{
		{"below floor", 5, 0.25},
		{"above ceiling", 1000, 4.0},
		{"inside band", 150, 1.5},
		{"negative magnitude", -1000, 4.0},
		{"nan", math.NaN(), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := rampSource(t, 50000, 1)
			e := newEngine(t, InterpolationLinear)
			park(e, src, 1000, 64)

			in := newBlock(1, 64)
			out := newBlock(1, 64)
			ctl := ControlInput{Scrubbing: true, RawTarget: 1100, RawVelocity: tt.velocity}
			e.RenderBlock(ctl, src, in, out, 64)
			e.RenderBlock(ctl, src, in, out, 64)

			if got := e.State().Stride; got != tt.expected {
				t.Errorf("expected stride %v, got %v", tt.expected, got)
			}
			if got := e.Config().StrideForVelocity(tt.velocity); got != tt.expected {
				t.Errorf("expected StrideForVelocity %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBoundsAndDirectionConsistency(t *testing.T) {
	const n = 5000
	src := rampSource(t, n, 2)
	e := newEngine(t, InterpolationNone)
	rng := rand.New(rand.NewSource(7))
	park(e, src, n/2, 256)

	in := newBlock(2, 256)
	out := newBlock(2, 256)
	target := n / 2
	for block := 0; block < 2000; block++ {
		// mix of moves, holds and out-of-range requests
		switch rng.Intn(4) {
		case 0, 1:
			target += rng.Intn(3000) - 1500
		case 2:
			target = rng.Intn(3*n) - n
		}
		frames := 1 + rng.Intn(256)
		ctl := ControlInput{Scrubbing: true, RawTarget: target, RawVelocity: rng.Float64() * 600}

		e.RenderBlock(ctl, src, in, out, frames)
		st := e.State()

		if st.LastPosition < 0 || st.LastPosition >= n {
			t.Fatalf("block %d: position %d out of range", block, st.LastPosition)
		}
		if st.TargetPosition < 0 || st.TargetPosition >= n {
			t.Fatalf("block %d: target %d out of range", block, st.TargetPosition)
		}
		for i := 0; i < frames; i++ {
			v := out[0][i]
			if v == 0 {
				continue
			}
			offset := int(v) - 1
			if offset < 0 || offset >= n {
				t.Fatalf("block %d frame %d: read offset %d out of range", block, i, offset)
			}
			if st.Stride > 0 && offset > st.TargetPosition {
				t.Fatalf("block %d frame %d: offset %d overshoots target %d", block, i, offset, st.TargetPosition)
			}
			if st.Stride < 0 && offset < st.TargetPosition {
				t.Fatalf("block %d frame %d: offset %d undershoots target %d", block, i, offset, st.TargetPosition)
			}
			if out[1][i] != v {
				t.Fatalf("block %d frame %d: channels disagree", block, i)
			}
		}
	}
}

func TestPartialProgressAtBufferEnd(t *testing.T) {
	const n = 1000
	src := rampSource(t, n, 1)
	e := newEngine(t, InterpolationNone)
	park(e, src, n-110, 64)

	in := newBlock(1, 64)
	out := newBlock(1, 64)
	ctl := ControlInput{Scrubbing: true, RawTarget: n - 100, RawVelocity: 400}
	e.RenderBlock(ctl, src, in, out, 64)

	// stalled: stride 4 runs off the end of the buffer
	e.RenderBlock(ctl, src, in, out, 64)
	st := e.State()
	if st.TargetPosition != n-1 {
		t.Fatalf("expected target clamped to %d, got %d", n-1, st.TargetPosition)
	}
	if st.ReachedTarget {
		t.Error("expected partial progress")
	}
	if st.LastPosition != n-4 {
		t.Errorf("expected position %d, got %d", n-4, st.LastPosition)
	}
	if out[0][63] != 0 {
		t.Errorf("expected silence past the end of the buffer, got %v", out[0][63])
	}
}

func TestSingleFrameBlocks(t *testing.T) {
	src := rampSource(t, 100, 1)
	e := newEngine(t, InterpolationLinear)
	park(e, src, 10, 1)

	in := newBlock(1, 1)
	out := newBlock(1, 1)
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 13}, src, in, out, 1)

	if out[0][0] != 14 {
		t.Errorf("expected the target frame to be read, got %v", out[0][0]-1)
	}
	if e.State().LastPosition != 13 {
		t.Errorf("expected position 13, got %d", e.State().LastPosition)
	}
}

func TestNewGestureIgnoresOldTarget(t *testing.T) {
	src := rampSource(t, 10000, 1)
	e := newEngine(t, InterpolationLinear)
	in := newBlock(1, 100)
	out := newBlock(1, 100)

	park(e, src, 1000, 100)
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 2000}, src, in, out, 100)

	// playback continues elsewhere, then a new gesture starts at the same raw target
	park(e, src, 5000, 100)
	e.RenderBlock(ControlInput{Scrubbing: true, RawTarget: 2000}, src, in, out, 100)

	st := e.State()
	if st.StalledFrames != 0 {
		t.Errorf("expected a fresh gesture, got %d stalled frames", st.StalledFrames)
	}
	if st.LastPosition != 2000 {
		t.Errorf("expected position 2000, got %d", st.LastPosition)
	}
}

func TestGeometryMismatchPanics(t *testing.T) {
	src := rampSource(t, 100, 2)
	e := newEngine(t, InterpolationLinear)

	tests := []struct {
		name   string
		in     [][]float32
		out    [][]float32
		frames int
	}{
		{"channel mismatch", newBlock(1, 16), newBlock(1, 16), 16},
		{"short block", newBlock(2, 8), newBlock(2, 8), 16},
		{"zero frames", newBlock(2, 8), newBlock(2, 8), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			e.RenderBlock(ControlInput{}, src, tt.in, tt.out, tt.frames)
		})
	}
}

func TestResetParksEngine(t *testing.T) {
	e := newEngine(t, InterpolationLinear)
	e.Reset(777)

	st := e.State()
	if st.LastPosition != 777 || st.TargetPosition != 777 {
		t.Errorf("expected parked at 777, got %+v", st)
	}
	if !st.ReachedTarget {
		t.Error("expected reachedTarget after reset")
	}
}

func TestDirectionString(t *testing.T) {
	if Forward.String() != "forward" || Backward.String() != "backward" {
		t.Errorf("unexpected names: %s, %s", Forward, Backward)
	}
}
