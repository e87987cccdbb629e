// ABOUTME: Deck combines normal playback and scrubbing over one source buffer
// ABOUTME: Renders whole engine blocks and hands them out as PCM streams
package deck

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/Sendspin/scrub-go/pkg/scrub"
)

// DefaultBlockFrames is the engine block size used when Config leaves it zero
const DefaultBlockFrames = 512

// SkipSeconds is the jump taken by the player's skip keys
const SkipSeconds = 10

// Config holds deck configuration
type Config struct {
	BlockFrames int
	Loop        bool
	Title       string
	Engine      scrub.Config
}

// Status is a snapshot of the deck for UIs and remote controllers
type Status struct {
	Position   int
	Frames     int
	SampleRate int
	Channels   int
	Playing    bool
	Scrubbing  bool
	Velocity   float64
	Volume     int
	Muted      bool
	Title      string
}

// Deck plays a source buffer and lets controllers scrub through it
type Deck struct {
	config     Config
	sampleRate int
	channels   int

	transport *scrub.Transport
	engine    *scrub.Engine

	playing atomic.Bool
	volume  atomic.Int32
	muted   atomic.Bool

	// gesture clock for ScrubBy, unix nanoseconds of the last move
	lastMove atomic.Int64
	now      func() time.Time

	// render side, guarded by mu
	mu         sync.Mutex
	in, out    [][]float32
	pending    []float32
	pendingPos int
}

// New creates a deck for src
func New(src *audio.SourceBuffer, config Config) (*Deck, error) {
	if src == nil {
		return nil, fmt.Errorf("deck needs a source buffer")
	}
	if config.BlockFrames == 0 {
		config.BlockFrames = DefaultBlockFrames
	}
	if config.BlockFrames < 1 {
		return nil, fmt.Errorf("block frames must be > 0: %d", config.BlockFrames)
	}

	engineConfig := config.Engine
	engineConfig.SampleRate = src.SampleRate()
	engine, err := scrub.NewEngine(engineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	channels := src.Channels()
	d := &Deck{
		config:     config,
		sampleRate: src.SampleRate(),
		channels:   channels,
		transport:  scrub.NewTransport(src),
		engine:     engine,
		now:        time.Now,
		in:         makeBlock(channels, config.BlockFrames),
		out:        makeBlock(channels, config.BlockFrames),
		pending:    make([]float32, 0, channels*config.BlockFrames),
	}
	d.volume.Store(100)

	log.Printf("Deck ready: %d frames, %dHz, %d channels, block %d",
		src.Frames(), src.SampleRate(), channels, config.BlockFrames)

	return d, nil
}

func makeBlock(channels, frames int) [][]float32 {
	block := make([][]float32, channels)
	for ch := range block {
		block[ch] = make([]float32, frames)
	}
	return block
}

// Transport exposes the shared transport state
func (d *Deck) Transport() *scrub.Transport { return d.transport }

// SampleRate returns the output sample rate
func (d *Deck) SampleRate() int { return d.sampleRate }

// Channels returns the output channel count
func (d *Deck) Channels() int { return d.channels }

// Format describes the s16le stream produced by Read
func (d *Deck) Format() audio.Format {
	return audio.Format{
		Codec:      "pcm",
		SampleRate: d.sampleRate,
		Channels:   d.channels,
		BitDepth:   16,
	}
}

// Play starts normal playback. Playing from the end restarts at the top.
func (d *Deck) Play() {
	if src := d.transport.Source(); src != nil && d.transport.Playhead() >= src.Frames()-1 {
		d.transport.SetPlayhead(0)
	}
	d.playing.Store(true)
}

// Pause stops normal playback
func (d *Deck) Pause() { d.playing.Store(false) }

// Toggle flips between play and pause
func (d *Deck) Toggle() {
	if d.playing.Load() {
		d.Pause()
		return
	}
	d.Play()
}

// Playing reports whether normal playback is running
func (d *Deck) Playing() bool { return d.playing.Load() }

// Seek moves the playhead, clamped to the source
func (d *Deck) Seek(frame int) {
	if src := d.transport.Source(); src != nil {
		frame = src.Clamp(frame)
	}
	d.transport.SetPlayhead(frame)
}

// Skip jumps playback by seconds (negative skips back), clamped to the
// source. During a gesture it moves the scrub target instead, since the
// playhead is reset from the scrub position when the gesture ends.
func (d *Deck) Skip(seconds float64) {
	delta := int(math.Round(seconds * float64(d.sampleRate)))
	if d.transport.Scrubbing() {
		target := d.transport.Target() + delta
		if src := d.transport.Source(); src != nil {
			target = src.Clamp(target)
		}
		d.transport.Move(target, scrub.DefaultVelocityScale)
		d.lastMove.Store(d.now().UnixNano())
		return
	}
	d.Seek(d.transport.Playhead() + delta)
}

// SetVolume sets the volume (0-100)
func (d *Deck) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	d.volume.Store(int32(volume))
}

// Volume returns the current volume
func (d *Deck) Volume() int { return int(d.volume.Load()) }

// SetMuted sets mute state
func (d *Deck) SetMuted(muted bool) { d.muted.Store(muted) }

// Muted returns mute state
func (d *Deck) Muted() bool { return d.muted.Load() }

// BeginScrub starts a gesture at the current position
func (d *Deck) BeginScrub() {
	pos := d.transport.Playhead()
	if src := d.transport.Source(); src != nil {
		pos = src.Clamp(pos)
	}
	d.transport.Move(pos, scrub.DefaultVelocityScale)
	d.lastMove.Store(0)
	d.transport.SetScrubbing(true)
}

// ScrubTo moves the gesture to position with an explicit velocity
// (100 = real time). It begins a gesture when none is active.
func (d *Deck) ScrubTo(position int, velocity float64) {
	if !d.transport.Scrubbing() {
		d.BeginScrub()
	}
	d.transport.Move(position, velocity)
	d.lastMove.Store(d.now().UnixNano())
}

// ScrubBy moves the gesture by delta frames. The velocity is derived from
// how fast the gesture covered those frames since the previous move.
func (d *Deck) ScrubBy(delta int) {
	if !d.transport.Scrubbing() {
		d.BeginScrub()
	}

	now := d.now()
	velocity := scrub.DefaultVelocityScale
	if last := d.lastMove.Load(); last != 0 {
		elapsed := now.Sub(time.Unix(0, last)).Seconds()
		if elapsed > 0 {
			framesPerSecond := math.Abs(float64(delta)) / elapsed
			velocity = framesPerSecond / float64(d.sampleRate) * scrub.DefaultVelocityScale
		}
	}

	// keep the target on the source so reversing after an overshoot moves
	// back from the end rather than from somewhere past it
	target := d.transport.Target() + delta
	if src := d.transport.Source(); src != nil {
		target = src.Clamp(target)
	}
	d.transport.Move(target, velocity)
	d.lastMove.Store(now.UnixNano())
}

// EndScrub ends the gesture and continues normal playback from where the
// scrub left off
func (d *Deck) EndScrub() {
	if !d.transport.Scrubbing() {
		return
	}
	// playhead first: a block that sees scrubbing off must already see it
	pos := d.transport.Position()
	d.transport.SetPlayhead(pos)
	d.transport.SetScrubbing(false)
}

// Scrubbing reports whether a gesture is active
func (d *Deck) Scrubbing() bool { return d.transport.Scrubbing() }

// SwapSource replaces the source buffer. The new buffer must match the
// deck's sample rate and channel count; it takes effect at the next block.
func (d *Deck) SwapSource(src *audio.SourceBuffer) error {
	if src == nil {
		return fmt.Errorf("deck needs a source buffer")
	}
	if src.SampleRate() != d.sampleRate {
		return fmt.Errorf("sample rate mismatch: got %d, want %d", src.SampleRate(), d.sampleRate)
	}
	if src.Channels() != d.channels {
		return fmt.Errorf("channel mismatch: got %d, want %d", src.Channels(), d.channels)
	}
	d.transport.SwapSource(src)
	d.transport.SetPlayhead(src.Clamp(d.transport.Playhead()))
	log.Printf("Source swapped: %d frames", src.Frames())
	return nil
}

// Status returns a snapshot of the deck
func (d *Deck) Status() Status {
	frames := 0
	if src := d.transport.Source(); src != nil {
		frames = src.Frames()
	}
	return Status{
		Position:   d.transport.Position(),
		Frames:     frames,
		SampleRate: d.sampleRate,
		Channels:   d.channels,
		Playing:    d.playing.Load(),
		Scrubbing:  d.transport.Scrubbing(),
		Velocity:   d.transport.Velocity(),
		Volume:     d.Volume(),
		Muted:      d.Muted(),
		Title:      d.config.Title,
	}
}

// Read fills p with interleaved s16le samples. It implements io.Reader for
// device backends and returns io.EOF once the deck is closed.
func (d *Deck) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport.Closed() {
		return 0, io.EOF
	}

	n := 0
	for n+1 < len(p) {
		if d.pendingPos >= len(d.pending) {
			d.renderBlock()
		}
		sample := audio.FloatToInt16(d.pending[d.pendingPos])
		binary.LittleEndian.PutUint16(p[n:], uint16(sample))
		d.pendingPos++
		n += 2
	}
	return n, nil
}

// ReadFloat fills p with interleaved float32 samples
func (d *Deck) ReadFloat(p []float32) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport.Closed() {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		if d.pendingPos >= len(d.pending) {
			d.renderBlock()
		}
		c := copy(p[n:], d.pending[d.pendingPos:])
		d.pendingPos += c
		n += c
	}
	return n, nil
}

// Close tears down the transport. Further reads return io.EOF.
func (d *Deck) Close() error {
	d.playing.Store(false)
	d.transport.Close()
	log.Printf("Deck closed")
	return nil
}

// renderBlock runs one engine block and interleaves it into pending
func (d *Deck) renderBlock() {
	frames := d.config.BlockFrames
	src := d.transport.Source()
	ctl := d.transport.Control()
	playing := d.playing.Load() && !ctl.Scrubbing && src != nil

	if playing {
		d.fillLive(src, ctl.LivePlayhead, frames)
	} else {
		for ch := range d.in {
			clear(d.in[ch])
		}
	}

	d.engine.ProcessControl(d.transport, ctl, d.in, d.out, frames)

	if playing {
		d.advance(src, frames)
	}

	gain := float32(d.volume.Load()) / 100
	if d.muted.Load() {
		gain = 0
	}

	d.pending = d.pending[:frames*d.channels]
	for i := 0; i < frames; i++ {
		for ch := 0; ch < d.channels; ch++ {
			d.pending[i*d.channels+ch] = d.out[ch][i] * gain
		}
	}
	d.pendingPos = 0
}

// fillLive copies normal playback input starting at playhead
func (d *Deck) fillLive(src *audio.SourceBuffer, playhead, frames int) {
	total := src.Frames()
	for ch := range d.in {
		data := src.Channel(ch)
		for i := 0; i < frames; i++ {
			idx := playhead + i
			if d.config.Loop {
				idx %= total
			}
			if idx < 0 || idx >= total {
				d.in[ch][i] = 0
				continue
			}
			d.in[ch][i] = data[idx]
		}
	}
}

// advance moves the playhead after a normal playback block and handles
// the end of the source
func (d *Deck) advance(src *audio.SourceBuffer, frames int) {
	total := src.Frames()
	playhead := d.transport.AdvancePlayhead(frames)
	if playhead < total {
		return
	}
	if d.config.Loop {
		d.transport.SetPlayhead(playhead % total)
		return
	}
	d.transport.SetPlayhead(total - 1)
	d.playing.Store(false)
}
