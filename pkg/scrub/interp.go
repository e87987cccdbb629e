// ABOUTME: Position and interpolation helpers for the scrub walk
// ABOUTME: Direction-aware truncation, clamping and linear blending
package scrub

import "math"

// snapEpsilon absorbs float error when a stride lands on a whole frame.
const snapEpsilon = 1e-9

// frameAt truncates a fractional position to a frame index. Forward travel
// floors and backward travel ceils, so the index never runs ahead of p in
// the direction of travel.
func frameAt(p float64, dir Direction) int {
	if dir == Backward {
		return int(math.Ceil(p))
	}
	return int(math.Floor(p))
}

func snap(p float64) float64 {
	r := math.Round(p)
	if math.Abs(p-r) < snapEpsilon {
		return r
	}
	return p
}

func clampFrame(frame, frames int) int {
	if frame < 0 {
		return 0
	}
	if frame >= frames {
		return frames - 1
	}
	return frame
}

// blockSpan is the number of stride steps between a block's first and last
// frame.
func blockSpan(frameCount int) float64 {
	if frameCount < 2 {
		return 1
	}
	return float64(frameCount - 1)
}

func lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

func silence(out [][]float32, frameCount int) {
	for ch := range out {
		clear(out[ch][:frameCount])
	}
}
