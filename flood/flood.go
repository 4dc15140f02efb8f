// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package flood implements the jump flooding algorithm over a
// two-channel seed field.
//
// Each texel of a Field stores the coordinate of its nearest known
// seed texel, encoded as a pair of 16-bit signed-normalized values,
// or a sentinel meaning "no seed known yet". Seed Init converts a
// coverage mask into an initial field; Converge then propagates the
// nearest seed to every texel in ceil(log2(maxdim)) iterations with
// geometrically shrinking sample offsets.
package flood

import "math"

// snormOne is the raw value encoding +1.0 in 16-bit signed-normalized
// form. -snormOne encodes -1.0.
const snormOne = 32767

// Sentinel is the raw channel value marking a texel with no known
// seed. Legitimate coordinate encodings map pixel centers strictly
// inside (-1, 1), so the -1.0 extreme is unreachable by any in-frame
// coordinate and is reserved for "unknown".
const Sentinel int16 = -snormOne

// Field is a two-channel seed field at pass resolution. Texels are
// stored row-major, two int16 values per texel.
type Field struct {
	W, H   int
	Texels []int16
}

// NewField creates a field with every texel set to the sentinel.
func NewField(w, h int) *Field {
	f := &Field{W: w, H: h, Texels: make([]int16, 2*w*h)}
	for i := range f.Texels {
		f.Texels[i] = Sentinel
	}
	return f
}

// Raw returns the two raw channel values stored at texel (x, y).
func (f *Field) Raw(x, y int) (int16, int16) {
	i := 2 * (y*f.W + x)
	return f.Texels[i], f.Texels[i+1]
}

// setRaw stores the two raw channel values at texel (x, y).
func (f *Field) setRaw(x, y int, cx, cy int16) {
	i := 2 * (y*f.W + x)
	f.Texels[i] = cx
	f.Texels[i+1] = cy
}

// Seed returns the decoded seed texel coordinate stored at (x, y).
// ok is false if the texel holds the sentinel.
func (f *Field) Seed(x, y int) (sx, sy int, ok bool) {
	cx, cy := f.Raw(x, y)
	if cx == Sentinel && cy == Sentinel {
		return 0, 0, false
	}
	return decodeChannel(cx, f.W), decodeChannel(cy, f.H), true
}

// Encode maps the texel coordinate (x, y) in a w x h field to its
// raw two-channel encoding. The pixel center (x+0.5, y+0.5) is
// scaled into (-1, 1); the extremes of the signed-normalized range
// are never produced, keeping the sentinel distinguishable.
func Encode(x, y, w, h int) (int16, int16) {
	return encodeChannel(x, w), encodeChannel(y, h)
}

func encodeChannel(x, n int) int16 {
	v := (float64(x)+0.5)/float64(n)*2 - 1
	return int16(math.RoundToEven(v * snormOne))
}

// decodeChannel inverts encodeChannel. The encoding quantizes pixel
// centers to under half a texel of error for any frame dimension the
// 16-bit range supports, so rounding recovers the texel index
// exactly.
func decodeChannel(c int16, n int) int {
	v := float64(c) / snormOne
	return int(math.Round((v+1)/2*float64(n) - 0.5))
}

// SeedInit writes the initial seed field for a coverage mask: texels
// whose mask value is at least threshold become their own seed,
// everything else gets the sentinel. mask is row-major, one byte per
// texel, and must cover dst.W x dst.H texels.
func SeedInit(mask []uint8, threshold uint8, dst *Field) {
	for y := 0; y < dst.H; y++ {
		for x := 0; x < dst.W; x++ {
			if mask[y*dst.W+x] >= threshold {
				cx, cy := Encode(x, y, dst.W, dst.H)
				dst.setRaw(x, y, cx, cy)
			} else {
				dst.setRaw(x, y, Sentinel, Sentinel)
			}
		}
	}
}

// Iterations returns the number of flood iterations for the given
// pass resolution: ceil(log2(max(w, h))).
func Iterations(w, h int) int {
	maxdim := w
	if h > maxdim {
		maxdim = h
	}
	if maxdim <= 1 {
		return 0
	}
	n := 0
	for p := 1; p < maxdim; p *= 2 {
		n++
	}
	return n
}

// StepSchedule returns the step size for every iteration: the first
// step is the smallest power of two at least max(w, h)/2, and each
// following step halves, with a floor of 1.
func StepSchedule(w, h int) []int {
	n := Iterations(w, h)
	if n == 0 {
		return nil
	}
	maxdim := w
	if h > maxdim {
		maxdim = h
	}
	step := 1
	for step*2 < maxdim {
		step *= 2
	}
	steps := make([]int, n)
	for i := range steps {
		steps[i] = step
		if step > 1 {
			step /= 2
		}
	}
	return steps
}

// candidateOffsets is the fixed enumeration order of the nine sample
// offsets, scaled by the iteration step. Ties in squared distance
// are broken by this order: the first candidate examined wins.
var candidateOffsets = [9][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Jump runs one flood iteration with the given step, reading src and
// writing dst. For every texel the nine candidates at offsets
// (0, 0), (±step, 0), (0, ±step), (±step, ±step) are examined;
// out-of-bounds and sentinel candidates are skipped; the candidate
// whose stored seed is nearest (squared Euclidean distance between
// texel coordinates) wins. src and dst must not alias and must have
// equal dimensions.
func Jump(src, dst *Field, step int) {
	w, h := src.W, src.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bestCX, bestCY := Sentinel, Sentinel
			bestD := math.MaxInt
			for _, off := range candidateOffsets {
				nx, ny := x+off[0]*step, y+off[1]*step
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				sx, sy, ok := src.Seed(nx, ny)
				if !ok {
					continue
				}
				dx, dy := x-sx, y-sy
				d := dx*dx + dy*dy
				if d < bestD {
					bestD = d
					bestCX, bestCY = src.Raw(nx, ny)
				}
			}
			dst.setRaw(x, y, bestCX, bestCY)
		}
	}
}

// Converge runs the full step schedule over the ping-pong pair,
// starting with a as the initial read buffer, and returns the buffer
// holding the converged field. Within an iteration the write buffer
// is never read; roles swap after every iteration.
func Converge(a, b *Field) *Field {
	read, write := a, b
	for _, step := range StepSchedule(a.W, a.H) {
		Jump(read, write, step)
		read, write = write, read
	}
	return read
}

// Distance returns the Euclidean distance from texel (x, y) to its
// recorded seed, in pass-resolution pixels. ok is false for sentinel
// texels.
func (f *Field) Distance(x, y int) (float64, bool) {
	sx, sy, ok := f.Seed(x, y)
	if !ok {
		return 0, false
	}
	dx, dy := float64(x-sx), float64(y-sy)
	return math.Sqrt(dx*dx + dy*dy), true
}
