// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package resources owns the per-camera intermediate buffers of the
// outline pipeline: the coverage mask and the seed field ping-pong
// pair, sized to the current pass resolution.
package resources

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gogpu/jfa/flood"
)

// Dimensions is the pass resolution exposed to every pipeline stage,
// with precomputed reciprocals for shader use.
type Dimensions struct {
	Width, Height       uint32
	InvWidth, InvHeight float32
}

// NewDimensions builds a Dimensions value for the given resolution.
func NewDimensions(w, h int) Dimensions {
	d := Dimensions{Width: uint32(w), Height: uint32(h)}
	if w > 0 {
		d.InvWidth = float32(1) / float32(w)
	}
	if h > 0 {
		d.InvHeight = float32(1) / float32(h)
	}
	return d
}

// UniformBytes returns the 16-byte GPU uniform encoding: width and
// height as 32-bit floats followed by their reciprocals, matching
// the shader-side struct layout.
func (d Dimensions) UniformBytes() [16]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(d.Width)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(d.Height)))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(d.InvWidth))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(d.InvHeight))
	return buf
}

// PassResolution derives the pass resolution from a camera's pixel
// resolution. Half-resolution mode halves each axis with floor
// rounding (800x600 becomes 400x300); the camera's own color target
// keeps its full resolution regardless.
func PassResolution(camW, camH int, halfRes bool) (int, int) {
	if !halfRes {
		return camW, camH
	}
	return camW / 2, camH / 2
}

// Bundle holds the allocated intermediate buffers for one active
// resolution configuration. Ensure rebuilds the whole set when the
// derived pass resolution changes and leaves it untouched otherwise;
// a pipeline run never observes a partially rebuilt bundle.
type Bundle struct {
	mu sync.Mutex

	width, height int
	mask          []uint8
	fieldA        *flood.Field
	fieldB        *flood.Field
	dims          Dimensions

	allocs uint64
}

// Ensure sizes the bundle for the given camera resolution and
// half-resolution setting. Buffers are recreated only when the
// derived pass resolution differs from the current one; repeated
// calls with an unchanged configuration perform no allocation.
func (b *Bundle) Ensure(camW, camH int, halfRes bool) {
	w, h := PassResolution(camW, camH, halfRes)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.width == w && b.height == h && b.mask != nil {
		return
	}

	// Build the replacement set completely before swapping it in.
	mask := make([]uint8, w*h)
	fa := flood.NewField(w, h)
	fb := flood.NewField(w, h)
	dims := NewDimensions(w, h)

	b.mask = mask
	b.fieldA = fa
	b.fieldB = fb
	b.dims = dims
	b.width = w
	b.height = h
	b.allocs++
}

// Size returns the current pass resolution.
func (b *Bundle) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// Dims returns the current Dimensions value.
func (b *Bundle) Dims() Dimensions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dims
}

// Mask returns the coverage mask buffer, cleared to zero for a new
// frame.
func (b *Bundle) Mask() []uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.mask {
		b.mask[i] = 0
	}
	return b.mask
}

// Fields returns the seed field ping-pong pair.
func (b *Bundle) Fields() (*flood.Field, *flood.Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fieldA, b.fieldB
}

// Allocations returns how many times the bundle has been built.
func (b *Bundle) Allocations() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocs
}
