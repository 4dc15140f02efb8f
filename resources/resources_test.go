// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resources

import (
	"math"
	"testing"
)

func TestPassResolution(t *testing.T) {
	tests := []struct {
		name       string
		camW, camH int
		half       bool
		w, h       int
	}{
		{"full", 800, 600, false, 800, 600},
		{"half even", 800, 600, true, 400, 300},
		{"half odd floors", 801, 601, true, 400, 300},
		{"half small", 3, 3, true, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := PassResolution(tt.camW, tt.camH, tt.half)
			if w != tt.w || h != tt.h {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestDimensionsUniformBytes(t *testing.T) {
	d := NewDimensions(800, 600)
	buf := d.UniformBytes()

	words := [4]float32{800, 600, 1.0 / 800, 1.0 / 600}
	for i, want := range words {
		got := math.Float32frombits(
			uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24)
		if math.Abs(float64(got-want)) > 1e-12 {
			t.Errorf("word %d: got %v, want %v", i, got, want)
		}
	}
}

func TestEnsureIdempotent(t *testing.T) {
	var b Bundle
	b.Ensure(800, 600, false)
	b.Ensure(800, 600, false)
	if got := b.Allocations(); got != 1 {
		t.Errorf("unchanged config: %d allocations, want 1", got)
	}
	if w, h := b.Size(); w != 800 || h != 600 {
		t.Errorf("size %dx%d, want 800x600", w, h)
	}
}

func TestEnsureRecreatesOnHalfResToggle(t *testing.T) {
	var b Bundle
	b.Ensure(800, 600, false)
	b.Ensure(800, 600, true)
	if w, h := b.Size(); w != 400 || h != 300 {
		t.Errorf("half-res size %dx%d, want 400x300", w, h)
	}
	if got := b.Allocations(); got != 2 {
		t.Errorf("%d allocations after toggle, want 2", got)
	}

	fa, fb := b.Fields()
	if fa.W != 400 || fa.H != 300 || fb.W != 400 || fb.H != 300 {
		t.Errorf("field sizes %dx%d / %dx%d, want 400x300", fa.W, fa.H, fb.W, fb.H)
	}
	if len(b.Mask()) != 400*300 {
		t.Errorf("mask len %d, want %d", len(b.Mask()), 400*300)
	}
}

func TestEnsureRecreatesOnResize(t *testing.T) {
	var b Bundle
	b.Ensure(640, 480, false)
	b.Ensure(1920, 1080, false)
	if got := b.Allocations(); got != 2 {
		t.Errorf("%d allocations after resize, want 2", got)
	}
	d := b.Dims()
	if d.Width != 1920 || d.Height != 1080 {
		t.Errorf("dims %dx%d, want 1920x1080", d.Width, d.Height)
	}
}

func TestMaskClearedPerFrame(t *testing.T) {
	var b Bundle
	b.Ensure(4, 4, false)
	m := b.Mask()
	m[5] = 255
	m = b.Mask()
	if m[5] != 0 {
		t.Error("mask not cleared between frames")
	}
}
