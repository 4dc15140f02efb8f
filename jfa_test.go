// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/jfa/mask"
)

// staticScene is a SceneProvider over a fixed snapshot.
type staticScene struct {
	scene *Scene
}

func (s *staticScene) Snapshot() *Scene { return s.scene }

// quadMesh returns a unit quad in the z=0 plane.
func quadMesh() *mask.Mesh {
	return &mask.Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// testScene builds a single-camera scene with one outlined quad on a
// size x size target.
func testScene(size int, style *Style) *Scene {
	return &Scene{
		Cameras: []Camera{{
			ID:     1,
			View:   mgl32.Ident4(),
			Proj:   mgl32.Ortho(-1, 1, -1, 1, -1, 1),
			Width:  size,
			Height: size,
			Outline: CameraOutline{
				Enabled: true,
				Style:   style,
			},
			Target: image.NewRGBA(image.Rect(0, 0, size, size)),
		}},
		Meshes: []MeshInstance{{
			Mesh:      quadMesh(),
			Transform: mgl32.Ident4(),
			Outline:   true,
		}},
	}
}

func TestRenderFrameOutlinesQuad(t *testing.T) {
	style := &Style{Color: RGB(1, 0, 0), Weight: 3}
	scene := testScene(32, style)
	o := NewOutliner()
	if err := o.RenderFrame(&staticScene{scene}); err != nil {
		t.Fatal(err)
	}

	target := scene.Cameras[0].Target
	alphaAt := func(x, y int) uint8 {
		return target.Pix[target.PixOffset(x, y)+3]
	}

	// The quad covers pixels [8,24)^2. Pixels inside and within 3
	// pixels of the boundary band are painted; far corners are not.
	if alphaAt(16, 16) == 0 {
		t.Error("quad interior not painted")
	}
	if alphaAt(6, 16) == 0 {
		t.Error("pixel 2 outside the quad edge not painted")
	}
	if alphaAt(1, 1) != 0 {
		t.Error("far corner painted")
	}
	if r := target.Pix[target.PixOffset(6, 16)]; r != 255 {
		t.Errorf("outline red channel %d, want 255", r)
	}
}

func TestRenderFrameSkipConditions(t *testing.T) {
	style := &Style{Color: RGB(1, 0, 0), Weight: 3}
	tests := []struct {
		name string
		mut  func(*Scene)
	}{
		{"disabled binding", func(s *Scene) { s.Cameras[0].Outline.Enabled = false }},
		{"nil style", func(s *Scene) { s.Cameras[0].Outline.Style = nil }},
		{"nil target", func(s *Scene) { s.Cameras[0].Target = nil }},
		{"no eligible meshes", func(s *Scene) { s.Meshes[0].Outline = false }},
		{"nil mesh", func(s *Scene) { s.Meshes[0].Mesh = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := testScene(16, style)
			tt.mut(scene)
			o := NewOutliner()
			if err := o.RenderFrame(&staticScene{scene}); err != nil {
				t.Fatalf("skip condition errored: %v", err)
			}
			if target := scene.Cameras[0].Target; target != nil {
				for i, v := range target.Pix {
					if v != 0 {
						t.Fatalf("pix %d written (%d) on a skipped camera", i, v)
					}
				}
			}
		})
	}
}

func TestRenderFrameNilProvider(t *testing.T) {
	o := NewOutliner()
	if err := o.RenderFrame(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("err=%v, want ErrNilProvider", err)
	}
	if err := o.RenderFrame(&staticScene{nil}); !errors.Is(err, ErrNilSnapshot) {
		t.Errorf("err=%v, want ErrNilSnapshot", err)
	}
}

func TestRenderFrameInvalidStyle(t *testing.T) {
	style := &Style{Color: RGB(1, 0, 0), Weight: -1}
	o := NewOutliner()
	err := o.RenderFrame(&staticScene{testScene(16, style)})
	if !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("err=%v, want ErrNegativeWeight", err)
	}
}

func TestHalfResolutionToggle(t *testing.T) {
	style := &Style{Color: RGB(0, 1, 0), Weight: 2}
	o := NewOutliner(WithHalfResolution(true))
	if !o.HalfResolution() {
		t.Fatal("option did not enable half resolution")
	}

	scene := &Scene{
		Cameras: []Camera{{
			ID:      7,
			View:    mgl32.Ident4(),
			Proj:    mgl32.Ortho(-1, 1, -1, 1, -1, 1),
			Width:   800,
			Height:  600,
			Outline: CameraOutline{Enabled: true, Style: style},
			Target:  image.NewRGBA(image.Rect(0, 0, 800, 600)),
		}},
		Meshes: []MeshInstance{{Mesh: quadMesh(), Transform: mgl32.Ident4(), Outline: true}},
	}
	if err := o.RenderFrame(&staticScene{scene}); err != nil {
		t.Fatal(err)
	}

	b := o.bundle(7)
	if w, h := b.Size(); w != 400 || h != 300 {
		t.Errorf("half-res pass resolution %dx%d, want 400x300", w, h)
	}

	// Toggling off and rendering again recreates at full resolution.
	o.SetHalfResolution(false)
	if err := o.RenderFrame(&staticScene{scene}); err != nil {
		t.Fatal(err)
	}
	if w, h := b.Size(); w != 800 || h != 600 {
		t.Errorf("full-res pass resolution %dx%d, want 800x600", w, h)
	}
	if got := b.Allocations(); got != 2 {
		t.Errorf("%d bundle allocations across toggle, want 2", got)
	}
}

func TestBundleReusedAcrossFrames(t *testing.T) {
	style := &Style{Color: RGB(1, 1, 0), Weight: 1}
	scene := testScene(16, style)
	o := NewOutliner()
	for i := 0; i < 3; i++ {
		if err := o.RenderFrame(&staticScene{scene}); err != nil {
			t.Fatal(err)
		}
	}
	if got := o.bundle(1).Allocations(); got != 1 {
		t.Errorf("%d allocations over 3 identical frames, want 1", got)
	}
}

func TestStyleUniformMemoized(t *testing.T) {
	o := NewOutliner()
	s := Style{Color: RGB(1, 0, 0), Weight: 3}
	a := o.StyleUniform(s)
	b := o.StyleUniform(s)
	if a != b {
		t.Error("memoized uniforms differ")
	}

	// vec4 color then scalar weight, little-endian float32.
	if got := math.Float32frombits(uint32(a[0]) | uint32(a[1])<<8 | uint32(a[2])<<16 | uint32(a[3])<<24); got != 1 {
		t.Errorf("color.r = %v, want 1", got)
	}
	if got := math.Float32frombits(uint32(a[16]) | uint32(a[17])<<8 | uint32(a[18])<<16 | uint32(a[19])<<24); got != 3 {
		t.Errorf("weight = %v, want 3", got)
	}
}

func TestStyleValidate(t *testing.T) {
	if err := (Style{Weight: 0}).Validate(); err != nil {
		t.Errorf("zero weight: %v", err)
	}
	if err := (Style{Weight: -0.5}).Validate(); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("negative weight err=%v, want ErrNegativeWeight", err)
	}
	if err := (Style{Weight: math.NaN()}).Validate(); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("NaN weight err=%v, want ErrNegativeWeight", err)
	}
}

func TestSRGBConversion(t *testing.T) {
	c := SRGB(255, 0, 128)
	if c.R != 1 || c.A != 1 {
		t.Errorf("SRGB(255,0,128) = %+v", c)
	}
	// Mid sRGB gray decodes near 0.216 linear.
	if g := SRGB(128, 128, 128).G; math.Abs(g-0.2158) > 0.001 {
		t.Errorf("linear gray %v, want about 0.2158", g)
	}
}

func TestLerp(t *testing.T) {
	a, b := RGB(0, 0, 0), RGB(1, 1, 1)
	mid := a.Lerp(b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 || mid.A != 1 {
		t.Errorf("midpoint %+v", mid)
	}
}
