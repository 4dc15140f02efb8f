// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mask

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// quadMesh returns a unit quad in the z=0 plane centered at the
// origin, two triangles with consistent winding.
func quadMesh() *Mesh {
	return &Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// orthoCamera returns identity view and a symmetric orthographic
// projection mapping [-1,1]x[-1,1] to the full viewport.
func orthoCamera() (view, proj mgl32.Mat4) {
	return mgl32.Ident4(), mgl32.Ortho(-1, 1, -1, 1, -1, 1)
}

func TestRasterizeQuadCoverage(t *testing.T) {
	const w, h = 16, 16
	view, proj := orthoCamera()

	var q Queue
	q.Add(quadMesh(), mgl32.Ident4(), view)
	q.Sort()

	dst := make([]uint8, w*h)
	q.Rasterize(view, proj, w, h, dst)

	// The quad spans NDC [-0.5,0.5]^2, i.e. pixels [4,12)x[4,12).
	// Interior texels are fully covered, texels well outside are
	// untouched.
	if dst[8*w+8] != 255 {
		t.Errorf("interior texel coverage %d, want 255", dst[8*w+8])
	}
	if dst[1*w+1] != 0 {
		t.Errorf("exterior texel coverage %d, want 0", dst[1*w+1])
	}
	if dst[8*w+14] != 0 {
		t.Errorf("exterior texel coverage %d, want 0", dst[8*w+14])
	}
}

func TestRasterizeOrderIndependent(t *testing.T) {
	const w, h = 16, 16
	view, proj := orthoCamera()

	near := mgl32.Translate3D(0, 0, 0.2)
	far := mgl32.Translate3D(0.3, 0, -0.2)

	render := func(models []mgl32.Mat4) []uint8 {
		var q Queue
		for _, m := range models {
			q.Add(quadMesh(), m, view)
		}
		dst := make([]uint8, w*h)
		q.Rasterize(view, proj, w, h, dst)
		return dst
	}

	a := render([]mgl32.Mat4{near, far})
	b := render([]mgl32.Mat4{far, near})
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("texel %d differs across draw orders: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSortByViewDepth(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	var q Queue
	q.Add(quadMesh(), mgl32.Translate3D(0, 0, -3), view) // far
	q.Add(quadMesh(), mgl32.Translate3D(0, 0, 3), view)  // near
	q.Add(quadMesh(), mgl32.Translate3D(0, 0, 0), view)  // middle
	q.Sort()

	draws := q.Draws()
	for i := 1; i < len(draws); i++ {
		if draws[i-1].sortKey > draws[i].sortKey {
			t.Fatalf("draws not sorted by depth: key[%d]=%v > key[%d]=%v",
				i-1, draws[i-1].sortKey, i, draws[i].sortKey)
		}
	}
}

func TestRasterizeSkipsBehindCamera(t *testing.T) {
	const w, h = 8, 8
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)

	var q Queue
	q.Add(quadMesh(), mgl32.Translate3D(0, 0, 5), view) // behind the eye
	dst := make([]uint8, w*h)
	q.Rasterize(view, proj, w, h, dst)
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("texel %d covered by a mesh behind the camera (%d)", i, v)
		}
	}
}

func TestEmptyQueueNoOp(t *testing.T) {
	var q Queue
	dst := make([]uint8, 64)
	view, proj := orthoCamera()
	q.Rasterize(view, proj, 8, 8, dst)
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("texel %d written by empty queue (%d)", i, v)
		}
	}
}

func TestResetEmptiesQueue(t *testing.T) {
	var q Queue
	q.Add(quadMesh(), mgl32.Ident4(), mgl32.Ident4())
	if q.Len() != 1 {
		t.Fatalf("len %d after add, want 1", q.Len())
	}
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("len %d after reset, want 0", q.Len())
	}
}
