// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mask rasterizes outline-eligible meshes into a per-camera
// coverage mask.
//
// The mask is a single-channel image at pass resolution. Writes are
// idempotent (a texel covered by any triangle is covered, no
// blending), so draw order never changes the result; draws are still
// sorted by view-space depth before submission as a submission
// heuristic.
package mask

import (
	"image"
	"image/draw"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"
)

// Mesh is indexed triangle geometry. Indices come in groups of
// three; each group addresses one triangle in Positions.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
}

// Draw is one queued mesh instance.
type Draw struct {
	Mesh  *Mesh
	Model mgl32.Mat4

	// sortKey is the view-space depth of the instance origin.
	sortKey float32
}

// Queue collects the eligible draws for one camera and one frame.
type Queue struct {
	draws []Draw
}

// Add queues a mesh instance. The sort key is the view-space depth
// of the instance's translation, the dot of the view matrix's third
// row with the model matrix's translation column.
func (q *Queue) Add(mesh *Mesh, model, view mgl32.Mat4) {
	q.draws = append(q.draws, Draw{
		Mesh:    mesh,
		Model:   model,
		sortKey: view.Row(2).Dot(model.Col(3)),
	})
}

// Len returns the number of queued draws.
func (q *Queue) Len() int { return len(q.draws) }

// Reset empties the queue for the next frame.
func (q *Queue) Reset() { q.draws = q.draws[:0] }

// Sort orders draws by ascending view-space depth key. The mask
// output is identical either way; sorting only shapes submission
// order.
func (q *Queue) Sort() {
	sort.SliceStable(q.draws, func(i, j int) bool {
		return q.draws[i].sortKey < q.draws[j].sortKey
	})
}

// Draws returns the queued draws in their current order.
func (q *Queue) Draws() []Draw { return q.draws }

// Rasterize renders every queued draw into dst, a row-major
// single-channel coverage buffer of w x h texels. Coverage is
// anti-aliased at triangle edges, the software analog of the GPU
// path's multisampled mask target and resolve.
//
// Triangles with any vertex at or behind the projection plane are
// skipped conservatively rather than clipped.
func (q *Queue) Rasterize(view, proj mgl32.Mat4, w, h int, dst []uint8) {
	if w <= 0 || h <= 0 || len(q.draws) == 0 {
		return
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	any := false

	viewProj := proj.Mul4(view)
	for i := range q.draws {
		d := &q.draws[i]
		mvp := viewProj.Mul4(d.Model)
		if rasterizeMesh(z, d.Mesh, mvp, w, h) {
			any = true
		}
	}
	if !any {
		return
	}

	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < h; y++ {
		row := cov.Pix[y*cov.Stride : y*cov.Stride+w]
		out := dst[y*w : y*w+w]
		for x, a := range row {
			if a > out[x] {
				out[x] = a
			}
		}
	}
}

// rasterizeMesh appends the mesh's screen-space triangles to the
// rasterizer path. Reports whether anything was emitted.
func rasterizeMesh(z *vector.Rasterizer, m *Mesh, mvp mgl32.Mat4, w, h int) bool {
	if m == nil || len(m.Indices) < 3 {
		return false
	}
	emitted := false
	var sx, sy [3]float32
	for i := 0; i+2 < len(m.Indices); i += 3 {
		behind := false
		for k := 0; k < 3; k++ {
			p := m.Positions[m.Indices[i+k]]
			clip := mvp.Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
			if clip.W() <= 1e-6 {
				behind = true
				break
			}
			ndcX := clip.X() / clip.W()
			ndcY := clip.Y() / clip.W()
			sx[k] = (ndcX + 1) * 0.5 * float32(w)
			sy[k] = (1 - ndcY) * 0.5 * float32(h)
		}
		if behind {
			continue
		}
		// Coverage accumulates signed winding; orient every triangle
		// counter-clockwise in screen space so back faces reinforce
		// instead of cancel.
		area := (sx[1]-sx[0])*(sy[2]-sy[0]) - (sx[2]-sx[0])*(sy[1]-sy[0])
		if area == 0 {
			continue
		}
		a, b, c := 0, 1, 2
		if area < 0 {
			b, c = 2, 1
		}
		z.MoveTo(sx[a], sy[a])
		z.LineTo(sx[b], sy[b])
		z.LineTo(sx[c], sy[c])
		z.ClosePath()
		emitted = true
	}
	return emitted
}
