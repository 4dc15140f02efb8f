// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/jfa/mask"
)

// MeshInstance is one mesh placement in the scene snapshot. Outline
// marks the instance eligible for masking; ineligible instances are
// invisible to the pipeline.
type MeshInstance struct {
	Mesh      *mask.Mesh
	Transform mgl32.Mat4
	Outline   bool
}

// Camera is one view in the scene snapshot. Width and Height are the
// pixel resolution of Target, the camera's color output the outline
// is blended onto. The pass resolution may be half of it; Target
// always keeps its own resolution.
type Camera struct {
	ID     uint64
	View   mgl32.Mat4
	Proj   mgl32.Mat4
	Width  int
	Height int

	Outline CameraOutline
	Target  *image.RGBA
}

// Scene is a read-only per-frame snapshot of the external scene
// state the pipeline consumes: cameras with their outline bindings
// and the mesh instances visible this frame. The core never mutates
// a Scene.
type Scene struct {
	Cameras []Camera
	Meshes  []MeshInstance
}

// SceneProvider supplies the per-frame snapshot. The provider is the
// boundary to the host scene graph; Snapshot is called exactly once
// per RenderFrame and the returned Scene must stay unchanged until
// the call returns.
type SceneProvider interface {
	Snapshot() *Scene
}
