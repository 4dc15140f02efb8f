// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package jfa computes screen-space outlines around 3D meshes with
// the jump flooding algorithm.
//
// Per frame and per outline-enabled camera, the Outliner rasterizes
// eligible meshes into a coverage mask, seeds a nearest-pixel field
// from it, converges the field in ceil(log2(maxdim)) jump flood
// iterations, and composites a configurable-color, configurable-width
// outline onto the camera's color target.
//
// The core runs entirely on the CPU through this package; the
// backend/wgpu subpackage provides the hal-accelerated variant of
// the same four passes.
//
// Basic usage:
//
//	style := &jfa.Style{Color: jfa.RGB(1, 0, 0), Weight: 3}
//	o := jfa.NewOutliner()
//	err := o.RenderFrame(scene) // scene implements jfa.SceneProvider
//
// jfa produces no log output by default; see SetLogger.
package jfa
