// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu renders screen-space mesh outlines on the GPU through
// gogpu/wgpu/hal.
//
// The renderer mirrors the CPU reference path pass for pass: an MSAA
// mask rasterization resolved to a single-channel coverage texture, a
// seed init converting covered texels into a normalized-position flood
// field, a jump flood chain ping-ponging between two field textures,
// and an outline composite blended over the camera target. All four
// passes of a camera frame record into one command encoder with a
// single submit and fence wait.
//
// WGSL shader sources are embedded and compiled to SPIR-V through
// gogpu/naga at pipeline creation. Pipelines are memoized per target
// format, so steady-state frames compile nothing.
//
// The GPU device and queue come from the host application via
// FromProvider; the package never creates a device of its own.
package wgpu
