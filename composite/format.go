// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package composite

import (
	"errors"
	"fmt"
)

// Format identifies a color target pixel format. The composite pass
// is specialized per format; formats that cannot serve as a render
// attachment are rejected when the pipeline is created.
type Format uint32

// Supported target formats.
const (
	FormatUndefined Format = iota
	FormatR8Unorm
	FormatRG16Snorm
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb
	FormatRGBA16Float
	FormatDepth24PlusStencil8
	FormatDepth32Float
)

// String returns the WebGPU-style name of the format.
func (f Format) String() string {
	switch f {
	case FormatR8Unorm:
		return "r8unorm"
	case FormatRG16Snorm:
		return "rg16snorm"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatBGRA8Unorm:
		return "bgra8unorm"
	case FormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case FormatRGBA16Float:
		return "rgba16float"
	case FormatDepth24PlusStencil8:
		return "depth24plus-stencil8"
	case FormatDepth32Float:
		return "depth32float"
	default:
		return "undefined"
	}
}

// IsDepth reports whether the format carries depth or stencil data.
func (f Format) IsDepth() bool {
	return f == FormatDepth24PlusStencil8 || f == FormatDepth32Float
}

// Usage is a texture capability bitmask.
type Usage uint32

// Usage bits.
const (
	UsageCopySrc Usage = 1 << iota
	UsageCopyDst
	UsageTextureBinding
	UsageRenderAttachment
)

// Pipeline configuration errors.
var (
	// ErrDepthFormat is returned when the composite target format is
	// a depth or stencil format.
	ErrDepthFormat = errors.New("composite: depth format cannot be an outline target")

	// ErrNotRenderable is returned when the target lacks render
	// attachment capability.
	ErrNotRenderable = errors.New("composite: target format lacks render attachment usage")

	// ErrUndefinedFormat is returned for the zero format value.
	ErrUndefinedFormat = errors.New("composite: undefined target format")
)

// TargetKey is the specialization key for a composite pipeline: the
// color format and usage of the camera target it renders into.
type TargetKey struct {
	Format Format
	Usage  Usage
}

// NewTargetKey validates a target configuration. Depth-only formats
// and targets without render attachment capability are configuration
// errors raised here, at pipeline creation, never per frame.
func NewTargetKey(format Format, usage Usage) (TargetKey, error) {
	if format == FormatUndefined {
		return TargetKey{}, ErrUndefinedFormat
	}
	if format.IsDepth() {
		return TargetKey{}, fmt.Errorf("%w: %s", ErrDepthFormat, format)
	}
	if usage&UsageRenderAttachment == 0 {
		return TargetKey{}, fmt.Errorf("%w: %s", ErrNotRenderable, format)
	}
	return TargetKey{Format: format, Usage: usage}, nil
}
