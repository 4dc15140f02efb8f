// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Style errors.
var (
	// ErrNegativeWeight is returned for styles with a negative
	// outline weight.
	ErrNegativeWeight = errors.New("jfa: outline weight must be non-negative")
)

// Style controls outline appearance: a linear color and a weight in
// full-resolution pixels. One style may be shared by any number of
// cameras; the value is immutable once handed to an Outliner.
type Style struct {
	Color  RGBA
	Weight float64
}

// Validate checks the style for configuration errors.
func (s Style) Validate() error {
	if s.Weight < 0 || math.IsNaN(s.Weight) {
		return fmt.Errorf("%w: %v", ErrNegativeWeight, s.Weight)
	}
	return nil
}

// styleUniformSize is the GPU uniform size for a style: a vec4 color
// followed by a scalar weight, padded to 16-byte alignment.
const styleUniformSize = 32

// UniformBytes returns the style's GPU uniform encoding: four 32-bit
// floats of linear color, one 32-bit float weight, and tail padding
// per std140 alignment.
func (s Style) UniformBytes() [styleUniformSize]byte {
	var buf [styleUniformSize]byte
	put := func(off int, v float64) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
	}
	put(0, s.Color.R)
	put(4, s.Color.G)
	put(8, s.Color.B)
	put(12, s.Color.A)
	put(16, s.Weight)
	return buf
}

// CameraOutline binds a camera to a style with an on/off flag. A
// disabled binding or a nil style skips the camera's outline chain
// for the frame.
type CameraOutline struct {
	Enabled bool
	Style   *Style
}
