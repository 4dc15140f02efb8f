// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

// Option configures an Outliner during creation.
//
// Example:
//
//	o := jfa.NewOutliner(
//	    jfa.WithHalfResolution(true),
//	)
type Option func(*Outliner)

// WithHalfResolution sets the initial state of the half-resolution
// toggle. When on, the mask and seed field stages run at half the
// camera resolution (floor rounded per axis); the camera's color
// target keeps its full resolution. Default off.
func WithHalfResolution(on bool) Option {
	return func(o *Outliner) {
		o.halfRes.Store(on)
	}
}

// WithMaskThreshold sets the coverage level at which a mask texel
// counts as covered during seed initialization. The default of 128
// seeds texels with majority coverage.
func WithMaskThreshold(threshold uint8) Option {
	return func(o *Outliner) {
		o.threshold = threshold
	}
}
