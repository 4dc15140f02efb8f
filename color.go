// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import "math"

// RGBA is a linear-space color with components in [0, 1]. Outline
// styles store linear colors; use SRGB to convert an 8-bit sRGB
// triple.
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque linear color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGBAOf creates a linear color with explicit alpha.
func RGBAOf(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// SRGB creates an opaque linear color from 8-bit sRGB components.
func SRGB(r, g, b uint8) RGBA {
	return RGBA{
		R: srgbToLinear(float64(r) / 255),
		G: srgbToLinear(float64(g) / 255),
		B: srgbToLinear(float64(b) / 255),
		A: 1,
	}
}

// srgbToLinear applies the sRGB electro-optical transfer function.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Lerp linearly interpolates between c and other by t in [0, 1].
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Vec4 returns the color as a 4-element array in RGBA order.
func (c RGBA) Vec4() [4]float64 {
	return [4]float64{c.R, c.G, c.B, c.A}
}
