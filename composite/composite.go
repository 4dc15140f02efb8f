// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package composite paints the outline onto a camera's color target
// from a converged seed field.
//
// Every fragment looks up its nearest seed; fragments within the
// style weight of their seed are blended with source-over alpha,
// everything else is left untouched. The pass is specialized per
// target format through TargetKey.
package composite

import (
	"image"
	"math"

	"github.com/gogpu/jfa/flood"
)

// Params is the style uniform consumed by the pass: a linear RGBA
// color and the outline weight in full-resolution pixels.
type Params struct {
	Color  [4]float64
	Weight float64
}

// Pipeline is a composite pass specialized for one target
// configuration.
type Pipeline struct {
	key TargetKey
}

// NewPipeline creates a composite pipeline for the given target
// configuration. Invalid configurations (depth formats, targets that
// cannot be rendered into) fail here.
func NewPipeline(format Format, usage Usage) (*Pipeline, error) {
	key, err := NewTargetKey(format, usage)
	if err != nil {
		return nil, err
	}
	return &Pipeline{key: key}, nil
}

// Key returns the pipeline's specialization key.
func (p *Pipeline) Key() TargetKey { return p.key }

// Draw blends the outline into target. field is the converged seed
// field at pass resolution; scale maps pass-resolution distances
// back to full-resolution pixels (2 in half-resolution mode, else
// 1). The target keeps its own resolution; field texels are sampled
// at the target pixel's corresponding pass coordinate.
//
// A fragment is painted iff its seed distance, scaled to full
// resolution, is at most params.Weight. A weight of zero disables
// the outline entirely. Painted fragments blend color with
// (srcAlpha, 1-srcAlpha) and replace destination alpha with the
// source alpha; all other fragments are untouched.
func (p *Pipeline) Draw(field *flood.Field, params Params, scale float64, target *image.RGBA) {
	if field == nil || target == nil || params.Weight <= 0 {
		return
	}
	b := target.Bounds()
	tw, th := b.Dx(), b.Dy()
	if tw == 0 || th == 0 || field.W == 0 || field.H == 0 {
		return
	}

	srcA := clamp01(params.Color[3])
	sr := clamp01(params.Color[0]) * 255
	sg := clamp01(params.Color[1]) * 255
	sb := clamp01(params.Color[2]) * 255

	for ty := 0; ty < th; ty++ {
		// Map the target pixel to pass resolution.
		fy := ty * field.H / th
		for tx := 0; tx < tw; tx++ {
			fx := tx * field.W / tw
			sx, sy, ok := field.Seed(fx, fy)
			if !ok {
				continue
			}
			dx, dy := float64(fx-sx), float64(fy-sy)
			d := math.Sqrt(dx*dx+dy*dy) * scale
			if d > params.Weight {
				continue
			}
			i := target.PixOffset(b.Min.X+tx, b.Min.Y+ty)
			px := target.Pix[i : i+4 : i+4]
			px[0] = blend(sr, px[0], srcA)
			px[1] = blend(sg, px[1], srcA)
			px[2] = blend(sb, px[2], srcA)
			px[3] = uint8(srcA*255 + 0.5)
		}
	}
}

// blend applies source-over: src*a + dst*(1-a).
func blend(src float64, dst uint8, a float64) uint8 {
	v := src*a + float64(dst)*(1-a)
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
