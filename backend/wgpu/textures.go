// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maskSampleCount is the MSAA sample count of the mask pass. Edge
// coverage resolves to fractional values that the seed threshold
// interprets.
const maskSampleCount = 4

// Texture formats of the per-camera pass chain. The flood field stores
// normalized seed positions as two floats; RG32Float loads exactly in
// the jump shader without filtering concerns.
const (
	maskFormat  = gputypes.TextureFormatR8Unorm
	fieldFormat = gputypes.TextureFormatRG32Float
)

// textureSet holds the per-camera textures of the outline pass chain:
// an MSAA mask target with its single-sample resolve, and the two
// ping-pong flood field buffers. Mask and field textures share the
// pass resolution, which is half the camera resolution when half-res
// mode is on.
type textureSet struct {
	maskMSAATex  hal.Texture
	maskMSAAView hal.TextureView
	maskTex      hal.Texture
	maskView     hal.TextureView

	fieldTex  [2]hal.Texture
	fieldView [2]hal.TextureView

	width  uint32
	height uint32
}

// ensure creates or recreates the pass textures if the requested
// dimensions differ from the current size. A no-op when dimensions
// match and textures exist.
func (ts *textureSet) ensure(device hal.Device, w, h uint32) error {
	if ts.width == w && ts.height == h && ts.maskTex != nil {
		return nil
	}
	ts.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	maskMSAATex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "outline_mask_msaa",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   maskSampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        maskFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create mask MSAA texture: %w", err)
	}
	ts.maskMSAATex = maskMSAATex

	maskMSAAView, err := device.CreateTextureView(maskMSAATex, &hal.TextureViewDescriptor{
		Label: "outline_mask_msaa_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create mask MSAA view: %w", err)
	}
	ts.maskMSAAView = maskMSAAView

	maskTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "outline_mask",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        maskFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create mask resolve texture: %w", err)
	}
	ts.maskTex = maskTex

	maskView, err := device.CreateTextureView(maskTex, &hal.TextureViewDescriptor{
		Label: "outline_mask_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("create mask resolve view: %w", err)
	}
	ts.maskView = maskView

	for i := 0; i < 2; i++ {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         fmt.Sprintf("outline_field_%d", i),
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        fieldFormat,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("create field texture %d: %w", i, err)
		}
		ts.fieldTex[i] = tex

		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: fmt.Sprintf("outline_field_%d_view", i),
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("create field view %d: %w", i, err)
		}
		ts.fieldView[i] = view
	}

	ts.width = w
	ts.height = h
	return nil
}

// destroy releases all texture resources and resets dimensions. Safe
// to call on a partially created or empty set.
func (ts *textureSet) destroy(device hal.Device) {
	for i := 0; i < 2; i++ {
		if ts.fieldView[i] != nil {
			device.DestroyTextureView(ts.fieldView[i])
			ts.fieldView[i] = nil
		}
		if ts.fieldTex[i] != nil {
			device.DestroyTexture(ts.fieldTex[i])
			ts.fieldTex[i] = nil
		}
	}
	if ts.maskView != nil {
		device.DestroyTextureView(ts.maskView)
		ts.maskView = nil
	}
	if ts.maskTex != nil {
		device.DestroyTexture(ts.maskTex)
		ts.maskTex = nil
	}
	if ts.maskMSAAView != nil {
		device.DestroyTextureView(ts.maskMSAAView)
		ts.maskMSAAView = nil
	}
	if ts.maskMSAATex != nil {
		device.DestroyTexture(ts.maskMSAATex)
		ts.maskMSAATex = nil
	}
	ts.width = 0
	ts.height = 0
}
