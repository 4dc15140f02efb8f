// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/jfa/specialize"
)

// meshVertexStride is the byte stride per mask pass vertex: one
// position (vec3<f32>).
const meshVertexStride = 12

// Uniform buffer sizes, padded to 16-byte alignment.
const (
	maskUniformSize    = 64 // mvp: mat4x4<f32>
	initUniformSize    = 16 // inv_size + threshold + pad
	jumpUniformSize    = 16 // size + step + pad
	outlineUniformSize = 32 // color + weight + scale + pad
)

// pipelineSet owns the shader modules, bind group layouts, and
// specialized render pipelines of the four outline passes. Pipelines
// are memoized in a specialize.Cache keyed by their descriptor hash,
// so the outline pipeline is compiled once per camera target format
// and reused across frames.
type pipelineSet struct {
	device hal.Device

	maskShader    hal.ShaderModule
	initShader    hal.ShaderModule
	jumpShader    hal.ShaderModule
	outlineShader hal.ShaderModule

	// Layout with a single uniform buffer, used by the mask pass.
	uniformLayout hal.BindGroupLayout
	// Layout with a uniform buffer and a sampled texture, shared by
	// the init, jump, and outline passes.
	sampledLayout hal.BindGroupLayout

	maskPipeLayout    hal.PipelineLayout
	sampledPipeLayout hal.PipelineLayout

	cache *specialize.Cache

	maskShaderHash    uint64
	initShaderHash    uint64
	jumpShaderHash    uint64
	outlineShaderHash uint64
}

// init compiles the shaders and creates the shared layouts. Idempotent
// once it has succeeded.
func (ps *pipelineSet) init(device hal.Device) error {
	if ps.maskShader != nil {
		return nil
	}
	ps.device = device
	if ps.cache == nil {
		ps.cache = specialize.NewCache()
	}

	var err error
	if ps.maskShader, err = compileShader(device, "outline_mask", maskShaderWGSL); err != nil {
		return err
	}
	if ps.initShader, err = compileShader(device, "outline_init", initShaderWGSL); err != nil {
		return err
	}
	if ps.jumpShader, err = compileShader(device, "outline_jump", jumpShaderWGSL); err != nil {
		return err
	}
	if ps.outlineShader, err = compileShader(device, "outline_composite", outlineShaderWGSL); err != nil {
		return err
	}

	ps.maskShaderHash = specialize.HashBytes([]byte(maskShaderWGSL))
	ps.initShaderHash = specialize.HashBytes([]byte(initShaderWGSL))
	ps.jumpShaderHash = specialize.HashBytes([]byte(jumpShaderWGSL))
	ps.outlineShaderHash = specialize.HashBytes([]byte(outlineShaderWGSL))

	ps.uniformLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "outline_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}

	ps.sampledLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "outline_sampled_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sampled layout: %w", err)
	}

	ps.maskPipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "outline_mask_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{ps.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create mask pipeline layout: %w", err)
	}

	ps.sampledPipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "outline_sampled_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{ps.sampledLayout},
	})
	if err != nil {
		return fmt.Errorf("create sampled pipeline layout: %w", err)
	}

	return nil
}

// meshVertexLayout returns the vertex buffer layout of the mask pass.
// Matches vs_main in mask.wgsl: location 0 is position (vec3<f32>).
func meshVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// maskPipeline returns the MSAA mask pipeline, compiling it on first
// use.
func (ps *pipelineSet) maskPipeline() (hal.RenderPipeline, error) {
	desc := &specialize.Descriptor{
		Label:              "outline_mask_pipeline",
		ShaderHash:         ps.maskShaderHash,
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		VertexLayouts: []specialize.VertexLayout{
			{
				ArrayStride: meshVertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []specialize.VertexAttribute{
					{ShaderLocation: 0, Format: gputypes.VertexFormatFloat32x3, Offset: 0},
				},
			},
		},
		Topology:    gputypes.PrimitiveTopologyTriangleList,
		CullMode:    gputypes.CullModeNone,
		ColorFormat: maskFormat,
		SampleCount: maskSampleCount,
	}
	return ps.cache.GetOrCreate(desc, func() (hal.RenderPipeline, error) {
		return ps.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  desc.Label,
			Layout: ps.maskPipeLayout,
			Vertex: hal.VertexState{
				Module:     ps.maskShader,
				EntryPoint: "vs_main",
				Buffers:    meshVertexLayout(),
			},
			Fragment: &hal.FragmentState{
				Module:     ps.maskShader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{
					{
						Format:    maskFormat,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
			},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{
				Count: maskSampleCount,
				Mask:  0xFFFFFFFF,
			},
		})
	})
}

// fullscreenPipeline compiles a single-sample fullscreen triangle
// pipeline that samples one texture, shared by the init and jump
// passes (format RG32Float, no blending).
func (ps *pipelineSet) fullscreenPipeline(label string, shader hal.ShaderModule, shaderHash uint64, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	desc := &specialize.Descriptor{
		Label:              label,
		ShaderHash:         shaderHash,
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		Topology:           gputypes.PrimitiveTopologyTriangleList,
		CullMode:           gputypes.CullModeNone,
		ColorFormat:        format,
		SampleCount:        1,
	}
	return ps.cache.GetOrCreate(desc, func() (hal.RenderPipeline, error) {
		return ps.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  label,
			Layout: ps.sampledPipeLayout,
			Vertex: hal.VertexState{
				Module:     shader,
				EntryPoint: "vs_main",
			},
			Fragment: &hal.FragmentState{
				Module:     shader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{
					{
						Format:    format,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
			},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
	})
}

func (ps *pipelineSet) initPipeline() (hal.RenderPipeline, error) {
	return ps.fullscreenPipeline("outline_init_pipeline", ps.initShader, ps.initShaderHash, fieldFormat)
}

func (ps *pipelineSet) jumpPipeline() (hal.RenderPipeline, error) {
	return ps.fullscreenPipeline("outline_jump_pipeline", ps.jumpShader, ps.jumpShaderHash, fieldFormat)
}

// outlinePipeline returns the composite pipeline specialized for the
// camera target format. Colors blend src-over; the destination alpha
// is replaced by the outline alpha.
func (ps *pipelineSet) outlinePipeline(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	blend := specialize.BlendState{
		Color: specialize.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: specialize.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorZero,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	desc := &specialize.Descriptor{
		Label:              "outline_composite_pipeline",
		ShaderHash:         ps.outlineShaderHash,
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		Topology:           gputypes.PrimitiveTopologyTriangleList,
		CullMode:           gputypes.CullModeNone,
		ColorFormat:        format,
		Blend:              &blend,
		SampleCount:        1,
	}
	return ps.cache.GetOrCreate(desc, func() (hal.RenderPipeline, error) {
		halBlend := gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
		}
		return ps.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  desc.Label,
			Layout: ps.sampledPipeLayout,
			Vertex: hal.VertexState{
				Module:     ps.outlineShader,
				EntryPoint: "vs_main",
			},
			Fragment: &hal.FragmentState{
				Module:     ps.outlineShader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{
					{
						Format:    format,
						Blend:     &halBlend,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
			},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
	})
}

// destroy releases shaders and layouts in reverse creation order.
// Cached pipelines are dropped from the cache; the device owns their
// GPU objects.
func (ps *pipelineSet) destroy() {
	if ps.device == nil {
		return
	}
	if ps.cache != nil {
		ps.cache.Clear()
	}
	if ps.sampledPipeLayout != nil {
		ps.device.DestroyPipelineLayout(ps.sampledPipeLayout)
		ps.sampledPipeLayout = nil
	}
	if ps.maskPipeLayout != nil {
		ps.device.DestroyPipelineLayout(ps.maskPipeLayout)
		ps.maskPipeLayout = nil
	}
	if ps.sampledLayout != nil {
		ps.device.DestroyBindGroupLayout(ps.sampledLayout)
		ps.sampledLayout = nil
	}
	if ps.uniformLayout != nil {
		ps.device.DestroyBindGroupLayout(ps.uniformLayout)
		ps.uniformLayout = nil
	}
	for _, m := range []*hal.ShaderModule{&ps.outlineShader, &ps.jumpShader, &ps.initShader, &ps.maskShader} {
		if *m != nil {
			ps.device.DestroyShaderModule(*m)
			*m = nil
		}
	}
}
