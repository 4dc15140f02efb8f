// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL sources for the four outline passes.
var (
	//go:embed shaders/mask.wgsl
	maskShaderWGSL string

	//go:embed shaders/jfa_init.wgsl
	initShaderWGSL string

	//go:embed shaders/jfa.wgsl
	jumpShaderWGSL string

	//go:embed shaders/outline.wgsl
	outlineShaderWGSL string
)

// compileShader compiles WGSL to SPIR-V words and wraps them in a HAL
// shader module.
func compileShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("wgpu: %s shader source is empty", label)
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile %s shader: %w", label, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s shader module: %w", label, err)
	}
	return module, nil
}
