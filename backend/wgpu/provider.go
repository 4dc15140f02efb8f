// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Provider errors.
var (
	// ErrNilDeviceProvider is returned when no provider is given.
	ErrNilDeviceProvider = errors.New("wgpu: device provider is nil")

	// ErrNoHALDevice is returned when the provider cannot supply HAL
	// device and queue handles.
	ErrNoHALDevice = errors.New("wgpu: provider does not expose a HAL device")
)

// DeviceHandle is the host integration point: the application that
// owns the GPU device implements it and hands it to the renderer.
// The renderer receives the device from the host, it never creates
// one.
type DeviceHandle = gpucontext.DeviceProvider

// FromProvider creates a renderer from a host device provider. The
// provider must expose the underlying HAL handles through
// HalDevice() any and HalQueue() any methods returning wgpu/hal
// types; gogpu's context does.
func FromProvider(provider any) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNilDeviceProvider
	}

	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, ErrNoHALDevice
	}

	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}

	return New(device, queue), nil
}
