// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package specialize memoizes compiled GPU pipelines keyed by a
// descriptor hash.
//
// The mask pass specializes per mesh vertex layout and the composite
// pass per camera target format; both share one cache. Lookup is a
// pure memoizing read, insertion on miss is idempotent, and the
// cache is safe for concurrent use across camera pipelines within a
// frame.
package specialize

import (
	"encoding/binary"
	"errors"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Cache errors.
var (
	// ErrNilDescriptor is returned when specializing a nil descriptor.
	ErrNilDescriptor = errors.New("specialize: pipeline descriptor is nil")

	// ErrNilCreate is returned when no creation callback is supplied.
	ErrNilCreate = errors.New("specialize: create callback is nil")
)

// VertexAttribute describes one vertex attribute for hashing.
type VertexAttribute struct {
	ShaderLocation uint32
	Format         gputypes.VertexFormat
	Offset         uint64
}

// VertexLayout describes one vertex buffer layout for hashing.
type VertexLayout struct {
	ArrayStride uint64
	StepMode    gputypes.VertexStepMode
	Attributes  []VertexAttribute
}

// BlendComponent is one blend equation term.
type BlendComponent struct {
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
	Operation gputypes.BlendOperation
}

// BlendState is the color and alpha blend configuration.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// Descriptor captures the state that distinguishes one specialized
// pipeline from another: shader identity, mesh vertex layout, target
// format, blending, and sample count.
type Descriptor struct {
	Label string

	// ShaderHash identifies the compiled shader pair, typically the
	// FNV-1a hash of the shader source or SPIR-V words.
	ShaderHash uint64

	VertexEntryPoint   string
	FragmentEntryPoint string

	VertexLayouts []VertexLayout

	Topology gputypes.PrimitiveTopology
	CullMode gputypes.CullMode

	ColorFormat gputypes.TextureFormat
	Blend       *BlendState

	SampleCount uint32
}

// Hash computes the FNV-1a specialization key of the descriptor.
// Two descriptors with equal hashes are treated as the same
// pipeline.
func (d *Descriptor) Hash() uint64 {
	h := fnv.New64a()

	writeUint64(h, d.ShaderHash)
	writeString(h, d.VertexEntryPoint)
	writeString(h, d.FragmentEntryPoint)

	writeUint32(h, uint32(len(d.VertexLayouts)))
	for i := range d.VertexLayouts {
		l := &d.VertexLayouts[i]
		writeUint64(h, l.ArrayStride)
		writeUint32(h, uint32(l.StepMode))
		writeUint32(h, uint32(len(l.Attributes)))
		for j := range l.Attributes {
			a := &l.Attributes[j]
			writeUint32(h, a.ShaderLocation)
			writeUint32(h, uint32(a.Format))
			writeUint64(h, a.Offset)
		}
	}

	writeUint32(h, uint32(d.Topology))
	writeUint32(h, uint32(d.CullMode))
	writeUint32(h, uint32(d.ColorFormat))

	if d.Blend != nil {
		writeBool(h, true)
		writeUint32(h, uint32(d.Blend.Color.SrcFactor))
		writeUint32(h, uint32(d.Blend.Color.DstFactor))
		writeUint32(h, uint32(d.Blend.Color.Operation))
		writeUint32(h, uint32(d.Blend.Alpha.SrcFactor))
		writeUint32(h, uint32(d.Blend.Alpha.DstFactor))
		writeUint32(h, uint32(d.Blend.Alpha.Operation))
	} else {
		writeBool(h, false)
	}

	writeUint32(h, d.SampleCount)
	return h.Sum64()
}

// Cache memoizes compiled pipelines. The zero value is not usable;
// use NewCache.
type Cache struct {
	mu        sync.RWMutex
	pipelines map[uint64]hal.RenderPipeline

	hits   uint64
	misses uint64
}

// NewCache creates an empty pipeline cache.
func NewCache() *Cache {
	return &Cache{pipelines: make(map[uint64]hal.RenderPipeline)}
}

// GetOrCreate returns the pipeline for desc, compiling it through
// create on first miss. Uses double-check locking: concurrent
// lookups of the same key are served without blocking each other
// once the pipeline exists, and a raced miss still compiles the
// pipeline exactly once.
func (c *Cache) GetOrCreate(desc *Descriptor, create func() (hal.RenderPipeline, error)) (hal.RenderPipeline, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}
	if create == nil {
		return nil, ErrNilCreate
	}
	key := desc.Hash()

	c.mu.RLock()
	if p, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}

	p, err := create()
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	atomic.AddUint64(&c.misses, 1)
	return p, nil
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// Clear drops all cached pipelines and resets the counters. The
// underlying GPU objects are not destroyed; the device owns them.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipelines = make(map[uint64]hal.RenderPipeline)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

// HashBytes computes the FNV-1a hash of raw shader code, for use as
// a Descriptor.ShaderHash.
func HashBytes(code []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(code)
	return h.Sum64()
}

func writeUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeString(h hash.Hash64, s string) {
	writeUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func writeBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
