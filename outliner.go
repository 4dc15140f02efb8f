// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/jfa/composite"
	"github.com/gogpu/jfa/graph"
	"github.com/gogpu/jfa/internal/cache"
	"github.com/gogpu/jfa/mask"
	"github.com/gogpu/jfa/resources"
)

// Outliner errors.
var (
	// ErrNilProvider is returned when RenderFrame is called without
	// a scene provider.
	ErrNilProvider = errors.New("jfa: scene provider is nil")

	// ErrNilSnapshot is returned when the provider yields no scene.
	ErrNilSnapshot = errors.New("jfa: scene snapshot is nil")
)

// defaultMaskThreshold seeds texels with majority coverage.
const defaultMaskThreshold = 128

// Outliner runs the outline pass chain for every outline-enabled
// camera of a frame. Cameras are independent: each owns its resource
// bundle, identified by the camera ID, and only the style uniform
// cache is shared.
//
// An Outliner is safe for sequential frame use; independent cameras
// within a frame may be rendered concurrently by the caller through
// RenderCamera.
type Outliner struct {
	mu      sync.Mutex
	bundles map[uint64]*resources.Bundle
	comp    *composite.Pipeline

	graph   *graph.Graph
	styles  *cache.Cache[Style, [styleUniformSize]byte]
	halfRes atomic.Bool

	threshold uint8
}

// NewOutliner creates an Outliner with the given options.
func NewOutliner(opts ...Option) *Outliner {
	g, err := newOutlineGraph()
	if err != nil {
		// The fixed chain wires name constants to matching slots;
		// a failure here is a programming error in this package.
		panic(err)
	}
	o := &Outliner{
		bundles:   make(map[uint64]*resources.Bundle),
		graph:     g,
		styles:    cache.New[Style, [styleUniformSize]byte](64),
		threshold: defaultMaskThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetHalfResolution toggles half-resolution processing for
// subsequent frames. Safe for concurrent use.
func (o *Outliner) SetHalfResolution(on bool) {
	o.halfRes.Store(on)
}

// HalfResolution reports the current state of the toggle.
func (o *Outliner) HalfResolution() bool {
	return o.halfRes.Load()
}

// StyleUniform returns the memoized GPU uniform encoding for a
// style.
func (o *Outliner) StyleUniform(s Style) [styleUniformSize]byte {
	return o.styles.GetOrCreate(s, s.UniformBytes)
}

// RenderFrame runs the outline chain for every camera in the
// provider's snapshot. Cameras that are not outline-enabled, have no
// style, or see no eligible meshes are skipped silently; an invalid
// style or a broken pass chain is an error.
func (o *Outliner) RenderFrame(p SceneProvider) error {
	if p == nil {
		return ErrNilProvider
	}
	scene := p.Snapshot()
	if scene == nil {
		return ErrNilSnapshot
	}
	for i := range scene.Cameras {
		if err := o.RenderCamera(scene, &scene.Cameras[i]); err != nil {
			return fmt.Errorf("camera %d: %w", scene.Cameras[i].ID, err)
		}
	}
	return nil
}

// RenderCamera runs the outline chain for a single camera of the
// snapshot. Distinct cameras may be rendered concurrently; a single
// camera must not.
func (o *Outliner) RenderCamera(scene *Scene, cam *Camera) error {
	log := Logger()

	if !cam.Outline.Enabled || cam.Outline.Style == nil {
		log.Debug("outline skipped", "camera", cam.ID, "reason", "not outline-enabled")
		return nil
	}
	if cam.Target == nil || cam.Width <= 0 || cam.Height <= 0 {
		log.Debug("outline skipped", "camera", cam.ID, "reason", "no usable target")
		return nil
	}
	style := *cam.Outline.Style
	if err := style.Validate(); err != nil {
		return err
	}

	var q mask.Queue
	for i := range scene.Meshes {
		m := &scene.Meshes[i]
		if !m.Outline || m.Mesh == nil {
			continue
		}
		q.Add(m.Mesh, m.Transform, cam.View)
	}
	if q.Len() == 0 {
		log.Debug("outline skipped", "camera", cam.ID, "reason", "no eligible meshes")
		return nil
	}

	halfRes := o.halfRes.Load()
	bundle := o.bundle(cam.ID)
	before := bundle.Allocations()
	bundle.Ensure(cam.Width, cam.Height, halfRes)
	if after := bundle.Allocations(); after != before {
		w, h := bundle.Size()
		log.Info("outline resources recreated", "camera", cam.ID, "width", w, "height", h, "halfRes", halfRes)
	}

	comp, err := o.compositePipeline()
	if err != nil {
		return err
	}

	fs := &frameState{
		cam:       cam,
		queue:     &q,
		bundle:    bundle,
		style:     style,
		threshold: o.threshold,
		halfRes:   halfRes,
		pipeline:  comp,
	}
	return o.graph.Run(graph.NewContext(cam.ID, fs))
}

// bundle returns the camera's resource bundle, creating it on first
// use.
func (o *Outliner) bundle(camID uint64) *resources.Bundle {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.bundles[camID]
	if !ok {
		b = &resources.Bundle{}
		o.bundles[camID] = b
	}
	return b
}

// compositePipeline lazily creates the composite pipeline for the
// CPU target configuration. Target validation failures are
// configuration errors raised here once, not per frame.
func (o *Outliner) compositePipeline() (*composite.Pipeline, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.comp != nil {
		return o.comp, nil
	}
	p, err := composite.NewPipeline(composite.FormatRGBA8Unorm, composite.UsageRenderAttachment|composite.UsageCopySrc)
	if err != nil {
		return nil, err
	}
	o.comp = p
	return p, nil
}
