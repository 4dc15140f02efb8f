// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"

	"github.com/gogpu/jfa/composite"
	"github.com/gogpu/jfa/flood"
	"github.com/gogpu/jfa/graph"
	"github.com/gogpu/jfa/mask"
	"github.com/gogpu/jfa/resources"
)

// Node and slot names of the outline pass chain.
const (
	nodeMask      = "mask"
	nodeSeedInit  = "seed_init"
	nodeJumpFlood = "jump_flood"
	nodeOutline   = "outline"

	slotMask  = "mask"
	slotInit  = "seed_init"
	slotFlood = "flood"
)

// frameState is the per-camera, per-frame state the pass nodes share
// through the graph context.
type frameState struct {
	cam       *Camera
	queue     *mask.Queue
	bundle    *resources.Bundle
	style     Style
	threshold uint8
	halfRes   bool
	pipeline  *composite.Pipeline
}

// newOutlineGraph assembles the fixed pass chain:
// mask -> seed init -> jump flood -> outline composite.
func newOutlineGraph() (*graph.Graph, error) {
	g := graph.New()
	for _, n := range []graph.Node{maskNode{}, seedInitNode{}, jumpFloodNode{}, outlineNode{}} {
		if err := g.Add(n); err != nil {
			return nil, err
		}
	}
	wires := [][4]string{
		{nodeMask, slotMask, nodeSeedInit, slotMask},
		{nodeSeedInit, slotInit, nodeJumpFlood, slotInit},
		{nodeJumpFlood, slotFlood, nodeOutline, slotFlood},
	}
	for _, w := range wires {
		if err := g.Connect(w[0], w[1], w[2], w[3]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// maskNode rasterizes the queued draws into the coverage mask.
type maskNode struct{}

func (maskNode) Name() string      { return nodeMask }
func (maskNode) Inputs() []string  { return nil }
func (maskNode) Outputs() []string { return []string{slotMask} }

func (n maskNode) Run(ctx *graph.Context) error {
	fs := ctx.Frame.(*frameState)
	w, h := fs.bundle.Size()
	dst := fs.bundle.Mask()
	fs.queue.Sort()
	fs.queue.Rasterize(fs.cam.View, fs.cam.Proj, w, h, dst)
	return ctx.SetOutput(n, slotMask, dst)
}

// seedInitNode converts the mask into the initial seed field.
type seedInitNode struct{}

func (seedInitNode) Name() string      { return nodeSeedInit }
func (seedInitNode) Inputs() []string  { return []string{slotMask} }
func (seedInitNode) Outputs() []string { return []string{slotInit} }

func (n seedInitNode) Run(ctx *graph.Context) error {
	fs := ctx.Frame.(*frameState)
	v, err := ctx.Input(n, slotMask)
	if err != nil {
		return err
	}
	m, ok := v.([]uint8)
	if !ok {
		return fmt.Errorf("mask slot carried %T, want []uint8", v)
	}
	fieldA, _ := fs.bundle.Fields()
	flood.SeedInit(m, fs.threshold, fieldA)
	return ctx.SetOutput(n, slotInit, fieldA)
}

// jumpFloodNode converges the seed field over the ping-pong pair.
type jumpFloodNode struct{}

func (jumpFloodNode) Name() string      { return nodeJumpFlood }
func (jumpFloodNode) Inputs() []string  { return []string{slotInit} }
func (jumpFloodNode) Outputs() []string { return []string{slotFlood} }

func (n jumpFloodNode) Run(ctx *graph.Context) error {
	fs := ctx.Frame.(*frameState)
	v, err := ctx.Input(n, slotInit)
	if err != nil {
		return err
	}
	initial, ok := v.(*flood.Field)
	if !ok {
		return fmt.Errorf("seed slot carried %T, want *flood.Field", v)
	}
	fieldA, fieldB := fs.bundle.Fields()
	other := fieldB
	if initial == fieldB {
		other = fieldA
	}
	return ctx.SetOutput(n, slotFlood, flood.Converge(initial, other))
}

// outlineNode composites the outline onto the camera target.
type outlineNode struct{}

func (outlineNode) Name() string      { return nodeOutline }
func (outlineNode) Inputs() []string  { return []string{slotFlood} }
func (outlineNode) Outputs() []string { return nil }

func (n outlineNode) Run(ctx *graph.Context) error {
	fs := ctx.Frame.(*frameState)
	v, err := ctx.Input(n, slotFlood)
	if err != nil {
		return err
	}
	field, ok := v.(*flood.Field)
	if !ok {
		return fmt.Errorf("flood slot carried %T, want *flood.Field", v)
	}
	scale := 1.0
	if fs.halfRes {
		scale = 2.0
	}
	fs.pipeline.Draw(field, composite.Params{
		Color:  fs.style.Color.Vec4(),
		Weight: fs.style.Weight,
	}, scale, fs.cam.Target)
	return nil
}
