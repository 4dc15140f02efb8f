// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package graph wires the outline passes into a small directed
// acyclic graph of named nodes with named input and output slots.
//
// The outline core itself uses a fixed topology (mask, seed init,
// flood, composite); the graph exists so the chain can be assembled,
// validated, and extended by a host frame graph. Wiring mistakes are
// structural errors reported at assembly or run time, distinct from
// the per-frame soft skips the passes themselves perform.
package graph

import (
	"errors"
	"fmt"
)

// Wiring errors.
var (
	// ErrDuplicateNode is returned when a node name is added twice.
	ErrDuplicateNode = errors.New("graph: duplicate node name")

	// ErrUnknownNode is returned when an edge references a node that
	// was never added.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrUnknownSlot is returned when an edge references a slot the
	// node does not declare.
	ErrUnknownSlot = errors.New("graph: unknown slot")

	// ErrSlotUnbound is returned at run time when a node reads an
	// input slot with no incoming edge or no produced value.
	ErrSlotUnbound = errors.New("graph: input slot not bound")

	// ErrCycle is returned when the edges do not form a DAG.
	ErrCycle = errors.New("graph: cycle detected")
)

// Node is one pass in the graph. Inputs and Outputs declare the
// node's slot names; Run reads its inputs from the Context and must
// set every declared output.
type Node interface {
	Name() string
	Inputs() []string
	Outputs() []string
	Run(ctx *Context) error
}

type edge struct {
	fromNode, fromSlot string
	toNode, toSlot     string
}

// Graph is a set of nodes and slot-to-slot edges.
type Graph struct {
	nodes map[string]Node
	edges []edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// Add registers a node under its name.
func (g *Graph) Add(n Node) error {
	if _, ok := g.nodes[n.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name())
	}
	g.nodes[n.Name()] = n
	return nil
}

// Connect wires an output slot of one node to an input slot of
// another. Both nodes and both slots must exist.
func (g *Graph) Connect(fromNode, fromSlot, toNode, toSlot string) error {
	from, ok := g.nodes[fromNode]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, fromNode)
	}
	to, ok := g.nodes[toNode]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, toNode)
	}
	if !contains(from.Outputs(), fromSlot) {
		return fmt.Errorf("%w: %q has no output %q", ErrUnknownSlot, fromNode, fromSlot)
	}
	if !contains(to.Inputs(), toSlot) {
		return fmt.Errorf("%w: %q has no input %q", ErrUnknownSlot, toNode, toSlot)
	}
	g.edges = append(g.edges, edge{fromNode, fromSlot, toNode, toSlot})
	return nil
}

// Run executes every node in topological order within ctx. The same
// Graph may be run concurrently with independent contexts.
func (g *Graph) Run(ctx *Context) error {
	order, err := g.topoOrder()
	if err != nil {
		return err
	}
	ctx.graph = g
	for _, n := range order {
		if err := n.Run(ctx); err != nil {
			return fmt.Errorf("node %q: %w", n.Name(), err)
		}
	}
	return nil
}

// topoOrder returns the nodes in dependency order, or ErrCycle.
func (g *Graph) topoOrder() ([]Node, error) {
	indeg := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		indeg[name] = 0
	}
	succ := make(map[string][]string)
	for _, e := range g.edges {
		indeg[e.toNode]++
		succ[e.fromNode] = append(succ[e.fromNode], e.toNode)
	}

	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	// Stable order among ready nodes keeps runs deterministic.
	sortStrings(ready)

	order := make([]Node, 0, len(g.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[name])
		next := succ[name]
		sortStrings(next)
		for _, s := range next {
			indeg[s]--
			if indeg[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

// Context carries per-run slot values. A Context must not be shared
// between concurrent runs.
type Context struct {
	// View identifies the camera this run executes for.
	View uint64

	// Frame is arbitrary per-run state shared by the nodes.
	Frame any

	graph  *Graph
	values map[[2]string]any
}

// NewContext creates a run context for one camera.
func NewContext(view uint64, frame any) *Context {
	return &Context{
		View:   view,
		Frame:  frame,
		values: make(map[[2]string]any),
	}
}

// SetOutput records a value produced on a node's output slot.
func (c *Context) SetOutput(node Node, slot string, value any) error {
	if !contains(node.Outputs(), slot) {
		return fmt.Errorf("%w: %q has no output %q", ErrUnknownSlot, node.Name(), slot)
	}
	c.values[[2]string{node.Name(), slot}] = value
	return nil
}

// Input resolves a node's input slot through its incoming edge and
// returns the value the upstream node produced.
func (c *Context) Input(node Node, slot string) (any, error) {
	if !contains(node.Inputs(), slot) {
		return nil, fmt.Errorf("%w: %q has no input %q", ErrUnknownSlot, node.Name(), slot)
	}
	for _, e := range c.graph.edges {
		if e.toNode != node.Name() || e.toSlot != slot {
			continue
		}
		v, ok := c.values[[2]string{e.fromNode, e.fromSlot}]
		if !ok {
			return nil, fmt.Errorf("%w: %q.%q produced no value for %q.%q",
				ErrSlotUnbound, e.fromNode, e.fromSlot, node.Name(), slot)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q.%q", ErrSlotUnbound, node.Name(), slot)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
