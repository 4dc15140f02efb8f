// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"testing"
)

// testNode is a configurable node for wiring tests.
type testNode struct {
	name    string
	inputs  []string
	outputs []string
	run     func(n *testNode, ctx *Context) error
}

func (n *testNode) Name() string      { return n.name }
func (n *testNode) Inputs() []string  { return n.inputs }
func (n *testNode) Outputs() []string { return n.outputs }
func (n *testNode) Run(ctx *Context) error {
	if n.run == nil {
		return nil
	}
	return n.run(n, ctx)
}

func TestAddDuplicate(t *testing.T) {
	g := New()
	if err := g.Add(&testNode{name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(&testNode{name: "a"}); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("err=%v, want ErrDuplicateNode", err)
	}
}

func TestConnectValidation(t *testing.T) {
	g := New()
	a := &testNode{name: "a", outputs: []string{"out"}}
	b := &testNode{name: "b", inputs: []string{"in"}}
	if err := g.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(b); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		fn, fs, tn, ts string
		want           error
	}{
		{"ok", "a", "out", "b", "in", nil},
		{"unknown from node", "x", "out", "b", "in", ErrUnknownNode},
		{"unknown to node", "a", "out", "x", "in", ErrUnknownNode},
		{"unknown output slot", "a", "bogus", "b", "in", ErrUnknownSlot},
		{"unknown input slot", "a", "out", "b", "bogus", ErrUnknownSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Connect(tt.fn, tt.fs, tt.tn, tt.ts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err=%v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunChainPassesValues(t *testing.T) {
	g := New()
	producer := &testNode{name: "producer", outputs: []string{"out"}}
	producer.run = func(n *testNode, ctx *Context) error {
		return ctx.SetOutput(n, "out", 7)
	}
	var got int
	consumer := &testNode{name: "consumer", inputs: []string{"in"}}
	consumer.run = func(n *testNode, ctx *Context) error {
		v, err := ctx.Input(n, "in")
		if err != nil {
			return err
		}
		got = v.(int)
		return nil
	}
	if err := g.Add(producer); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(consumer); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect("producer", "out", "consumer", "in"); err != nil {
		t.Fatal(err)
	}
	if err := g.Run(NewContext(1, nil)); err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("consumer read %d, want 7", got)
	}
}

func TestRunUnboundInput(t *testing.T) {
	g := New()
	n := &testNode{name: "lonely", inputs: []string{"in"}}
	n.run = func(n *testNode, ctx *Context) error {
		_, err := ctx.Input(n, "in")
		return err
	}
	if err := g.Add(n); err != nil {
		t.Fatal(err)
	}
	if err := g.Run(NewContext(1, nil)); !errors.Is(err, ErrSlotUnbound) {
		t.Errorf("err=%v, want ErrSlotUnbound", err)
	}
}

func TestRunCycle(t *testing.T) {
	g := New()
	a := &testNode{name: "a", inputs: []string{"in"}, outputs: []string{"out"}}
	b := &testNode{name: "b", inputs: []string{"in"}, outputs: []string{"out"}}
	if err := g.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect("a", "out", "b", "in"); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect("b", "out", "a", "in"); err != nil {
		t.Fatal(err)
	}
	if err := g.Run(NewContext(1, nil)); !errors.Is(err, ErrCycle) {
		t.Errorf("err=%v, want ErrCycle", err)
	}
}

func TestRunTopologicalOrder(t *testing.T) {
	g := New()
	var order []string
	mk := func(name string, ins, outs []string) *testNode {
		n := &testNode{name: name, inputs: ins, outputs: outs}
		n.run = func(n *testNode, ctx *Context) error {
			order = append(order, n.name)
			for _, o := range n.outputs {
				if err := ctx.SetOutput(n, o, true); err != nil {
					return err
				}
			}
			return nil
		}
		return n
	}
	// Diamond: src -> (left, right) -> sink.
	for _, n := range []*testNode{
		mk("src", nil, []string{"out"}),
		mk("left", []string{"in"}, []string{"out"}),
		mk("right", []string{"in"}, []string{"out"}),
		mk("sink", []string{"a", "b"}, nil),
	} {
		if err := g.Add(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][4]string{
		{"src", "out", "left", "in"},
		{"src", "out", "right", "in"},
		{"left", "out", "sink", "a"},
		{"right", "out", "sink", "b"},
	} {
		if err := g.Connect(e[0], e[1], e[2], e[3]); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Run(NewContext(1, nil)); err != nil {
		t.Fatal(err)
	}
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["src"] > pos["left"] || pos["src"] > pos["right"] ||
		pos["left"] > pos["sink"] || pos["right"] > pos["sink"] {
		t.Errorf("order %v violates dependencies", order)
	}
}

func TestSetOutputUnknownSlot(t *testing.T) {
	n := &testNode{name: "a", outputs: []string{"out"}}
	ctx := NewContext(1, nil)
	if err := ctx.SetOutput(n, "bogus", 1); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err=%v, want ErrUnknownSlot", err)
	}
}
