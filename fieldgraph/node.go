// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fieldgraph builds the tree of field descriptors a schema
// compiles to: a synthetic Optional/Object root at definition level 0 and
// repetition level 0, with one descendant per schema field carrying
// label, type, parent link, ordered children, max repetition level,
// definition level and a stable path hash.
//
// The parent pointer is a lookup relation, never an ownership claim. A
// Node owns its children; the reference implementation instead uses
// reference counting with a weak parent link to avoid a cycle. Go's
// garbage collector makes that concern moot, so the pointer here is simply
// never walked to free memory.
package fieldgraph

import (
	"hash/fnv"

	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/schema"
)

// Label mirrors schema.Node.Repeated: whether a field may occur zero times
// (Optional, including absent) or many times (Repeated).
type Label int

const (
	Optional Label = iota
	Repeated
)

// Type distinguishes leaf fields (Primitive) from nested records (Object).
type Type int

const (
	Primitive Type = iota
	Object
)

// Node is one field descriptor in the graph.
type Node struct {
	parent   *Node
	children []*Node

	name   string
	label  Label
	typ    Type
	maxRep uint32
	def    uint16
	prim   schema.PrimitiveTag

	path string
	hash uint64
}

func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) Children() []*Node   { return n.children }
func (n *Node) Name() string        { return n.name }
func (n *Node) Label() Label        { return n.label }
func (n *Node) Type() Type          { return n.typ }
func (n *Node) MaxRepetition() uint32 { return n.maxRep }
func (n *Node) Definition() uint16  { return n.def }
func (n *Node) PrimitiveTag() schema.PrimitiveTag { return n.prim }
func (n *Node) Path() string        { return n.path }
func (n *Node) Hash() uint64        { return n.hash }

func (n *Node) IsLeaf() bool { return n.typ == Primitive }
func (n *Node) IsRoot() bool { return n.parent == nil }

// Child looks up an immediate child by name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Build constructs a field graph from a parsed schema, rooted at a
// synthetic Optional/Object node at level 0/0. proj, when non-nil and not
// a leaf node, prunes children absent from the projection: this is how the
// columnar reader limits which leaf streams it opens. Pass projection.All()
// (or nil) to include every field, as the writer always does since
// shredding never applies a projection.
func Build(root *schema.Node, proj *projection.Tree) *Node {
	r := &Node{label: Optional, typ: Object, maxRep: 0, def: 0}
	r.path = ""
	r.hash = pathHash(r.path)
	buildChildren(r, root.Fields, proj)
	return r
}

func buildChildren(parent *Node, fields []schema.Field, proj *projection.Tree) {
	for _, f := range fields {
		var childProj *projection.Tree
		if proj != nil && !proj.IsLeaf() {
			cp, ok := proj.RawChild(f.Name)
			if !ok {
				continue
			}
			childProj = cp
		} else {
			// proj is nil or a leaf: "include everything below" propagates
			// unchanged to every descendant.
			childProj = proj
		}

		child := newChild(parent, f.Name, f.Node)
		parent.children = append(parent.children, child)

		if child.typ == Object {
			buildChildren(child, f.Node.Fields, childProj)
		}
	}
}

func newChild(parent *Node, name string, s *schema.Node) *Node {
	label := Optional
	maxRep := parent.maxRep
	if s.Repeated {
		label = Repeated
		maxRep = parent.maxRep + 1
	}
	typ := Object
	var tag schema.PrimitiveTag
	if s.IsPrimitive() {
		typ = Primitive
		tag = s.Primitive
	}
	n := &Node{
		parent: parent,
		name:   name,
		label:  label,
		typ:    typ,
		maxRep: maxRep,
		def:    parent.def + 1,
		prim:   tag,
	}
	if parent.IsRoot() {
		n.path = name
	} else {
		n.path = parent.path + "." + name
	}
	n.hash = pathHash(n.path)
	return n
}

func pathHash(path string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return h.Sum64()
}

// Leaves returns root's Primitive descendants in depth-first,
// left-to-right order, the order the assembler's FSM indexes leaves in.
func Leaves(root *Node) []*Node {
	if root.IsLeaf() {
		return []*Node{root}
	}
	var out []*Node
	for _, c := range root.children {
		out = append(out, Leaves(c)...)
	}
	return out
}
