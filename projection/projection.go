// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package projection implements a prefix tree over dotted field paths: a
// node whose child map is empty is a leaf, meaning "include everything
// below this path". An empty tree (root is a leaf) selects all fields. The
// same Tree drives projection pushdown in both the packed/textual codecs
// and the columnar field graph.
package projection

import "github.com/solidcoredata/dcstore/primitive"

// Tree is one node of the projection prefix tree. It implements
// primitive.Projector so the packed codec can drive projection pushdown
// directly against it.
type Tree struct {
	children map[string]*Tree
}

// All returns the tree that selects every field (an empty, leaf root).
func All() *Tree {
	return &Tree{}
}

// IsLeaf reports whether t has no children, meaning "include everything
// below this path".
func (t *Tree) IsLeaf() bool {
	return t == nil || len(t.children) == 0
}

// Child looks up a named child as a primitive.Projector, reporting
// ok=false if name is not selected under t. Callers must guard with
// IsLeaf first; calling Child on a leaf always reports ok=false.
func (t *Tree) Child(name string) (primitive.Projector, bool) {
	if t == nil || t.children == nil {
		return nil, false
	}
	c, ok := t.children[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// RawChild is Child without the interface boxing, used by fieldgraph which
// needs to walk *Tree directly while building the field graph.
func (t *Tree) RawChild(name string) (*Tree, bool) {
	if t == nil || t.children == nil {
		return nil, false
	}
	c, ok := t.children[name]
	return c, ok
}

func (t *Tree) insert(path []string) {
	cur := t
	for _, seg := range path {
		if cur.children == nil {
			cur.children = map[string]*Tree{}
		}
		child, ok := cur.children[seg]
		if !ok {
			child = &Tree{}
			cur.children[seg] = child
		}
		cur = child
	}
}
