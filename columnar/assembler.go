// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package columnar

import (
	"golang.org/x/sync/errgroup"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/fieldgraph"
	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/value"
)

// docBuilder and listBuilder are the mutable under-construction shapes the
// assembler builds a record in. value.Value is immutable, and a List's
// backing slice can be reallocated by append, so the assembler cannot grow
// a value.Value tree in place the way the reference implementation mutates
// document::Document through a shared_ptr; it grows these instead and
// converts to value.Value once, in finalize, when a record is fully
// assembled.
type docBuilder struct {
	fields map[string]interface{}
}

type listBuilder struct {
	items []interface{}
}

func newDocBuilder() *docBuilder {
	return &docBuilder{fields: map[string]interface{}{}}
}

// attach assigns item under node's name in last, appending to a list for a
// Repeated field and overwriting for an Optional one, mirroring
// RecordAssembler::AssignValue's two branches.
func attach(last *docBuilder, node *fieldgraph.Node, item interface{}) {
	if node.Label() == fieldgraph.Repeated {
		lb, ok := last.fields[node.Name()].(*listBuilder)
		if !ok {
			lb = &listBuilder{}
			last.fields[node.Name()] = lb
		}
		lb.items = append(lb.items, item)
		return
	}
	last.fields[node.Name()] = item
}

func finalize(b interface{}) value.Value {
	switch t := b.(type) {
	case *docBuilder:
		fields := make(map[string]value.Value, len(t.fields))
		for k, v := range t.fields {
			fields[k] = finalize(v)
		}
		return value.NewDocument(fields)
	case *listBuilder:
		items := make([]value.Value, len(t.items))
		for i, v := range t.items {
			items[i] = finalize(v)
		}
		return value.NewList(items)
	case value.Value:
		return t
	default:
		return value.NewNull()
	}
}

type stackEntry struct {
	node *fieldgraph.Node
	doc  *docBuilder
}

// assembler reassembles records from the per-leaf streams of a (possibly
// projected) field graph.
type assembler struct {
	root      *fieldgraph.Node
	leaves    []*fieldgraph.Node
	index     map[*fieldgraph.Node]int
	cache     *fieldgraph.Cache
	fsm       fsm
	readers   map[*fieldgraph.Node]iostream.Reader
	chunkDir  string
	stack     []stackEntry
	lastNode  *fieldgraph.Node
	hasLast   bool
}

// newAssembler builds the FSM and LCA cache for root's leaves.
func newAssembler(chunkDir string, root *fieldgraph.Node) *assembler {
	leaves := fieldgraph.Leaves(root)
	index := make(map[*fieldgraph.Node]int, len(leaves))
	for i, l := range leaves {
		index[l] = i
	}
	cache := fieldgraph.NewCache()
	return &assembler{
		root:     root,
		leaves:   leaves,
		index:    index,
		cache:    cache,
		fsm:      buildFSM(leaves, cache),
		readers:  map[*fieldgraph.Node]iostream.Reader{},
		chunkDir: chunkDir,
	}
}

func (a *assembler) streamFor(leaf *fieldgraph.Node) (iostream.Reader, error) {
	if r, ok := a.readers[leaf]; ok {
		return r, nil
	}
	r, err := iostream.OpenFileReader(leafPath(a.chunkDir, leaf))
	if err != nil {
		return nil, err
	}
	a.readers[leaf] = r
	return r, nil
}

// Close releases every leaf stream opened so far, concurrently since leaf
// files are independent.
func (a *assembler) Close() error {
	var g errgroup.Group
	for _, r := range a.readers {
		r := r
		g.Go(r.Close)
	}
	return g.Wait()
}

// Next assembles and returns the next record, or ok=false once L_0 is at
// EOF with no record in progress.
func (a *assembler) Next() (value.Value, bool, error) {
	if len(a.leaves) == 0 {
		return value.Value{}, false, nil
	}

	a.stack = []stackEntry{{node: a.root, doc: newDocBuilder()}}
	a.lastNode = nil
	a.hasLast = false

	current := a.leaves[0]
	for current != nil {
		r, err := a.streamFor(current)
		if err != nil {
			return value.Value{}, false, err
		}
		if r.Eof() {
			if current == a.leaves[0] {
				return value.Value{}, false, nil
			}
			return value.Value{}, false, chunkerr.Newf(chunkerr.CorruptInput,
				"columnar: leaf %s exhausted before leaf 0 mid-record", leafName(current))
		}
		row, err := readTriple(r)
		if err != nil {
			return value.Value{}, false, err
		}
		if err := a.assign(current, row); err != nil {
			return value.Value{}, false, err
		}
		a.lastNode = current
		a.hasLast = true

		nextR := uint32(0)
		if !r.Eof() {
			nextR, err = peekRepetition(r)
			if err != nil {
				return value.Value{}, false, err
			}
		}
		current = a.fsm[current][nextR]
	}
	return a.collect(), true, nil
}

// assign implements RecordAssembler::AssignValue: it locates the LCA
// barrier between current and the open scope, pops scopes above it,
// descends from the barrier down to current materializing interior nodes
// as needed, and finally assigns or appends the leaf's value.
func (a *assembler) assign(current *fieldgraph.Node, row triple) error {
	top := a.stack[len(a.stack)-1]
	barrier := a.cache.LCA(current, top.node)

	if a.hasLast && a.index[current] <= a.index[a.lastNode] {
		for !barrier.IsRoot() && barrier.MaxRepetition() >= row.r {
			barrier = barrier.Parent()
		}
	}

	for a.stack[len(a.stack)-1].node != barrier {
		a.stack = a.stack[:len(a.stack)-1]
	}

	path := fieldgraph.PathBetween(current, barrier)
	reverseNodes(path)

	for len(path) > 0 && path[0].Definition() <= row.d {
		node := path[0]
		path = path[1:]
		last := a.stack[len(a.stack)-1].doc

		if node.IsLeaf() {
			attach(last, node, row.v)
			continue
		}
		if row.v.Kind() == value.Null {
			continue
		}
		inner := newDocBuilder()
		attach(last, node, inner)
		a.stack = append(a.stack, stackEntry{node: node, doc: inner})
	}
	return nil
}

func (a *assembler) collect() value.Value {
	top := a.stack[0]
	return finalize(top.doc)
}

func reverseNodes(ns []*fieldgraph.Node) {
	for i, j := 0, len(ns)-1; i < j; i, j = i+1, j-1 {
		ns[i], ns[j] = ns[j], ns[i]
	}
}
