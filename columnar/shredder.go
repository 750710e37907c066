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

// Shredder walks each record against a field graph and appends (r, d,
// value) triples to per-leaf streams. A Shredder always uses the
// unprojected field graph: shredding never applies a projection, unlike
// assembly which may.
type Shredder struct {
	chunkDir string
	root     *fieldgraph.Node
	streams  map[*fieldgraph.Node]iostream.Writer
}

// NewShredder constructs a Shredder rooted at root, whose leaf streams live
// under chunkDir.
func NewShredder(chunkDir string, root *fieldgraph.Node) *Shredder {
	return &Shredder{chunkDir: chunkDir, root: root, streams: map[*fieldgraph.Node]iostream.Writer{}}
}

// Write shreds one record, descending the field graph from the synthetic
// root: every top-level child is entered with (r=0, d=0) against the whole
// record.
func (s *Shredder) Write(record value.Value) error {
	if record.Kind() != value.Document {
		return chunkerr.New(chunkerr.SchemaError, "columnar: record is not a document")
	}
	frag := fragment{present: true, value: record}
	for _, child := range s.root.Children() {
		if err := s.writeField(child, 0, 0, frag); err != nil {
			return err
		}
	}
	return nil
}

// fragment models the "value or absent" the reference writer distinguishes
// with a nullable shared_ptr: present tracks whether the enclosing Document
// even had an entry for the parent field, as distinct from holding an
// explicit Null.
type fragment struct {
	present bool
	value   value.Value
}

func (f fragment) isNull() bool {
	return !f.present || f.value.IsNull()
}

// writeField dispatches on node's label and type: Optional object and
// primitive leaves fan out directly, Repeated object and primitive leaves
// loop over each element. parent is the enclosing Document fragment
// node.Name() is looked up in.
func (s *Shredder) writeField(node *fieldgraph.Node, r uint32, d uint16, parent fragment) error {
	if parent.isNull() {
		return s.writeNull(node, r, d)
	}

	if node.Label() == fieldgraph.Optional {
		fv, ok := parent.value.Get(node.Name())
		has := ok && !fv.IsNull()
		localD := d
		if has {
			localD = d + 1
		}
		child := fragment{present: has, value: fv}

		if node.Type() == fieldgraph.Object {
			for _, c := range node.Children() {
				if err := s.writeField(c, r, localD, child); err != nil {
					return err
				}
			}
			return nil
		}
		return s.writePrimitive(node, r, localD, valueOrNull(child))
	}

	// Repeated.
	fv, ok := parent.value.Get(node.Name())
	if !ok || fv.IsNull() || fv.Kind() != value.List || len(fv.List()) == 0 {
		return s.writeNull(node, r, d)
	}
	localR := r
	for _, elem := range fv.List() {
		if node.Type() == fieldgraph.Object {
			for _, c := range node.Children() {
				var err error
				if elem.IsNull() {
					err = s.writeNull(c, localR, d+1)
				} else {
					err = s.writeField(c, localR, d+1, fragment{present: true, value: elem})
				}
				if err != nil {
					return err
				}
			}
		} else {
			if err := s.writePrimitive(node, localR, d+1, elem); err != nil {
				return err
			}
		}
		localR = node.MaxRepetition()
	}
	return nil
}

func valueOrNull(f fragment) value.Value {
	if f.present {
		return f.value
	}
	return value.NewNull()
}

// writeNull fans out to every child of an Object node, or emits a single
// (r, d, Null) triple at a Primitive leaf. This is the only code path that
// emits for an absent or empty repeated field, which is what guarantees
// every leaf receives at least one triple per record.
func (s *Shredder) writeNull(node *fieldgraph.Node, r uint32, d uint16) error {
	if node.Type() == fieldgraph.Object {
		for _, c := range node.Children() {
			if err := s.writeNull(c, r, d); err != nil {
				return err
			}
		}
		return nil
	}
	return s.writePrimitive(node, r, d, value.NewNull())
}

func (s *Shredder) writePrimitive(node *fieldgraph.Node, r uint32, d uint16, v value.Value) error {
	w, err := s.streamFor(node)
	if err != nil {
		return err
	}
	return writeTriple(w, r, d, v)
}

func (s *Shredder) streamFor(leaf *fieldgraph.Node) (iostream.Writer, error) {
	if w, ok := s.streams[leaf]; ok {
		return w, nil
	}
	w, err := iostream.OpenFileAppender(leafPath(s.chunkDir, leaf))
	if err != nil {
		return nil, err
	}
	s.streams[leaf] = w
	return w, nil
}

// Close flushes and closes every stream opened so far, concurrently since
// leaf files are independent. Safe to call even if some leaves were never
// written (an empty schema, or a schema with no records) since streams
// open lazily.
func (s *Shredder) Close() error {
	var g errgroup.Group
	for _, w := range s.streams {
		w := w
		g.Go(w.Close)
	}
	return g.Wait()
}
