// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package columnar

import (
	"github.com/solidcoredata/dcstore/fieldgraph"
	"github.com/solidcoredata/dcstore/value"
)

// Write shreds docs into chunkDir's per-leaf column streams against root,
// which must be the unprojected field graph (shredding never applies a
// projection; see Read for the projected case).
func Write(chunkDir string, root *fieldgraph.Node, docs []value.Value) (err error) {
	s := NewShredder(chunkDir, root)
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	for _, d := range docs {
		if err = s.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// Read reassembles every record from chunkDir's column streams against
// root. root should already reflect any projection: leaves pruned during
// graph construction have no stream opened and are absent from the output
// documents.
func Read(chunkDir string, root *fieldgraph.Node) (docs []value.Value, err error) {
	a := newAssembler(chunkDir, root)
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		doc, ok, nerr := a.Next()
		if nerr != nil {
			err = nerr
			return nil, err
		}
		if !ok {
			break
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
