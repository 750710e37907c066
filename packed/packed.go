// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packed implements the packed binary chunk format: a
// concatenation of top-level Document encodings with no separators,
// layered directly on the primitive codec. Projection pushdown during
// decode skips members the projection doesn't select using the primitive
// codec's Skip, giving O(matched-bytes) reads instead of parse-then-filter.
package packed

import (
	"io"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/primitive"
	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/value"
)

// Encode writes docs as a concatenation of Document encodings. Every
// element of docs must be a value.Document.
func Encode(w io.Writer, docs []value.Value) error {
	for i, d := range docs {
		if d.Kind() != value.Document {
			return chunkerr.Newf(chunkerr.SchemaError, "packed: element %d is not a document", i)
		}
		if err := primitive.Encode(w, d); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads documents from r until EOF, applying proj (nil or
// projection.All() selects every field). The first byte after a complete
// document that is not a document tag is CorruptInput: the packed format is
// restricted to a sequence of top-level Documents.
func Decode(r iostream.Reader, proj *projection.Tree) ([]value.Value, error) {
	var out []value.Value
	for {
		if r.Eof() {
			return out, nil
		}
		v, err := primitive.DecodeProjected(r, proj)
		if err != nil {
			return nil, err
		}
		if v.Kind() != value.Document {
			return nil, chunkerr.New(chunkerr.CorruptInput, "packed: top-level value is not a document")
		}
		out = append(out, v)
	}
}
