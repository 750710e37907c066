// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package columnar implements the column-shredded chunk format: the
// shredder decomposes records into per-leaf (r, d, value) triple streams
// against a field graph, and the assembler drives an FSM/LCA-based merge of
// those streams back into records.
package columnar

import (
	"encoding/binary"
	"io"
	"path/filepath"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/fieldgraph"
	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/primitive"
	"github.com/solidcoredata/dcstore/value"
)

// leafPath returns the on-disk path of leaf's column stream:
// "chunk_dir/.A.B.…L", a leading dot followed by the dot-separated
// root-to-leaf path.
func leafPath(chunkDir string, leaf *fieldgraph.Node) string {
	return filepath.Join(chunkDir, "."+leaf.Path())
}

// leafName is the same path, without the directory, used for log/error
// messages.
func leafName(leaf *fieldgraph.Node) string {
	return "." + leaf.Path()
}

// writeTriple appends one (r, d, value) triple to w: a 4-byte little-endian
// repetition level, a 2-byte little-endian definition level, then the
// primitive-codec encoding of value.
func writeTriple(w iostream.Writer, r uint32, d uint16, v value.Value) error {
	var hdr [6]byte
	binary.LittleEndian.PutUint32(hdr[0:4], r)
	binary.LittleEndian.PutUint16(hdr[4:6], d)
	if _, err := w.Write(hdr[:]); err != nil {
		return chunkerr.Wrap(chunkerr.IoError, err, "columnar: write triple header")
	}
	return primitive.Encode(w, v)
}

// triple is one decoded (r, d, value) entry from a leaf's column stream.
type triple struct {
	r uint32
	d uint16
	v value.Value
}

// readTriple reads one triple from r.
func readTriple(r iostream.Reader) (triple, error) {
	hdr, err := readN(r, 6)
	if err != nil {
		return triple{}, err
	}
	t := triple{
		r: binary.LittleEndian.Uint32(hdr[0:4]),
		d: binary.LittleEndian.Uint16(hdr[4:6]),
	}
	v, err := primitive.Decode(r)
	if err != nil {
		return triple{}, err
	}
	t.v = v
	return t, nil
}

// peekRepetition reads the 4-byte repetition level of the next unread
// triple without consuming it, the Go equivalent of the reference reader's
// read-then-seek-back-4 idiom — Peek avoids needing a real seek.
func peekRepetition(r iostream.Reader) (uint32, error) {
	b, err := r.Peek(4)
	if err == io.EOF {
		return 0, chunkerr.Wrap(chunkerr.CorruptInput, err, "columnar: truncated repetition level")
	}
	if err != nil {
		return 0, chunkerr.Wrap(chunkerr.IoError, err, "columnar: peek repetition level")
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readN(r iostream.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		k, err := r.Read(buf[got:])
		got += k
		if err != nil {
			return nil, chunkerr.Wrap(chunkerr.CorruptInput, err, "columnar: short triple read")
		}
	}
	return buf, nil
}
