// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package primitive implements the fixed-endianness, tag-prefixed binary
// encoding of value.Value shared by the packed and columnar formats.
// Encoding is little-endian with no alignment and no framing between
// primitives beyond each value's own tag and length prefix.
package primitive

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/value"
)

// byteReader is the narrow capability Decode/Skip need: a single byte at a
// time for the tag, and bulk reads for fixed/variable payloads.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// Encode appends the tagged encoding of v to w. Document member order is
// unspecified; this implementation writes them in
// the order value.Value.Doc()'s map ranges over.
func Encode(w io.Writer, v value.Value) error {
	switch v.Kind() {
	case value.Null:
		return writeTag(w, TagNull)
	case value.Boolean:
		if err := writeTag(w, TagBoolean); err != nil {
			return err
		}
		b := byte(0)
		if v.Bool() {
			b = 1
		}
		return writeAll(w, []byte{b})
	case value.Int32:
		return writeFixed32(w, TagInt32, uint32(v.Int32()))
	case value.UInt32:
		return writeFixed32(w, TagUInt32, v.UInt32())
	case value.Int64:
		return writeFixed64(w, TagInt64, uint64(v.Int64()))
	case value.UInt64:
		return writeFixed64(w, TagUInt64, v.UInt64())
	case value.Float32:
		return writeFixed32(w, TagFloat32, math.Float32bits(v.Float32()))
	case value.Float64:
		return writeFixed64(w, TagFloat64, math.Float64bits(v.Float64()))
	case value.String:
		return writeString(w, TagString, v.Str())
	case value.Document:
		return encodeDocument(w, v)
	case value.List:
		return encodeList(w, v)
	default:
		return chunkerr.Newf(chunkerr.SchemaError, "primitive: unknown value kind %v", v.Kind())
	}
}

func encodeDocument(w io.Writer, v value.Value) error {
	var body []byte
	buf := &growBuffer{}
	for name, field := range v.Doc() {
		if err := writeLenPrefixed(buf, []byte(name)); err != nil {
			return err
		}
		if err := Encode(buf, field); err != nil {
			return err
		}
	}
	body = buf.b
	if err := writeTag(w, TagDocument); err != nil {
		return err
	}
	return writeLenPrefixedBody(w, body)
}

func encodeList(w io.Writer, v value.Value) error {
	buf := &growBuffer{}
	for _, item := range v.List() {
		if err := Encode(buf, item); err != nil {
			return err
		}
	}
	if err := writeTag(w, TagList); err != nil {
		return err
	}
	return writeLenPrefixedBody(w, buf.b)
}

// growBuffer is a minimal io.Writer sink; used instead of bytes.Buffer only
// to avoid importing bytes purely for Write — kept trivial on purpose.
type growBuffer struct{ b []byte }

func (g *growBuffer) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

func writeTag(w io.Writer, t Tag) error {
	return writeAll(w, []byte{byte(t)})
}

func writeAll(w io.Writer, p []byte) error {
	_, err := w.Write(p)
	if err != nil {
		return chunkerr.Wrap(chunkerr.IoError, err, "primitive: write")
	}
	return nil
}

func writeFixed32(w io.Writer, t Tag, v uint32) error {
	if err := writeTag(w, t); err != nil {
		return err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return writeAll(w, b[:])
}

func writeFixed64(w io.Writer, t Tag, v uint64) error {
	if err := writeTag(w, t); err != nil {
		return err
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return writeAll(w, b[:])
}

func writeString(w io.Writer, t Tag, s string) error {
	if err := writeTag(w, t); err != nil {
		return err
	}
	return writeLenPrefixed(w, []byte(s))
}

func writeLenPrefixed(w io.Writer, p []byte) error {
	var lb [4]byte
	binary.LittleEndian.PutUint32(lb[:], uint32(len(p)))
	if err := writeAll(w, lb[:]); err != nil {
		return err
	}
	return writeAll(w, p)
}

// writeLenPrefixedBody writes a 4-byte byte-length followed by body, used
// for Document/List whose length is the size of their already-serialized
// body rather than an element count.
func writeLenPrefixedBody(w io.Writer, body []byte) error {
	var lb [4]byte
	binary.LittleEndian.PutUint32(lb[:], uint32(len(body)))
	if err := writeAll(w, lb[:]); err != nil {
		return err
	}
	return writeAll(w, body)
}

// Decode reads one tagged value from r.
func Decode(r byteReader) (value.Value, error) {
	tag, err := readTag(r)
	if err != nil {
		return value.Value{}, err
	}
	return decodeTagged(r, tag)
}

func decodeTagged(r byteReader, tag Tag) (value.Value, error) {
	switch tag {
	case TagNull:
		return value.NewNull(), nil
	case TagBoolean:
		b, err := readN(r, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBool(b[0] != 0), nil
	case TagInt32:
		u, err := readFixed32(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt32(int32(u)), nil
	case TagUInt32:
		u, err := readFixed32(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewUInt32(u), nil
	case TagInt64:
		u, err := readFixed64(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt64(int64(u)), nil
	case TagUInt64:
		u, err := readFixed64(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewUInt64(u), nil
	case TagFloat32:
		u, err := readFixed32(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFloat32(math.Float32frombits(u)), nil
	case TagFloat64:
		u, err := readFixed64(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFloat64(math.Float64frombits(u)), nil
	case TagString:
		s, err := readLenPrefixedString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case TagDocument:
		return decodeDocument(r, nil)
	case TagList:
		return decodeList(r, nil)
	default:
		return value.Value{}, chunkerr.Newf(chunkerr.CorruptInput, "primitive: unknown tag %q", byte(tag))
	}
}

// decodeDocument reads a Document body. When proj is non-nil and not a
// leaf, members whose key is absent from proj's children are skipped
// instead of decoded. This is the projection-pushdown mechanism the packed
// codec drives; the textual codec mirrors it in its own decodeFields.
func decodeDocument(r byteReader, proj Projector) (value.Value, error) {
	bodyLen, err := readFixed32(r)
	if err != nil {
		return value.Value{}, err
	}
	lr := io.LimitReader(r, int64(bodyLen))
	body := &limitedByteReader{lr, r}
	fields := map[string]value.Value{}
	for {
		if body.remaining() <= 0 {
			break
		}
		key, err := readLenPrefixedString(body)
		if err != nil {
			return value.Value{}, err
		}
		if proj == nil || proj.IsLeaf() {
			v, err := Decode(body)
			if err != nil {
				return value.Value{}, err
			}
			fields[key] = v
			continue
		}
		child, ok := proj.Child(key)
		if !ok {
			if err := Skip(body); err != nil {
				return value.Value{}, err
			}
			continue
		}
		v, err := DecodeProjected(body, child)
		if err != nil {
			return value.Value{}, err
		}
		fields[key] = v
	}
	return value.NewDocument(fields), nil
}

func decodeList(r byteReader, proj Projector) (value.Value, error) {
	bodyLen, err := readFixed32(r)
	if err != nil {
		return value.Value{}, err
	}
	lr := io.LimitReader(r, int64(bodyLen))
	body := &limitedByteReader{lr, r}
	var items []value.Value
	for body.remaining() > 0 {
		v, err := DecodeProjected(body, proj)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.NewList(items), nil
}

// Projector is the minimal capability DecodeProjected needs from a
// projection tree node: whether it is a leaf (include everything below)
// and how to look up a named child. projection.Tree implements this.
type Projector interface {
	IsLeaf() bool
	Child(name string) (Projector, bool)
}

// DecodeProjected decodes one value honoring proj the way a Document body
// honors it for its members: Document/List recurse with proj threaded
// through; primitives ignore it entirely (a primitive under a selected key
// is always fully decoded).
func DecodeProjected(r byteReader, proj Projector) (value.Value, error) {
	tag, err := readTag(r)
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case TagDocument:
		return decodeDocument(r, proj)
	case TagList:
		return decodeList(r, proj)
	default:
		return decodeTagged(r, tag)
	}
}

// Skip consumes exactly as many bytes as Encode would have produced for the
// value at the current read position, without materializing it — the
// mechanism that makes projection pushdown O(matched-bytes).
func Skip(r byteReader) error {
	tag, err := readTag(r)
	if err != nil {
		return err
	}
	switch tag {
	case TagNull:
		return nil
	case TagBoolean:
		_, err := readN(r, 1)
		return err
	case TagInt32, TagUInt32, TagFloat32:
		_, err := readN(r, 4)
		return err
	case TagInt64, TagUInt64, TagFloat64:
		_, err := readN(r, 8)
		return err
	case TagString, TagDocument, TagList:
		n, err := readFixed32(r)
		if err != nil {
			return err
		}
		_, err = readN(r, int(n))
		return err
	default:
		return chunkerr.Newf(chunkerr.CorruptInput, "primitive: unknown tag %q", byte(tag))
	}
}

func readTag(r byteReader) (Tag, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, chunkerr.Wrap(chunkerr.CorruptInput, err, "primitive: read tag")
	}
	t := Tag(b)
	if !t.valid() {
		return 0, chunkerr.Newf(chunkerr.CorruptInput, "primitive: unknown tag %q", b)
	}
	return t, nil
}

func readN(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, chunkerr.Wrap(chunkerr.CorruptInput, err, "primitive: short read")
	}
	return buf, nil
}

func readFixed32(r io.Reader) (uint32, error) {
	b, err := readN(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readFixed64(r io.Reader) (uint64, error) {
	b, err := readN(r, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func readLenPrefixedString(r io.Reader) (string, error) {
	n, err := readFixed32(r)
	if err != nil {
		return "", err
	}
	b, err := readN(r, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// limitedByteReader adapts an io.LimitReader back into a byteReader (for
// ReadByte) while tracking remaining bytes so callers can detect "done".
type limitedByteReader struct {
	lr   io.Reader
	base byteReader
}

func (l *limitedByteReader) Read(p []byte) (int, error) { return l.lr.Read(p) }

func (l *limitedByteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(l.lr, b[:])
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *limitedByteReader) remaining() int64 {
	return l.lr.(*io.LimitedReader).N
}
