// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package textual implements the line-delimited textual chunk format:
// one JSON-style document object per line. Every value, at every
// nesting level below the top-level document fields, is written as a
// single-key JSON object keyed by the same tag byte the primitive codec
// uses ("i", "s", "o", "l", ...) so the textual and binary representations
// carry identical type information and round-trip losslessly without a
// schema.
package textual

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/primitive"
	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/value"
)

// Encode writes docs as one line per document, each a JSON object mapping
// field name to tagged value.
func Encode(w io.Writer, docs []value.Value) error {
	for i, d := range docs {
		if d.Kind() != value.Document {
			return chunkerr.Newf(chunkerr.SchemaError, "textual: element %d is not a document", i)
		}
		fields := make(map[string]interface{}, len(d.Doc()))
		for name, f := range d.Doc() {
			fields[name] = toJSON(f)
		}
		line, err := json.Marshal(fields)
		if err != nil {
			return chunkerr.Wrap(chunkerr.SchemaError, err, "textual: marshal")
		}
		if _, err := w.Write(line); err != nil {
			return chunkerr.Wrap(chunkerr.IoError, err, "textual: write line")
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return chunkerr.Wrap(chunkerr.IoError, err, "textual: write newline")
		}
	}
	return nil
}

func toJSON(v value.Value) interface{} {
	switch v.Kind() {
	case value.Null:
		return wrap(primitive.TagNull, nil)
	case value.Boolean:
		return wrap(primitive.TagBoolean, v.Bool())
	case value.Int32:
		return wrap(primitive.TagInt32, v.Int32())
	case value.UInt32:
		return wrap(primitive.TagUInt32, v.UInt32())
	case value.Int64:
		return wrap(primitive.TagInt64, v.Int64())
	case value.UInt64:
		return wrap(primitive.TagUInt64, v.UInt64())
	case value.Float32:
		return wrap(primitive.TagFloat32, v.Float32())
	case value.Float64:
		return wrap(primitive.TagFloat64, v.Float64())
	case value.String:
		return wrap(primitive.TagString, v.Str())
	case value.Document:
		m := make(map[string]interface{}, len(v.Doc()))
		for name, f := range v.Doc() {
			m[name] = toJSON(f)
		}
		return wrap(primitive.TagDocument, m)
	case value.List:
		items := v.List()
		arr := make([]interface{}, len(items))
		for i, e := range items {
			arr[i] = toJSON(e)
		}
		return wrap(primitive.TagList, arr)
	default:
		return wrap(primitive.TagNull, nil)
	}
}

func wrap(t primitive.Tag, v interface{}) map[string]interface{} {
	return map[string]interface{}{string(t): v}
}

// Decode reads documents line by line from r, applying proj (nil or
// projection.All() selects every field). Keys absent from proj are lexed
// to preserve line framing but discarded, mirroring the packed codec's
// projection pushdown.
func Decode(r iostream.Reader, proj *projection.Tree) ([]value.Value, error) {
	var out []value.Value
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			if line == "" {
				return out, nil
			}
		} else if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return out, nil
			}
			continue
		}
		doc, derr := decodeLine(line, proj)
		if derr != nil {
			return nil, derr
		}
		out = append(out, doc)
		if err == io.EOF {
			return out, nil
		}
	}
}

func decodeLine(line string, proj *projection.Tree) (value.Value, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return value.Value{}, err
	}
	return decodeFields(dec, proj)
}

// decodeValue decodes one tagged-value wrapper object, recursing into
// Document/List members with proj threaded through exactly as the
// primitive codec's DecodeProjected does.
func decodeValue(dec *json.Decoder, proj primitive.Projector) (value.Value, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return value.Value{}, err
	}
	if !dec.More() {
		return value.Value{}, chunkerr.New(chunkerr.CorruptInput, "textual: empty tagged value")
	}
	tagStr, err := tokenString(dec)
	if err != nil {
		return value.Value{}, err
	}
	if len(tagStr) != 1 {
		return value.Value{}, chunkerr.Newf(chunkerr.CorruptInput, "textual: unknown tag %q", tagStr)
	}
	var result value.Value
	switch primitive.Tag(tagStr[0]) {
	case primitive.TagNull:
		if _, err := dec.Token(); err != nil {
			return value.Value{}, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: read null")
		}
		result = value.NewNull()
	case primitive.TagBoolean:
		b, err := tokenBool(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewBool(b)
	case primitive.TagInt32:
		n, err := tokenInt(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewInt32(int32(n))
	case primitive.TagUInt32:
		n, err := tokenUint(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewUInt32(uint32(n))
	case primitive.TagInt64:
		n, err := tokenInt(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewInt64(n)
	case primitive.TagUInt64:
		n, err := tokenUint(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewUInt64(n)
	case primitive.TagFloat32:
		f, err := tokenFloat(dec, 32)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewFloat32(float32(f))
	case primitive.TagFloat64:
		f, err := tokenFloat(dec, 64)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewFloat64(f)
	case primitive.TagString:
		s, err := tokenString(dec)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewString(s)
	case primitive.TagDocument:
		v, err := decodeDocumentBody(dec, proj)
		if err != nil {
			return value.Value{}, err
		}
		result = v
	case primitive.TagList:
		v, err := decodeListBody(dec, proj)
		if err != nil {
			return value.Value{}, err
		}
		result = v
	default:
		return value.Value{}, chunkerr.Newf(chunkerr.CorruptInput, "textual: unknown tag %q", tagStr)
	}
	if dec.More() {
		return value.Value{}, chunkerr.New(chunkerr.CorruptInput, "textual: tagged value has extra members")
	}
	if _, err := dec.Token(); err != nil {
		return value.Value{}, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: close tagged value")
	}
	return result, nil
}

// decodeFields decodes an object body (the opening '{' already consumed)
// into a Document, applying proj to each member exactly as
// primitive.decodeDocument does for the binary codec: proj == nil or a
// leaf includes everything; otherwise unselected keys are lexed via
// skipValue and discarded, preserving line/token framing.
func decodeFields(dec *json.Decoder, proj primitive.Projector) (value.Value, error) {
	fields := map[string]value.Value{}
	for dec.More() {
		key, err := tokenString(dec)
		if err != nil {
			return value.Value{}, err
		}
		if proj == nil || proj.IsLeaf() {
			v, err := decodeValue(dec, proj)
			if err != nil {
				return value.Value{}, err
			}
			fields[key] = v
			continue
		}
		child, ok := proj.Child(key)
		if !ok {
			if err := skipValue(dec); err != nil {
				return value.Value{}, err
			}
			continue
		}
		v, err := decodeValue(dec, child)
		if err != nil {
			return value.Value{}, err
		}
		fields[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return value.Value{}, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: close document")
	}
	return value.NewDocument(fields), nil
}

func decodeDocumentBody(dec *json.Decoder, proj primitive.Projector) (value.Value, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return value.Value{}, err
	}
	return decodeFields(dec, proj)
}

func decodeListBody(dec *json.Decoder, proj primitive.Projector) (value.Value, error) {
	if err := expectDelim(dec, '['); err != nil {
		return value.Value{}, err
	}
	var items []value.Value
	for dec.More() {
		v, err := decodeValue(dec, proj)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return value.Value{}, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: close list")
	}
	return value.NewList(items), nil
}

// skipValue discards the next complete JSON value (scalar or nested
// structure) without materializing it.
func skipValue(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: skip")
	}
	delim, ok := t.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	for dec.More() {
		if delim == '{' {
			if _, err := dec.Token(); err != nil {
				return chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: skip key")
			}
		}
		if err := skipValue(dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: skip close")
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	t, err := dec.Token()
	if err != nil {
		return chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: read token")
	}
	d, ok := t.(json.Delim)
	if !ok || d != want {
		return chunkerr.Newf(chunkerr.CorruptInput, "textual: expected %q, got %v", want, t)
	}
	return nil
}

func tokenString(dec *json.Decoder) (string, error) {
	t, err := dec.Token()
	if err != nil {
		return "", chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: read string")
	}
	s, ok := t.(string)
	if !ok {
		return "", chunkerr.Newf(chunkerr.CorruptInput, "textual: expected string, got %v", t)
	}
	return s, nil
}

func tokenBool(dec *json.Decoder) (bool, error) {
	t, err := dec.Token()
	if err != nil {
		return false, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: read bool")
	}
	b, ok := t.(bool)
	if !ok {
		return false, chunkerr.Newf(chunkerr.CorruptInput, "textual: expected bool, got %v", t)
	}
	return b, nil
}

func tokenNumber(dec *json.Decoder) (json.Number, error) {
	t, err := dec.Token()
	if err != nil {
		return "", chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: read number")
	}
	n, ok := t.(json.Number)
	if !ok {
		return "", chunkerr.Newf(chunkerr.CorruptInput, "textual: expected number, got %v", t)
	}
	return n, nil
}

func tokenInt(dec *json.Decoder) (int64, error) {
	n, err := tokenNumber(dec)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: parse int")
	}
	return v, nil
}

func tokenUint(dec *json.Decoder) (uint64, error) {
	n, err := tokenNumber(dec)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: parse uint")
	}
	return v, nil
}

func tokenFloat(dec *json.Decoder, bits int) (float64, error) {
	n, err := tokenNumber(dec)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(n.String(), bits)
	if err != nil {
		return 0, chunkerr.Wrap(chunkerr.CorruptInput, err, "textual: parse float")
	}
	return v, nil
}
