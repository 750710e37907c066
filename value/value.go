// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package value defines the tagged-union document value model shared by
// every codec in dcstore: the textual, packed and columnar formats all
// read and write the same eleven-variant Value.
package value

// Kind identifies which of the eleven Value variants a Value holds.
type Kind int

const (
	Null Kind = iota
	Boolean
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String
	Document
	List
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "bool"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	case Int64:
		return "int64"
	case UInt64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Document:
		return "document"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether k is one of the nine scalar variants
// (everything except Document and List).
func (k Kind) IsPrimitive() bool {
	return k != Document && k != List
}

// Value is a tagged sum of eleven variants: Null, Boolean, Int32, UInt32,
// Int64, UInt64, Float32, Float64, String, Document and List. Every
// consumer dispatches on Kind rather than on a class hierarchy.
//
// A Value is immutable after construction: Doc and List return the
// underlying maps/slices directly for read access, but callers must not
// mutate them once a Value has been handed to a writer.
type Value struct {
	kind Kind

	boolean bool
	i32     int32
	u32     uint32
	i64     int64
	u64     uint64
	f32     float32
	f64     float64
	str     string
	doc     map[string]Value
	list    []Value
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func NewNull() Value { return Value{kind: Null} }

func NewBool(b bool) Value { return Value{kind: Boolean, boolean: b} }
func NewInt32(i int32) Value { return Value{kind: Int32, i32: i} }
func NewUInt32(u uint32) Value { return Value{kind: UInt32, u32: u} }
func NewInt64(i int64) Value { return Value{kind: Int64, i64: i} }
func NewUInt64(u uint64) Value { return Value{kind: UInt64, u64: u} }
func NewFloat32(f float32) Value { return Value{kind: Float32, f32: f} }
func NewFloat64(f float64) Value { return Value{kind: Float64, f64: f} }
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewDocument builds a Document value from a map. The map becomes owned by
// the Value and must not be mutated afterwards.
func NewDocument(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: Document, doc: fields}
}

// NewList builds a List value from a slice. The slice becomes owned by the
// Value and must not be mutated afterwards.
func NewList(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, list: items}
}

func (v Value) Bool() bool          { return v.boolean }
func (v Value) Int32() int32        { return v.i32 }
func (v Value) UInt32() uint32      { return v.u32 }
func (v Value) Int64() int64        { return v.i64 }
func (v Value) UInt64() uint64      { return v.u64 }
func (v Value) Float32() float32    { return v.f32 }
func (v Value) Float64() float64    { return v.f64 }
func (v Value) Str() string         { return v.str }

// Doc returns the field map of a Document value. Calling it on any other
// Kind returns nil.
func (v Value) Doc() map[string]Value {
	if v.kind != Document {
		return nil
	}
	return v.doc
}

// List returns the element slice of a List value. Calling it on any other
// Kind returns nil.
func (v Value) List() []Value {
	if v.kind != List {
		return nil
	}
	return v.list
}

// Get looks up a field of a Document value, reporting whether it was
// present (and non-absent; it may still be Null).
func (v Value) Get(field string) (Value, bool) {
	if v.kind != Document {
		return Value{}, false
	}
	f, ok := v.doc[field]
	return f, ok
}

// Equal reports deep structural equality, used by round-trip tests.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Boolean:
		return a.boolean == b.boolean
	case Int32:
		return a.i32 == b.i32
	case UInt32:
		return a.u32 == b.u32
	case Int64:
		return a.i64 == b.i64
	case UInt64:
		return a.u64 == b.u64
	case Float32:
		return a.f32 == b.f32
	case Float64:
		return a.f64 == b.f64
	case String:
		return a.str == b.str
	case Document:
		if len(a.doc) != len(b.doc) {
			return false
		}
		for k, av := range a.doc {
			bv, ok := b.doc[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case List:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}
