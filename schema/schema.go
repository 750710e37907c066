// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema parses the JSON-shaped schema document that describes a
// chunk's field layout: leaves are string tags naming a primitive type
// ("int", "double", "bool", "string"); internal nodes are either a nested
// object (an optional nested record) or a one-element list whose sole
// element is a nested schema (a repeated field).
//
// encoding/json is used only at this one boundary to tokenize the schema's
// JSON text; see DESIGN.md for why no third-party JSON library in the
// retrieved pack was a better fit here. Object key order is preserved by
// walking json.Decoder tokens by hand rather than decoding into a map, so
// that fieldgraph construction (and therefore leaf/FSM ordering) is
// reproducible from run to run for the same schema file.
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/solidcoredata/dcstore/chunkerr"
)

// PrimitiveTag is one of the four recognized leaf type names.
type PrimitiveTag string

const (
	TagInt    PrimitiveTag = "int"
	TagDouble PrimitiveTag = "double"
	TagBool   PrimitiveTag = "bool"
	TagString PrimitiveTag = "string"
)

func (t PrimitiveTag) valid() bool {
	switch t {
	case TagInt, TagDouble, TagBool, TagString:
		return true
	default:
		return false
	}
}

// Field is a single named child of an Object node, in schema-declared
// order.
type Field struct {
	Name string
	Node *Node
}

// Node is one node of the parsed schema tree.
type Node struct {
	// Repeated is true when this node was declared as a one-element list;
	// Fields/Primitive then describe the wrapped element schema.
	Repeated bool

	// Primitive is non-empty for leaf nodes.
	Primitive PrimitiveTag

	// Fields holds this node's children, in declaration order, for object
	// nodes (Primitive == "").
	Fields []Field
}

func (n *Node) IsPrimitive() bool { return n.Primitive != "" }

// Parse reads a schema document from r. The top-level document must be a
// JSON object: a schema is itself a document-shaped tree.
func Parse(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, chunkerr.Wrap(chunkerr.SchemaError, err, "schema: read root token")
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, chunkerr.New(chunkerr.SchemaError, "schema: root is not an object")
	}
	root, err := parseObjectBody(dec)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// parseObjectBody consumes field/value pairs and the matching '}'; the
// caller has already consumed the opening '{' with Token().
func parseObjectBody(dec *json.Decoder) (*Node, error) {
	node := &Node{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, chunkerr.Wrap(chunkerr.SchemaError, err, "schema: read field name")
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, chunkerr.New(chunkerr.SchemaError, "schema: object key is not a string")
		}
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Fields = append(node.Fields, Field{Name: name, Node: child})
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, chunkerr.Wrap(chunkerr.SchemaError, err, "schema: read object close")
	}
	return node, nil
}

// parseValue parses one schema subtree: a primitive string tag, a nested
// object, or a one-element array wrapping either of those.
func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, chunkerr.Wrap(chunkerr.SchemaError, err, "schema: read value")
	}
	switch t := tok.(type) {
	case string:
		tag := PrimitiveTag(t)
		if !tag.valid() {
			return nil, chunkerr.Newf(chunkerr.SchemaError, "schema: unsupported leaf tag %q", t)
		}
		return &Node{Primitive: tag}, nil
	case json.Delim:
		switch t {
		case '{':
			return parseObjectBody(dec)
		case '[':
			inner, err := parseArrayBody(dec)
			if err != nil {
				return nil, err
			}
			inner.Repeated = true
			return inner, nil
		default:
			return nil, chunkerr.Newf(chunkerr.SchemaError, "schema: unexpected delimiter %v", t)
		}
	default:
		return nil, chunkerr.Newf(chunkerr.SchemaError, "schema: unsupported value %v (%T)", tok, tok)
	}
}

// parseArrayBody parses the body of a one-element schema array.
func parseArrayBody(dec *json.Decoder) (*Node, error) {
	if !dec.More() {
		return nil, chunkerr.New(chunkerr.SchemaError, "schema: repeated field has no element schema")
	}
	elem, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, chunkerr.New(chunkerr.SchemaError, "schema: repeated field schema must have exactly one element")
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, chunkerr.Wrap(chunkerr.SchemaError, err, "schema: read array close")
	}
	return elem, nil
}

func (n *Node) String() string {
	if n.IsPrimitive() {
		return fmt.Sprintf("primitive(%s repeated=%v)", n.Primitive, n.Repeated)
	}
	return fmt.Sprintf("object(%d fields, repeated=%v)", len(n.Fields), n.Repeated)
}
