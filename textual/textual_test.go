// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package textual_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/textual"
	"github.com/solidcoredata/dcstore/value"
)

func writeDocs(t *testing.T, docs []value.Value) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk.textual")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	require.NoError(t, textual.Encode(w, docs))
	require.NoError(t, w.Close())
	return path
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	docs := []value.Value{
		value.NewDocument(map[string]value.Value{
			"a": value.NewInt32(1),
			"b": value.NewList([]value.Value{value.NewString("x"), value.NewNull()}),
		}),
		value.NewDocument(map[string]value.Value{"a": value.NewInt32(-9001)}),
		value.NewDocument(map[string]value.Value{}),
	}
	path := writeDocs(t, docs)

	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := textual.Decode(r, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range docs {
		require.True(t, value.Equal(docs[i], out[i]), "record %d: want %#v got %#v", i, docs[i], out[i])
	}
}

func TestNumericKindsPreserved(t *testing.T) {
	docs := []value.Value{
		value.NewDocument(map[string]value.Value{
			"i32": value.NewInt32(-42),
			"u32": value.NewUInt32(42),
			"i64": value.NewInt64(-1 << 40),
			"u64": value.NewUInt64(1 << 40),
			"f32": value.NewFloat32(3.5),
			"f64": value.NewFloat64(2.71828),
			"bl":  value.NewBool(true),
		}),
	}
	path := writeDocs(t, docs)
	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := textual.Decode(r, nil)
	require.NoError(t, err)
	require.True(t, value.Equal(docs[0], out[0]))
}

func TestDecodeProjectionPushdown(t *testing.T) {
	docs := []value.Value{
		value.NewDocument(map[string]value.Value{
			"a": value.NewInt32(1),
			"b": value.NewDocument(map[string]value.Value{"c": value.NewString("x"), "d": value.NewBool(true)}),
		}),
	}
	path := writeDocs(t, docs)

	proj, err := projection.ParseDSL("b.c")
	require.NoError(t, err)

	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := textual.Decode(r, proj)
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, ok := out[0].Get("a")
	require.False(t, ok)
	b, ok := out[0].Get("b")
	require.True(t, ok)
	c, ok := b.Get("c")
	require.True(t, ok)
	require.Equal(t, "x", c.Str())
	_, ok = b.Get("d")
	require.False(t, ok)
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.textual")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("\n{\"a\":{\"i\":1}}\n\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := textual.Decode(r, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	a, ok := out[0].Get("a")
	require.True(t, ok)
	require.Equal(t, int32(1), a.Int32())
}

func TestEncodeRejectsNonDocumentElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.textual")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	err = textual.Encode(w, []value.Value{value.NewInt32(1)})
	require.Error(t, err)
}
