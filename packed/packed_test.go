// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packed_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/dcstore/internal/iostream"
	"github.com/solidcoredata/dcstore/packed"
	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/value"
)

func writeDocs(t *testing.T, docs []value.Value) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk.packed")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	require.NoError(t, packed.Encode(w, docs))
	require.NoError(t, w.Close())
	return path
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	docs := []value.Value{
		value.NewDocument(map[string]value.Value{"a": value.NewInt32(1), "b": value.NewString("x")}),
		value.NewDocument(map[string]value.Value{"a": value.NewInt32(2)}),
		value.NewDocument(map[string]value.Value{}),
	}
	path := writeDocs(t, docs)

	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := packed.Decode(r, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range docs {
		require.True(t, value.Equal(docs[i], out[i]), "record %d", i)
	}
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

	out, err := packed.Decode(r, proj)
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

func TestEncodeRejectsNonDocumentElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.packed")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	err = packed.Encode(w, []value.Value{value.NewInt32(1)})
	require.Error(t, err)
}

func TestDecodeEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.packed")
	w, err := iostream.OpenFileWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := iostream.OpenFileReader(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := packed.Decode(r, nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
