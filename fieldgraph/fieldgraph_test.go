// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldgraph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/dcstore/fieldgraph"
	"github.com/solidcoredata/dcstore/projection"
	"github.com/solidcoredata/dcstore/schema"
)

func mustSchema(t *testing.T, src string) *schema.Node {
	t.Helper()
	n, err := schema.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return n
}

func TestBuildFlat(t *testing.T) {
	root := fieldgraph.Build(mustSchema(t, `{"a":"int","b":"string"}`), nil)
	require.True(t, root.IsRoot())
	require.Equal(t, uint16(0), root.Definition())
	require.Equal(t, uint32(0), root.MaxRepetition())

	a, ok := root.Child("a")
	require.True(t, ok)
	require.True(t, a.IsLeaf())
	require.Equal(t, uint16(1), a.Definition())
	require.Equal(t, uint32(0), a.MaxRepetition())
	require.Equal(t, "a", a.Path())
}

func TestBuildNestedRepeated(t *testing.T) {
	root := fieldgraph.Build(mustSchema(t, `{"g":[{"v":"int"}]}`), nil)
	g, ok := root.Child("g")
	require.True(t, ok)
	require.Equal(t, fieldgraph.Repeated, g.Label())
	require.Equal(t, uint32(1), g.MaxRepetition())

	v, ok := g.Child("v")
	require.True(t, ok)
	require.True(t, v.IsLeaf())
	require.Equal(t, uint32(1), v.MaxRepetition())
	require.Equal(t, uint16(2), v.Definition())
	require.Equal(t, "g.v", v.Path())
}

func TestLeavesDepthFirstOrder(t *testing.T) {
	root := fieldgraph.Build(mustSchema(t, `{"a":"int","g":[{"v":"int","w":"bool"}],"b":"string"}`), nil)
	leaves := fieldgraph.Leaves(root)
	var paths []string
	for _, l := range leaves {
		paths = append(paths, l.Path())
	}
	require.Equal(t, []string{"a", "g.v", "g.w", "b"}, paths)
}

func TestProjectionPrunesChildren(t *testing.T) {
	full := mustSchema(t, `{"g":[{"v":"int","w":"bool"}],"a":"int"}`)
	proj, err := projection.ParseDSL("g.v")
	require.NoError(t, err)
	root := fieldgraph.Build(full, proj)
	leaves := fieldgraph.Leaves(root)
	require.Len(t, leaves, 1)
	require.Equal(t, "g.v", leaves[0].Path())
}

func TestProjectionAllKeepsEverything(t *testing.T) {
	full := mustSchema(t, `{"g":[{"v":"int","w":"bool"}],"a":"int"}`)
	root := fieldgraph.Build(full, projection.All())
	require.Len(t, fieldgraph.Leaves(root), 3)
}

// TestLCASymmetric checks lca(a, b) == lca(b, a) and lca(a, a) == a, both
// for the direct function and the memoizing cache.
func TestLCASymmetric(t *testing.T) {
	root := fieldgraph.Build(mustSchema(t, `{"g":[{"v":"int","w":"bool"}],"a":"int"}`), nil)
	g, _ := root.Child("g")
	v, _ := g.Child("v")
	w, _ := g.Child("w")
	a, _ := root.Child("a")

	require.Same(t, g, fieldgraph.LCA(v, w))
	require.Same(t, g, fieldgraph.LCA(w, v))
	require.Same(t, v, fieldgraph.LCA(v, v))
	require.Same(t, root, fieldgraph.LCA(v, a))
	require.Same(t, root, fieldgraph.LCA(a, v))

	cache := fieldgraph.NewCache()
	require.Same(t, cache.LCA(v, w), cache.LCA(w, v))
	require.Same(t, v, cache.LCA(v, v))
}

func TestPathBetween(t *testing.T) {
	root := fieldgraph.Build(mustSchema(t, `{"g":[{"v":"int"}]}`), nil)
	g, _ := root.Child("g")
	v, _ := g.Child("v")

	path := fieldgraph.PathBetween(v, root)
	require.Equal(t, []*fieldgraph.Node{v, g}, path)

	full := fieldgraph.PathBetween(v, nil)
	require.Equal(t, []*fieldgraph.Node{v, g, root}, full)
}
