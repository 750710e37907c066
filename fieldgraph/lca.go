// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldgraph

// LCA returns the lowest common ancestor of a and b in their shared field
// graph, by walking both root paths and returning the deepest node at
// which they still agree, mirroring FieldDescriptor::LowestCommonAncestor
// in the reference implementation.
//
// lca(a, b) == lca(b, a) and lca(a, a) == a hold because both paths start
// at the same root and the deepest-agreement scan is symmetric in a and b.
func LCA(a, b *Node) *Node {
	pa := pathToRoot(a)
	pb := pathToRoot(b)
	reverseInPlace(pa)
	reverseInPlace(pb)

	var common *Node
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			break
		}
		common = pa[i]
	}
	return common
}

func pathToRoot(n *Node) []*Node {
	out := make([]*Node, 0, int(n.def)+1)
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}

func reverseInPlace(ns []*Node) {
	for i, j := 0, len(ns)-1; i < j; i, j = i+1, j-1 {
		ns[i], ns[j] = ns[j], ns[i]
	}
}

// PathBetween returns the nodes strictly from "from" up to (but not
// including) "to", in child-to-ancestor order. The assembler reverses this
// to obtain a descending path from an ancestor down to a leaf. A nil "to"
// walks all the way to the root.
func PathBetween(from, to *Node) []*Node {
	var out []*Node
	for cur := from; cur != nil && cur != to; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}

// Cache memoizes pairwise LCA lookups keyed by the pair of stable per-node
// path hashes: a plain map is sufficient given the small number of leaves
// typical of real schemas. Lookups are commutative; Cache normalizes the
// key order internally.
type Cache struct {
	m map[cacheKey]*Node
}

type cacheKey struct{ lo, hi uint64 }

func NewCache() *Cache {
	return &Cache{m: map[cacheKey]*Node{}}
}

func makeKey(a, b *Node) cacheKey {
	ha, hb := a.hash, b.hash
	if ha > hb {
		ha, hb = hb, ha
	}
	return cacheKey{lo: ha, hi: hb}
}

// LCA returns the cached (or freshly computed and then cached) lowest
// common ancestor of a and b.
func (c *Cache) LCA(a, b *Node) *Node {
	if a == b {
		return a
	}
	k := makeKey(a, b)
	if v, ok := c.m[k]; ok {
		return v
	}
	v := LCA(a, b)
	c.m[k] = v
	return v
}

// MaxRepetition returns the max repetition level of LCA(a, b).
func (c *Cache) MaxRepetition(a, b *Node) uint32 {
	return c.LCA(a, b).maxRep
}
