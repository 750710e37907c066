// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package columnar

import "github.com/solidcoredata/dcstore/fieldgraph"

// fsm maps each leaf to a slice indexed by repetition level: fsm[leaf][r]
// is the leaf that owns the next triple once a triple at repetition level
// r has just been read from leaf. A nil entry means "no more leaves" (only
// possible for the last leaf at r = 0).
type fsm map[*fieldgraph.Node][]*fieldgraph.Node

// buildFSM constructs the transition table given leaves in depth-first
// left-to-right order, mirroring RecordReader::ConstructFSM.
func buildFSM(leaves []*fieldgraph.Node, cache *fieldgraph.Cache) fsm {
	table := make(fsm, len(leaves))
	for i, current := range leaves {
		maxLevel := current.MaxRepetition()

		var barrier *fieldgraph.Node
		if i+1 < len(leaves) {
			barrier = leaves[i+1]
		}
		var barrierLevel uint32
		if barrier != nil {
			barrierLevel = cache.MaxRepetition(current, barrier)
		}

		toFields := make([]*fieldgraph.Node, maxLevel+1)

		for j := 0; j <= i; j++ {
			if leaves[j].MaxRepetition() <= barrierLevel {
				continue
			}
			backLevel := cache.MaxRepetition(current, leaves[j])
			if toFields[backLevel] == nil {
				toFields[backLevel] = leaves[j]
			}
		}

		for level := int(maxLevel); level > int(barrierLevel); level-- {
			if toFields[level] == nil {
				toFields[level] = toFields[level+1]
			}
		}

		for level := 0; level <= int(barrierLevel); level++ {
			toFields[level] = barrier
		}

		table[current] = toFields
	}
	return table
}
