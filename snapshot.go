// Copyright 2014-2022 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bplustree

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// NodeInfo describes one node of a Snapshot.
type NodeInfo[K any] struct {
	Keys     []K
	Children int
	Leaf     bool
}

// Snapshot is a copy of a tree's shape: every level from the root down, and
// the leaf chain in the order its sibling links give.
type Snapshot[K any] struct {
	Levels [][]NodeInfo[K]
	Leaves [][]K
}

// Snapshot copies the structure of the tree.  It does not modify the tree.
func (t *BPlusTree[K, V]) Snapshot() Snapshot[K] {
	var s Snapshot[K]
	level := []node[K, V]{t.rootNode()}
	for len(level) > 0 {
		var next []node[K, V]
		infos := make([]NodeInfo[K], 0, len(level))
		for _, n := range level {
			info := NodeInfo[K]{Keys: append([]K(nil), n.hdr().keys...)}
			switch x := n.(type) {
			case *leafNode[K, V]:
				info.Leaf = true
			case *internalNode[K, V]:
				info.Children = len(x.children)
				for i := range x.children {
					next = append(next, x.child(i))
				}
			}
			infos = append(infos, info)
		}
		s.Levels = append(s.Levels, infos)
		level = next
	}

	for n := t.leftmost(); n != nil; n = t.arena.get(n.hdr().right) {
		s.Leaves = append(s.Leaves, append([]K(nil), n.hdr().keys...))
	}
	return s
}

func (t *BPlusTree[K, V]) leftmost() node[K, V] {
	n := t.rootNode()
	for n.kind() == internalKind {
		n = n.(*internalNode[K, V]).child(0)
	}
	return n
}

// Keys returns the keys of the leaf chain, in order.
func (s Snapshot[K]) Keys() []K {
	var out []K
	for _, leaf := range s.Leaves {
		out = append(out, leaf...)
	}
	return out
}

// Height is the number of levels captured.
func (s Snapshot[K]) Height() int {
	return len(s.Levels)
}

// Digest hashes the snapshot.  Two snapshots of trees with the same shape and
// keys have the same digest.
func (s Snapshot[K]) Digest() uint64 {
	d := xxhash.New()
	for _, level := range s.Levels {
		d.WriteString("level")
		for _, n := range level {
			fmt.Fprintf(d, "|%t %d %v", n.Leaf, n.Children, n.Keys)
		}
	}
	d.WriteString("leaves")
	for _, leaf := range s.Leaves {
		fmt.Fprintf(d, "|%v", leaf)
	}
	return d.Sum64()
}
