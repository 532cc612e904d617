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

// Verify walks the whole tree and checks its structural invariants: key
// order within and across nodes, node fill, equal leaf depth, parent and
// sibling links, the leaf chain, and the key count.  It returns an error
// wrapping ErrCorrupted describing the first violation found.
func (t *BPlusTree[K, V]) Verify() error {
	v := verifier[K, V]{t: t, leafDepth: -1}
	root := t.rootNode()
	if root == nil {
		return corrupted(t.root, "root is not allocated")
	}
	if err := v.walk(root, noNode, 0, nil, nil); err != nil {
		return err
	}
	for depth, level := range v.levels {
		if err := v.checkChain(depth, level); err != nil {
			return err
		}
	}
	if v.keys != t.length {
		return corrupted(t.root, "leaves hold %d keys, tree length is %d", v.keys, t.length)
	}
	if live := t.arena.live(); live != v.nodes {
		return corrupted(t.root, "%d live nodes in arena, %d reachable", live, v.nodes)
	}
	return nil
}

type verifier[K, V any] struct {
	t         *BPlusTree[K, V]
	levels    [][]node[K, V]
	leafDepth int
	keys      int
	nodes     int
}

// walk checks n and its subtree.  Every key must satisfy lo <= key < hi,
// where a nil bound is open.
func (v *verifier[K, V]) walk(n node[K, V], parent nodeID, depth int, lo, hi *K) error {
	t := v.t
	h := n.hdr()
	if h.t != t || t.arena.get(h.id) != n {
		return corrupted(h.id, "not owned by this tree")
	}
	if h.parent != parent {
		return corrupted(h.id, "parent is %d, want %d", h.parent, parent)
	}
	v.nodes++
	if len(v.levels) <= depth {
		v.levels = append(v.levels, nil)
	}
	v.levels[depth] = append(v.levels[depth], n)

	if len(h.keys) > t.order {
		return corrupted(h.id, "%d keys exceed order %d", len(h.keys), t.order)
	}
	if parent != noNode && h.isUnderflow() {
		return corrupted(h.id, "%d keys below minimum %d", len(h.keys), h.capacity()/2)
	}
	for i, k := range h.keys {
		if i > 0 && !t.less(h.keys[i-1], k) {
			return corrupted(h.id, "keys %v and %v out of order", h.keys[i-1], k)
		}
		if lo != nil && t.less(k, *lo) {
			return corrupted(h.id, "key %v below separator %v", k, *lo)
		}
		if hi != nil && !t.less(k, *hi) {
			return corrupted(h.id, "key %v not below separator %v", k, *hi)
		}
	}

	switch x := n.(type) {
	case *leafNode[K, V]:
		if len(x.values) != len(x.keys) {
			return corrupted(h.id, "%d values for %d keys", len(x.values), len(x.keys))
		}
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if depth != v.leafDepth {
			return corrupted(h.id, "leaf at depth %d, want %d", depth, v.leafDepth)
		}
		v.keys += len(x.keys)
	case *internalNode[K, V]:
		if len(x.keys) == 0 {
			return corrupted(h.id, "internal node without keys")
		}
		if len(x.children) != len(x.keys)+1 {
			return corrupted(h.id, "%d children for %d keys", len(x.children), len(x.keys))
		}
		for i := range x.children {
			c := x.child(i)
			if c == nil {
				return corrupted(h.id, "child %d is not allocated", i)
			}
			clo, chi := lo, hi
			if i > 0 {
				clo = &x.keys[i-1]
			}
			if i < len(x.keys) {
				chi = &x.keys[i]
			}
			if err := v.walk(c, h.id, depth+1, clo, chi); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkChain checks that the sibling links of one level connect its nodes
// left to right, in the order the tree reaches them.
func (v *verifier[K, V]) checkChain(depth int, level []node[K, V]) error {
	for i, n := range level {
		h := n.hdr()
		want := noNode
		if i > 0 {
			want = level[i-1].hdr().id
		}
		if h.left != want {
			return corrupted(h.id, "left sibling at depth %d is %d, want %d", depth, h.left, want)
		}
		want = noNode
		if i+1 < len(level) {
			want = level[i+1].hdr().id
		}
		if h.right != want {
			return corrupted(h.id, "right sibling at depth %d is %d, want %d", depth, h.right, want)
		}
	}
	return nil
}
