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

// leafNode stores key/value pairs, values aligned index for index with keys.
// Leaves own no children; the level chain of leaves yields every key in
// order.
type leafNode[K, V any] struct {
	header[K, V]
	values items[V]
}

func (t *BPlusTree[K, V]) newLeaf() *leafNode[K, V] {
	n := &leafNode[K, V]{}
	n.t = t
	n.keys = make(items[K], 0, t.order+1)
	n.values = make(items[V], 0, t.order+1)
	t.arena.alloc(n)
	return n
}

func (n *leafNode[K, V]) kind() nodeKind { return leafKind }

func (n *leafNode[K, V]) find(key K) int {
	i := n.bsearch(key)
	if i < len(n.keys) && !n.t.less(key, n.keys[i]) {
		return i
	}
	return -1
}

// insert adds the pair at its ordered position.  An equal key already in the
// leaf has its value replaced, and the old value is returned.
func (n *leafNode[K, V]) insert(key K, value V) (_ V, _ bool) {
	i := n.bsearch(key)
	if i < len(n.keys) && !n.t.less(key, n.keys[i]) {
		out := n.values[i]
		n.values[i] = value
		return out, true
	}
	n.keys.insertAt(i, key)
	n.values.insertAt(i, value)
	return
}

func (n *leafNode[K, V]) delete(key K) (_ V, _ bool) {
	i := n.find(key)
	if i < 0 {
		return
	}
	n.keys.removeAt(i)
	return n.values.removeAt(i), true
}

// split keeps the entries before the median.  The new leaf starts at the
// median key, which is also the separator pushed up, so an exact lookup of the
// separator lands in the right leaf.
func (n *leafNode[K, V]) split() node[K, V] {
	mid := len(n.keys) / 2
	next := n.t.newLeaf()
	next.keys = append(next.keys, n.keys[mid:]...)
	next.values = append(next.values, n.values[mid:]...)
	n.keys.truncate(mid)
	n.values.truncate(mid)
	return next
}

func (n *leafNode[K, V]) mergePushUpKey(K, node[K, V], node[K, V]) node[K, V] {
	panic(unsupported("mergePushUpKey", leafKind))
}

func (n *leafNode[K, V]) transferChildren(node[K, V], node[K, V], int) {
	panic(unsupported("transferChildren", leafKind))
}

// transferFromSibling moves one entry from sibling into n: index 0 of a right
// sibling or the last index of a left sibling.  It returns the separator the
// parent must now hold between the two.
func (n *leafNode[K, V]) transferFromSibling(_ K, sibling node[K, V], borrowIndex int) K {
	s := sibling.(*leafNode[K, V])
	key := s.keys.removeAt(borrowIndex)
	n.insert(key, s.values.removeAt(borrowIndex))
	if borrowIndex == 0 {
		return s.keys[0]
	}
	return n.keys[0]
}

func (n *leafNode[K, V]) fuseChildren(node[K, V], node[K, V]) node[K, V] {
	panic(unsupported("fuseChildren", leafKind))
}

// fuseWithSibling appends every entry of right to n and drops right from the
// leaf chain.  Leaves already hold the separator's key, so sinkKey is unused.
func (n *leafNode[K, V]) fuseWithSibling(_ K, right node[K, V]) {
	r := right.(*leafNode[K, V])
	n.keys = append(n.keys, r.keys...)
	n.values = append(n.values, r.values...)
	n.unlinkRight(&r.header)
}

func (n *leafNode[K, V]) rotate(node[K, V]) {
	panic(unsupported("rotate", leafKind))
}

// rotateToSibling hands one boundary entry to the adjacent leaf to: the
// first entry when to is the left sibling, the last one otherwise.
func (n *leafNode[K, V]) rotateToSibling(to node[K, V]) {
	target := to.(*leafNode[K, V])
	i := len(n.keys) - 1
	if target.id == n.left {
		i = 0
	}
	key := n.keys.removeAt(i)
	target.insert(key, n.values.removeAt(i))
}
