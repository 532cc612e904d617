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

// Package bplustree implements an in-memory B+ tree of arbitrary even order.
//
// Keys live in the leaves together with their values.  Internal nodes hold
// only separator keys that route lookups: for separator k, smaller keys are
// found to its left and keys greater than or equal to k to its right.  All
// leaves sit at the same depth and are linked left to right, so an in-order
// walk never has to climb back up the tree.
//
// Each node holds up to Order keys once an operation completes, with one slot
// of headroom used while an insert is being absorbed.  An overflowing leaf
// first tries to hand an entry to a sibling under the same parent and only
// splits when neither sibling has room.  An underflowing node borrows from a
// sibling that can spare a key, or fuses with one when neither can.
//
// Deleting a key that also serves as a separator merges the two subtrees on
// either side of that separator, so no internal node keeps routing on a key
// that is no longer stored.
//
// Trees are not safe for concurrent use.
package bplustree

import (
	"github.com/rs/zerolog"
)

// DefaultOrder is the order used by the examples and the command line tool.
const DefaultOrder = 4

// BPlusTree is a B+ tree mapping keys of type K to values of type V.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type BPlusTree[K, V any] struct {
	order   int
	length  int
	root    nodeID
	less    LessFunc[K]
	arena   *arena[K, V]
	log     zerolog.Logger
	metrics *Metrics
}

// New creates a new B+ tree with the given order, using less to order keys.
//
// New(4, less), for example, will create a tree whose nodes hold between two
// and four keys.  Order must be even and at least 2.
func New[K, V any](order int, less LessFunc[K], opts ...Option) *BPlusTree[K, V] {
	if order < 2 || order%2 != 0 {
		panic("bad order")
	}
	if less == nil {
		panic("nil less func")
	}
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	t := &BPlusTree[K, V]{
		order:   order,
		less:    less,
		arena:   newArena[K, V](),
		log:     o.log.With().Str("component", "bplustree").Int("order", order).Logger(),
		metrics: o.metrics,
	}
	t.root = t.newLeaf().id
	t.observe()
	return t
}

// NewOrdered creates a new B+ tree for an ordered key type.
func NewOrdered[K Ordered, V any](order int, opts ...Option) *BPlusTree[K, V] {
	return New[K, V](order, Less[K](), opts...)
}

func (t *BPlusTree[K, V]) rootNode() node[K, V] {
	return t.arena.get(t.root)
}

func (t *BPlusTree[K, V]) setRoot(n node[K, V]) {
	if n == nil {
		return
	}
	t.root = n.hdr().id
}

// shrinkRoot promotes the only child of an internal root that has lost its
// last key.
func (t *BPlusTree[K, V]) shrinkRoot(n *internalNode[K, V]) node[K, V] {
	c := n.child(0)
	c.hdr().parent = noNode
	t.arena.release(n)
	t.metrics.rootChange("shrink")
	t.log.Debug().Uint32("root", uint32(c.hdr().id)).Msg("root shrink")
	return c
}

func (t *BPlusTree[K, V]) findLeaf(key K) *leafNode[K, V] {
	n := t.rootNode()
	for {
		switch x := n.(type) {
		case *leafNode[K, V]:
			return x
		case *internalNode[K, V]:
			n = x.child(x.find(key))
		}
	}
}

// findSeparator returns the internal node holding key as a separator and the
// separator's index, or nil when no internal node routes on key.
func (t *BPlusTree[K, V]) findSeparator(key K) (*internalNode[K, V], int) {
	n, ok := t.rootNode().(*internalNode[K, V])
	for ok {
		i := n.find(key)
		if i > 0 && !t.less(n.keys[i-1], key) {
			return n, i - 1
		}
		n, ok = n.child(i).(*internalNode[K, V])
	}
	return nil, -1
}

func (t *BPlusTree[K, V]) minKey(n node[K, V]) K {
	for {
		switch x := n.(type) {
		case *leafNode[K, V]:
			return x.keys[0]
		case *internalNode[K, V]:
			n = x.child(0)
		}
	}
}

// Insert adds the given key and value to the tree.  If a key equal to it
// already exists, its value is replaced and the old value is returned with
// true.  Otherwise the zero value and false are returned.
func (t *BPlusTree[K, V]) Insert(key K, value V) (_ V, _ bool) {
	leaf := t.findLeaf(key)
	if out, replaced := leaf.insert(key, value); replaced {
		return out, true
	}
	t.length++
	if leaf.isOverflow() {
		if p := leaf.parentNode(); p != nil {
			p.rotate(leaf)
		}
	}
	if leaf.isOverflow() {
		t.setRoot(t.handleOverflow(leaf))
	}
	t.observe()
	return
}

// Search looks for the key in the tree, returning its value and true if it is
// found, or the zero value and false otherwise.
func (t *BPlusTree[K, V]) Search(key K) (_ V, _ bool) {
	leaf := t.findLeaf(key)
	if i := leaf.find(key); i >= 0 {
		return leaf.values[i], true
	}
	return
}

// Has returns true if the given key is in the tree.
func (t *BPlusTree[K, V]) Has(key K) bool {
	_, ok := t.Search(key)
	return ok
}

// Delete removes the key from the tree, returning its value and true.  If the
// key is not present it returns the zero value and false and leaves the tree
// untouched.
func (t *BPlusTree[K, V]) Delete(key K) (_ V, _ bool) {
	leaf := t.findLeaf(key)
	out, removed := leaf.delete(key)
	if removed {
		t.length--
		if leaf.isUnderflow() {
			t.setRoot(t.handleUnderflow(leaf))
		}
	}
	if p, i := t.findSeparator(key); p != nil {
		t.mergeAroundSeparator(p, i)
	}
	t.observe()
	return out, removed
}

// mergeAroundSeparator removes p.keys[i] by fusing the two subtrees it
// separates.  The fused node splits again when it holds too many keys, and p
// is rebalanced when it holds too few.
func (t *BPlusTree[K, V]) mergeAroundSeparator(p *internalNode[K, V], i int) {
	left, right := p.child(i), p.child(i+1)
	var sinkKey K
	if left.kind() == internalKind {
		sinkKey = t.minKey(right)
	}
	t.log.Debug().Uint32("node", uint32(p.id)).Int("index", i).
		Uint32("left", uint32(left.hdr().id)).Uint32("right", uint32(right.hdr().id)).Msg("separator merge")
	left.fuseWithSibling(sinkKey, right)
	p.deleteAt(i)
	t.arena.release(right)
	t.metrics.separatorMerge()

	if left.hdr().isOverflow() {
		t.setRoot(t.handleOverflow(left))
	}
	if !p.isUnderflow() {
		return
	}
	if p.isRoot() {
		if len(p.keys) == 0 {
			t.setRoot(t.shrinkRoot(p))
		}
		return
	}
	t.setRoot(t.handleUnderflow(p))
}

// Len returns the number of keys currently in the tree.
func (t *BPlusTree[K, V]) Len() int {
	return t.length
}

// Order returns the order the tree was created with.
func (t *BPlusTree[K, V]) Order() int {
	return t.order
}

// Height returns the number of levels in the tree.  A tree whose root is a
// leaf has height 1.
func (t *BPlusTree[K, V]) Height() int {
	h := 1
	for n := t.rootNode(); n.kind() == internalKind; h++ {
		n = n.(*internalNode[K, V]).child(0)
	}
	return h
}

// Ascend calls the iterator for every key in the tree in ascending order,
// until iterator returns false.
func (t *BPlusTree[K, V]) Ascend(iterator KeyIterator[K, V]) {
	t.ascendFrom(t.leftmost().(*leafNode[K, V]), 0, iterator)
}

// AscendGreaterOrEqual calls the iterator for every key in the tree that is
// greater than or equal to pivot, in ascending order, until iterator returns
// false.
func (t *BPlusTree[K, V]) AscendGreaterOrEqual(pivot K, iterator KeyIterator[K, V]) {
	leaf := t.findLeaf(pivot)
	t.ascendFrom(leaf, leaf.bsearch(pivot), iterator)
}

func (t *BPlusTree[K, V]) ascendFrom(leaf *leafNode[K, V], i int, iterator KeyIterator[K, V]) {
	for leaf != nil {
		for ; i < len(leaf.keys); i++ {
			if !iterator(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		next := t.arena.get(leaf.right)
		if next == nil {
			return
		}
		leaf, i = next.(*leafNode[K, V]), 0
	}
}

// Descend calls the iterator for every key in the tree in descending order,
// until iterator returns false.
func (t *BPlusTree[K, V]) Descend(iterator KeyIterator[K, V]) {
	n := t.rootNode()
	for n.kind() == internalKind {
		x := n.(*internalNode[K, V])
		n = x.child(len(x.children) - 1)
	}
	for leaf := n.(*leafNode[K, V]); leaf != nil; {
		for i := len(leaf.keys) - 1; i >= 0; i-- {
			if !iterator(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		prev := t.arena.get(leaf.left)
		if prev == nil {
			return
		}
		leaf = prev.(*leafNode[K, V])
	}
}

// Min returns the smallest key in the tree and its value, or false if the
// tree is empty.
func (t *BPlusTree[K, V]) Min() (out K, val V, ok bool) {
	t.Ascend(func(k K, v V) bool {
		out, val, ok = k, v, true
		return false
	})
	return
}

// Max returns the largest key in the tree and its value, or false if the
// tree is empty.
func (t *BPlusTree[K, V]) Max() (out K, val V, ok bool) {
	t.Descend(func(k K, v V) bool {
		out, val, ok = k, v, true
		return false
	})
	return
}

// Clear removes every key from the tree, leaving a single empty leaf as root.
func (t *BPlusTree[K, V]) Clear() {
	t.arena = newArena[K, V]()
	t.length = 0
	t.root = t.newLeaf().id
	t.observe()
}

func (t *BPlusTree[K, V]) observe() {
	if t.metrics == nil {
		return
	}
	t.metrics.observe(t.Height(), t.length)
}
