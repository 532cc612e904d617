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
	"sort"
)

// items stores keys, values or child handles in a node.
type items[T any] []T

// insertAt inserts a value into the given index, pushing all subsequent values
// forward.
func (s *items[T]) insertAt(index int, item T) {
	var zero T
	*s = append(*s, zero)
	if index < len(*s) {
		copy((*s)[index+1:], (*s)[index:])
	}
	(*s)[index] = item
}

// removeAt removes a value at a given index, pulling all subsequent values
// back.
func (s *items[T]) removeAt(index int) T {
	item := (*s)[index]
	copy((*s)[index:], (*s)[index+1:])
	var zero T
	(*s)[len(*s)-1] = zero
	*s = (*s)[:len(*s)-1]
	return item
}

// truncate truncates this instance at index so that it contains only the
// first index items. index must be less than or equal to length.
func (s *items[T]) truncate(index int) {
	var toClear items[T]
	*s, toClear = (*s)[:index], (*s)[index:]
	var zero T
	for i := 0; i < len(toClear); i++ {
		toClear[i] = zero
	}
}

type nodeKind uint8

const (
	leafKind nodeKind = iota
	internalKind
)

func (k nodeKind) String() string {
	if k == leafKind {
		return "leaf"
	}
	return "internal"
}

// header is the state shared by both node variants.
//
// Keys are strictly increasing.  The sibling handles link every node of one
// level into a single chain, across parents; a sibling is only treated as
// such by leftSibling/rightSibling when it has the same parent.
type header[K, V any] struct {
	t      *BPlusTree[K, V]
	id     nodeID
	keys   items[K]
	parent nodeID
	left   nodeID
	right  nodeID
}

// node is implemented by *leafNode and *internalNode only.  Operations that
// make no sense for a variant panic with ErrUnsupportedOperation.
type node[K, V any] interface {
	hdr() *header[K, V]
	kind() nodeKind

	// find returns, for a leaf, the index of key or -1; for an internal
	// node, the index of the child whose subtree must hold key.
	find(key K) int

	// split moves the upper half of this node into a new right node and
	// returns it.
	split() node[K, V]
	mergePushUpKey(key K, left, right node[K, V]) node[K, V]

	transferChildren(borrower, lender node[K, V], borrowIndex int)
	transferFromSibling(sinkKey K, sibling node[K, V], borrowIndex int) K
	fuseChildren(left, right node[K, V]) node[K, V]
	fuseWithSibling(sinkKey K, right node[K, V])

	rotate(leaf node[K, V])
	rotateToSibling(to node[K, V])
	isFull() bool
}

func (h *header[K, V]) hdr() *header[K, V] { return h }

func (h *header[K, V]) keyCount() int { return len(h.keys) }

// capacity is the number of key slots, one more than the order so that an
// insert can land before the overflow check.
func (h *header[K, V]) capacity() int { return h.t.order + 1 }

func (h *header[K, V]) isOverflow() bool { return len(h.keys) >= h.capacity() }

func (h *header[K, V]) isUnderflow() bool { return len(h.keys) < h.capacity()/2 }

// canLendAKey reports whether giving one key away leaves this node at or
// above the minimum.
func (h *header[K, V]) canLendAKey() bool { return len(h.keys) > h.capacity()/2 }

func (h *header[K, V]) isFull() bool { return len(h.keys) >= h.t.order }

func (h *header[K, V]) isRoot() bool { return h.parent == noNode }

func (h *header[K, V]) parentNode() *internalNode[K, V] {
	if h.parent == noNode {
		return nil
	}
	return h.t.arena.get(h.parent).(*internalNode[K, V])
}

func (h *header[K, V]) leftSibling() node[K, V] {
	if s := h.t.arena.get(h.left); s != nil && s.hdr().parent == h.parent {
		return s
	}
	return nil
}

func (h *header[K, V]) rightSibling() node[K, V] {
	if s := h.t.arena.get(h.right); s != nil && s.hdr().parent == h.parent {
		return s
	}
	return nil
}

// linkRight puts next directly after h in the level chain.
func (h *header[K, V]) linkRight(next *header[K, V]) {
	next.left = h.id
	next.right = h.right
	if r := h.t.arena.get(h.right); r != nil {
		r.hdr().left = next.id
	}
	h.right = next.id
}

// unlinkRight drops h's right neighbour from the level chain.
func (h *header[K, V]) unlinkRight(gone *header[K, V]) {
	h.right = gone.right
	if r := h.t.arena.get(gone.right); r != nil {
		r.hdr().left = h.id
	}
}

// bsearch returns the index of the first key not less than key.
func (h *header[K, V]) bsearch(key K) int {
	return sort.Search(len(h.keys), func(i int) bool {
		return !h.t.less(h.keys[i], key)
	})
}

// handleOverflow splits n, links the new right half into the level chain and
// pushes the separator into the parent, creating a parent when n is the root.
// It returns the new root, if the root changed.
func (t *BPlusTree[K, V]) handleOverflow(n node[K, V]) node[K, V] {
	h := n.hdr()
	upKey := h.keys[len(h.keys)/2]

	next := n.split()
	t.metrics.split(n.kind())
	t.log.Debug().Stringer("kind", n.kind()).Uint32("node", uint32(h.id)).
		Uint32("next", uint32(next.hdr().id)).Msg("split")

	parent := h.parentNode()
	if parent == nil {
		parent = t.newInternal()
		parent.children = append(parent.children, h.id)
		h.parent = parent.id
		t.metrics.rootChange("grow")
		t.log.Debug().Uint32("root", uint32(parent.id)).Msg("root grow")
	}
	nh := next.hdr()
	nh.parent = parent.id
	h.linkRight(nh)

	return parent.mergePushUpKey(upKey, n, next)
}

// handleUnderflow restores the minimum key count of n by borrowing from a
// sibling that can spare a key, left first, or else fusing with a sibling.
// It returns the new root, if the root changed.
func (t *BPlusTree[K, V]) handleUnderflow(n node[K, V]) node[K, V] {
	h := n.hdr()
	parent := h.parentNode()
	if parent == nil {
		return nil
	}

	left := h.leftSibling()
	if left != nil && left.hdr().canLendAKey() {
		parent.transferChildren(n, left, left.hdr().keyCount()-1)
		return nil
	}
	right := h.rightSibling()
	if right != nil && right.hdr().canLendAKey() {
		parent.transferChildren(n, right, 0)
		return nil
	}

	if left != nil {
		return parent.fuseChildren(left, n)
	}
	return parent.fuseChildren(n, right)
}
