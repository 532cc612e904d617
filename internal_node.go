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

// internalNode holds separator keys and owns len(keys)+1 children.  For key i,
// every key under child i is less than keys[i] and every key under child i+1
// is greater than or equal to it.
type internalNode[K, V any] struct {
	header[K, V]
	children items[nodeID]
}

func (t *BPlusTree[K, V]) newInternal() *internalNode[K, V] {
	n := &internalNode[K, V]{}
	n.t = t
	n.keys = make(items[K], 0, t.order+1)
	n.children = make(items[nodeID], 0, t.order+2)
	t.arena.alloc(n)
	return n
}

func (n *internalNode[K, V]) kind() nodeKind { return internalKind }

func (n *internalNode[K, V]) child(i int) node[K, V] {
	return n.t.arena.get(n.children[i])
}

// setChild is the one place a child changes hands: writing the slot also
// points the child back at n.
func (n *internalNode[K, V]) setChild(i int, c node[K, V]) {
	h := c.hdr()
	n.children[i] = h.id
	h.parent = n.id
}

func (n *internalNode[K, V]) appendChild(c node[K, V]) {
	n.children = append(n.children, noNode)
	n.setChild(len(n.children)-1, c)
}

func (n *internalNode[K, V]) childIndex(c node[K, V]) int {
	id := c.hdr().id
	for i, cid := range n.children {
		if cid == id {
			return i
		}
	}
	panic(corrupted(n.id, "node %d is not a child", id))
}

// find routes an exact match on a separator to the right child.
func (n *internalNode[K, V]) find(key K) int {
	i := n.bsearch(key)
	if i < len(n.keys) && !n.t.less(key, n.keys[i]) {
		return i + 1
	}
	return i
}

// insertAt puts key at index with left and right as the children on either
// side of it.  The slot at index must already hold left or right.
func (n *internalNode[K, V]) insertAt(index int, key K, left, right node[K, V]) {
	n.keys.insertAt(index, key)
	n.children.insertAt(index+1, noNode)
	n.setChild(index+1, right)
	n.setChild(index, left)
}

// deleteAt removes keys[index] and the child to its right.
func (n *internalNode[K, V]) deleteAt(index int) {
	n.keys.removeAt(index)
	n.children.removeAt(index + 1)
}

// split promotes the median key instead of copying it: n keeps the keys
// before it and their children, the new node takes the rest.
func (n *internalNode[K, V]) split() node[K, V] {
	mid := len(n.keys) / 2
	next := n.t.newInternal()
	next.keys = append(next.keys, n.keys[mid+1:]...)
	for i := mid + 1; i < len(n.children); i++ {
		next.appendChild(n.child(i))
	}
	n.keys.truncate(mid)
	n.children.truncate(mid + 1)
	return next
}

// mergePushUpKey inserts the separator pushed up from a split of left.  It
// returns the root when propagation stops at the root, the new root when this
// node split all the way up, and nil otherwise.
func (n *internalNode[K, V]) mergePushUpKey(key K, left, right node[K, V]) node[K, V] {
	n.insertAt(n.childIndex(left), key, left, right)
	if n.isOverflow() {
		return n.t.handleOverflow(n)
	}
	if n.isRoot() {
		return n
	}
	return nil
}

// transferChildren moves one entry from lender into its adjacent sibling
// borrower and installs the separator the move produces.
func (n *internalNode[K, V]) transferChildren(borrower, lender node[K, V], borrowIndex int) {
	i := n.childIndex(borrower)
	if lender.hdr().id != borrower.hdr().right {
		i--
	}
	n.keys[i] = borrower.transferFromSibling(n.keys[i], lender, borrowIndex)
	n.t.metrics.borrow(borrower.kind())
	n.t.log.Debug().Stringer("kind", borrower.kind()).Uint32("borrower", uint32(borrower.hdr().id)).
		Uint32("lender", uint32(lender.hdr().id)).Msg("borrow")
}

// transferFromSibling rotates one child through the parent: sinkKey comes
// down into n together with the lender's boundary child, and the lender's
// boundary key goes up.
func (n *internalNode[K, V]) transferFromSibling(sinkKey K, sibling node[K, V], borrowIndex int) K {
	s := sibling.(*internalNode[K, V])
	if borrowIndex == 0 {
		n.keys = append(n.keys, sinkKey)
		n.appendChild(s.child(0))
		s.children.removeAt(0)
		return s.keys.removeAt(0)
	}
	n.insertAt(0, sinkKey, s.child(borrowIndex+1), n.child(0))
	up := s.keys[borrowIndex]
	s.deleteAt(borrowIndex)
	return up
}

// fuseChildren merges right into left around the separator between them and
// releases right.  When n is the root and loses its last key, left becomes
// the new root and is returned.
func (n *internalNode[K, V]) fuseChildren(left, right node[K, V]) node[K, V] {
	index := n.childIndex(left)
	left.fuseWithSibling(n.keys[index], right)
	n.deleteAt(index)
	n.t.metrics.fuse(left.kind())
	n.t.log.Debug().Stringer("kind", left.kind()).Uint32("node", uint32(left.hdr().id)).
		Uint32("gone", uint32(right.hdr().id)).Msg("fuse")
	n.t.arena.release(right)

	if !n.isUnderflow() {
		return nil
	}
	if !n.isRoot() {
		return n.t.handleUnderflow(n)
	}
	if len(n.keys) == 0 {
		return n.t.shrinkRoot(n)
	}
	return nil
}

// fuseWithSibling appends sinkKey and all of right's keys and children.
func (n *internalNode[K, V]) fuseWithSibling(sinkKey K, right node[K, V]) {
	r := right.(*internalNode[K, V])
	n.keys = append(n.keys, sinkKey)
	n.keys = append(n.keys, r.keys...)
	for i := range r.children {
		n.appendChild(r.child(i))
	}
	n.unlinkRight(&r.header)
}

// rotate tries to resolve an overflowing child leaf without a split by
// handing one entry to a sibling under n that is not full, left first.  It
// leaves the leaf overflowing when neither sibling qualifies.
func (n *internalNode[K, V]) rotate(leaf node[K, V]) {
	h := leaf.hdr()
	index := n.childIndex(leaf)
	if left := h.leftSibling(); left != nil && left.hdr().parent == n.id && !left.isFull() {
		leaf.rotateToSibling(left)
		n.keys[index-1] = h.keys[0]
	} else if right := h.rightSibling(); right != nil && right.hdr().parent == n.id && !right.isFull() {
		leaf.rotateToSibling(right)
		n.keys[index] = right.hdr().keys[0]
	} else {
		return
	}
	n.t.metrics.rotation()
	n.t.log.Debug().Uint32("leaf", uint32(h.id)).Msg("rotate")
}

func (n *internalNode[K, V]) rotateToSibling(node[K, V]) {
	panic(unsupported("rotateToSibling", internalKind))
}
