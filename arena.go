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

// nodeID is a handle to a node slot in a tree's arena.  Parent and sibling
// links are stored as handles, never as pointers, so a node's lifetime is
// decided only by the child slot that owns it.
type nodeID uint32

// noNode is the zero handle; slot 0 of every arena stays empty.
const noNode nodeID = 0

// arena holds every live node of one tree.  Slots given up by a fused node
// go on the free list and are handed to the next split.
type arena[K, V any] struct {
	nodes []node[K, V]
	free  []nodeID
}

func newArena[K, V any]() *arena[K, V] {
	return &arena[K, V]{nodes: make([]node[K, V], 1, 16)}
}

// alloc stores n in a free slot and stamps the slot's handle on it.
func (a *arena[K, V]) alloc(n node[K, V]) nodeID {
	var id nodeID
	if index := len(a.free) - 1; index >= 0 {
		id = a.free[index]
		a.free = a.free[:index]
		a.nodes[id] = n
	} else {
		id = nodeID(len(a.nodes))
		a.nodes = append(a.nodes, n)
	}
	n.hdr().id = id
	return id
}

func (a *arena[K, V]) get(id nodeID) node[K, V] {
	if id == noNode {
		return nil
	}
	return a.nodes[id]
}

// release drops n from the arena.  Callers must already have unlinked n from
// its parent and from the sibling chain.
func (a *arena[K, V]) release(n node[K, V]) {
	h := n.hdr()
	a.nodes[h.id] = nil
	a.free = append(a.free, h.id)
	// clear to allow GC
	h.keys.truncate(0)
	h.t = nil
	h.id, h.parent, h.left, h.right = noNode, noNode, noNode, noNode
}

// live returns the number of nodes currently held.
func (a *arena[K, V]) live() int {
	return len(a.nodes) - 1 - len(a.free)
}
