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

// Ordered represents the set of types for which the '<' operator work.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr | ~float32 | ~float64 | ~string
}

// LessFunc[K] determines how to order keys of type 'K'.  It should implement a
// strict ordering, and should return true if within that ordering, 'a' < 'b'.
//
// Two keys a and b with !less(a, b) && !less(b, a) are treated as the same key.
type LessFunc[K any] func(a, b K) bool

// Less[K] returns a default LessFunc that uses the '<' operator for types that support it.
func Less[K Ordered]() LessFunc[K] {
	return func(a, b K) bool { return a < b }
}

// KeyIterator allows callers of Ascend* to iterate in-order over the leaf
// chain.  When this function returns false, iteration will stop and the
// associated Ascend* function will immediately return.
type KeyIterator[K, V any] func(key K, value V) bool
