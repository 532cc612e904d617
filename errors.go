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
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedOperation is the cause of the fault raised when a
	// structural operation reaches a node variant that does not implement it.
	ErrUnsupportedOperation = errors.New("unsupported node operation")

	// ErrCorrupted is returned by Verify when the tree breaks one of its
	// structural invariants.
	ErrCorrupted = errors.New("tree invariant violated")
)

// unsupported builds the fault for op on a node of kind k.  The result is
// always used as a panic value.
func unsupported(op string, k nodeKind) error {
	return errors.WithAssertionFailure(errors.Wrapf(ErrUnsupportedOperation, "%s on %s node", op, k))
}

func corrupted(id nodeID, format string, args ...interface{}) error {
	return errors.Wrapf(ErrCorrupted, "node %d: "+format, append([]interface{}{id}, args...)...)
}
