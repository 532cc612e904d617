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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestVerifyDetectsCorruption(t *testing.T) {
	for name, corrupt := range map[string]func(tr *BPlusTree[int, int]){
		"keys out of order": func(tr *BPlusTree[int, int]) {
			leaf := tr.leftmost().hdr()
			leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]
		},
		"separator range": func(tr *BPlusTree[int, int]) {
			tr.rootNode().hdr().keys[0] = 100
		},
		"length": func(tr *BPlusTree[int, int]) {
			tr.length++
		},
		"sibling chain": func(tr *BPlusTree[int, int]) {
			tr.leftmost().hdr().right = noNode
		},
		"parent link": func(tr *BPlusTree[int, int]) {
			tr.leftmost().hdr().parent = noNode
		},
		"underfull node": func(tr *BPlusTree[int, int]) {
			leaf := tr.leftmost().(*leafNode[int, int])
			leaf.keys.truncate(1)
			leaf.values.truncate(1)
		},
		"leaked node": func(tr *BPlusTree[int, int]) {
			tr.newLeaf()
		},
	} {
		t.Run(name, func(t *testing.T) {
			tr := NewOrdered[int, int](DefaultOrder)
			insertRange(tr, 1, 21)
			require.NoError(t, tr.Verify())
			corrupt(tr)
			err := tr.Verify()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrCorrupted), "%v", err)
		})
	}
}

func TestSnapshotDigest(t *testing.T) {
	a := NewOrdered[int, int](DefaultOrder)
	b := NewOrdered[int, int](DefaultOrder)
	insertRange(a, 1, 7)
	insertRange(b, 1, 7)
	require.Equal(t, a.Snapshot().Digest(), b.Snapshot().Digest())

	// [1 2 3] [4 5 6 7] against [1 2 3 4] [5 6 7].
	c := NewOrdered[int, int](DefaultOrder)
	for i := 7; i >= 1; i-- {
		c.Insert(i, i)
	}
	require.Equal(t, a.Snapshot().Keys(), c.Snapshot().Keys())
	require.NotEqual(t, a.Snapshot().Digest(), c.Snapshot().Digest())

	b.Delete(7)
	require.NotEqual(t, a.Snapshot().Digest(), b.Snapshot().Digest())
}

func TestSnapshotLevels(t *testing.T) {
	tr := NewOrdered[int, int](DefaultOrder)
	insertRange(tr, 1, 21)
	s := tr.Snapshot()
	require.Equal(t, 3, s.Height())
	require.Equal(t, tr.Height(), s.Height())
	require.Equal(t, NodeInfo[int]{Keys: []int{13}, Children: 2}, s.Levels[0][0])
	for _, n := range s.Levels[2] {
		require.True(t, n.Leaf)
		require.Zero(t, n.Children)
	}
	require.Equal(t, len(s.Levels[2]), len(s.Leaves))
	require.Equal(t, intRange(22, false)[1:], s.Keys())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	tr := NewOrdered[int, int](DefaultOrder, WithMetrics(m))

	insertRange(tr, 1, 5)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Splits.WithLabelValues("leaf")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RootChanges.WithLabelValues("grow")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Height))

	tr.Insert(6, 6)
	tr.Insert(7, 7)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Rotations))
	require.Equal(t, 7.0, testutil.ToFloat64(m.Keys))

	// [1 2 3] [4 5 6 7]: the second delete borrows 4, deleting the new
	// separator 5 then merges the two leaves into the root.
	tr.Delete(1)
	tr.Delete(2)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Borrows.WithLabelValues("leaf")))
	tr.Delete(5)
	require.Equal(t, 1.0, testutil.ToFloat64(m.SeparatorMerges))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RootChanges.WithLabelValues("shrink")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Height))
	require.Equal(t, 4.0, testutil.ToFloat64(m.Keys))
	requireShape(t, tr, [][][]int{{{3, 4, 6, 7}}})

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Positive(t, n)
}

func TestNilMetricsAndLogger(t *testing.T) {
	var m *Metrics
	m.split(leafKind)
	m.rootChange("grow")

	tr := NewOrdered[int, int](2, WithLogger(zerolog.Nop()))
	insertRange(tr, 1, 50)
	require.NoError(t, tr.Verify())
}
