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
	"flag"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

var treeOrder = flag.Int("order", 8, "B+ tree order")

const benchmarkTreeSize = 10000

func intRange(s int, reverse bool) []int {
	out := make([]int, s)
	for i := 0; i < s; i++ {
		v := i
		if reverse {
			v = s - i - 1
		}
		out[i] = v
	}
	return out
}

func allKeys[V any](t *BPlusTree[int, V]) (out []int) {
	t.Ascend(func(k int, _ V) bool {
		out = append(out, k)
		return true
	})
	return
}

func TestBPlusTree(t *testing.T) {
	tr := NewOrdered[int, int](*treeOrder)
	const treeSize = 100
	for i := 0; i < 10; i++ {
		for _, item := range rand.Perm(treeSize) {
			if x, ok := tr.Insert(item, item); ok || x != 0 {
				t.Fatal("insert found item", item)
			}
		}
		for _, item := range rand.Perm(treeSize) {
			if x, ok := tr.Insert(item, item*2); !ok || x != item {
				t.Fatal("insert didn't find item", item)
			}
		}
		if err := tr.Verify(); err != nil {
			t.Fatal(err)
		}
		if tr.Len() != treeSize {
			t.Fatalf("len: got %d want %d", tr.Len(), treeSize)
		}
		got := allKeys(tr)
		want := intRange(treeSize, false)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("mismatch:\n got: %v\nwant: %v", got, want)
		}

		for _, item := range rand.Perm(treeSize) {
			if x, ok := tr.Delete(item); !ok || x != item*2 {
				t.Fatalf("didn't find %v", item)
			}
			if err := tr.Verify(); err != nil {
				t.Fatalf("after deleting %d: %v", item, err)
			}
		}
		if got = allKeys(tr); len(got) > 0 {
			t.Fatalf("some left!: %v", got)
		}
		if h := tr.Height(); h != 1 {
			t.Fatalf("height of empty tree: %d", h)
		}
	}
}

func ExampleBPlusTree() {
	tr := NewOrdered[int, int](DefaultOrder)
	for i := 1; i <= 10; i++ {
		tr.Insert(i, i*i)
	}
	fmt.Println("len:      ", tr.Len())
	fmt.Println("height:   ", tr.Height())
	v, ok := tr.Search(3)
	fmt.Println("search3:  ", v, ok)
	v, ok = tr.Search(100)
	fmt.Println("search100:", v, ok)
	v, ok = tr.Delete(4)
	fmt.Println("del4:     ", v, ok)
	v, ok = tr.Delete(100)
	fmt.Println("del100:   ", v, ok)
	v, ok = tr.Insert(5, 55)
	fmt.Println("insert5:  ", v, ok)
	v, ok = tr.Insert(100, 10000)
	fmt.Println("insert100:", v, ok)
	fmt.Println("len:      ", tr.Len())
	snap := tr.Snapshot()
	fmt.Println("root:     ", snap.Levels[0][0].Keys)
	fmt.Println("leaves:   ", snap.Leaves)
	// Output:
	// len:       10
	// height:    2
	// search3:   9 true
	// search100: 0 false
	// del4:      16 true
	// del100:    0 false
	// insert5:   25 true
	// insert100: 0 false
	// len:       10
	// root:      [5 8]
	// leaves:    [[1 2 3] [5 6 7] [8 9 10 100]]
}

func TestNewBadOrder(t *testing.T) {
	for _, order := range []int{-2, 0, 1, 3, 5} {
		func() {
			defer func() {
				if r := recover(); r != "bad order" {
					t.Errorf("order %d: got panic %v", order, r)
				}
			}()
			NewOrdered[int, int](order)
		}()
	}
}

func TestEmpty(t *testing.T) {
	tr := NewOrdered[string, int](DefaultOrder)
	if v, ok := tr.Search("a"); ok || v != 0 {
		t.Fatalf("search on empty tree: %v %v", v, ok)
	}
	if v, ok := tr.Delete("a"); ok || v != 0 {
		t.Fatalf("delete on empty tree: %v %v", v, ok)
	}
	if tr.Len() != 0 || tr.Height() != 1 {
		t.Fatalf("len %d height %d", tr.Len(), tr.Height())
	}
	tr.Ascend(func(string, int) bool {
		t.Fatal("ascend on empty tree")
		return false
	})
	if err := tr.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestAscendGreaterOrEqual(t *testing.T) {
	tr := NewOrdered[int, struct{}](2)
	for _, v := range rand.Perm(100) {
		tr.Insert(v, struct{}{})
	}
	var got []int
	tr.AscendGreaterOrEqual(40, func(k int, _ struct{}) bool {
		got = append(got, k)
		return true
	})
	if want := intRange(100, false)[40:]; !reflect.DeepEqual(got, want) {
		t.Fatalf("ascendrange:\n got: %v\nwant: %v", got, want)
	}
	got = got[:0]
	tr.AscendGreaterOrEqual(40, func(k int, _ struct{}) bool {
		if k > 60 {
			return false
		}
		got = append(got, k)
		return true
	})
	if want := intRange(100, false)[40:61]; !reflect.DeepEqual(got, want) {
		t.Fatalf("ascendrange:\n got: %v\nwant: %v", got, want)
	}
}

func TestAscendGreaterOrEqualBetweenKeys(t *testing.T) {
	tr := NewOrdered[int, struct{}](4)
	for i := 0; i < 100; i += 2 {
		tr.Insert(i, struct{}{})
	}
	var got []int
	tr.AscendGreaterOrEqual(7, func(k int, _ struct{}) bool {
		got = append(got, k)
		return len(got) < 3
	})
	if want := []int{8, 10, 12}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	got = got[:0]
	tr.AscendGreaterOrEqual(1000, func(k int, _ struct{}) bool {
		got = append(got, k)
		return true
	})
	if len(got) != 0 {
		t.Fatalf("past the end: %v", got)
	}
}

func TestClear(t *testing.T) {
	tr := NewOrdered[int, int](*treeOrder)
	for _, v := range rand.Perm(1000) {
		tr.Insert(v, v)
	}
	tr.Clear()
	if tr.Len() != 0 || tr.Height() != 1 {
		t.Fatalf("len %d height %d after clear", tr.Len(), tr.Height())
	}
	if err := tr.Verify(); err != nil {
		t.Fatal(err)
	}
	tr.Insert(1, 1)
	if v, ok := tr.Search(1); !ok || v != 1 {
		t.Fatalf("search after clear: %v %v", v, ok)
	}
}

func TestCustomLess(t *testing.T) {
	tr := New[int, string](4, func(a, b int) bool { return a > b })
	for i := 0; i < 50; i++ {
		tr.Insert(i, fmt.Sprint(i))
	}
	if err := tr.Verify(); err != nil {
		t.Fatal(err)
	}
	if got, want := allKeys(tr), intRange(50, true); !reflect.DeepEqual(got, want) {
		t.Fatalf("mismatch:\n got: %v\nwant: %v", got, want)
	}
}

func BenchmarkInsert(b *testing.B) {
	b.StopTimer()
	insertP := rand.Perm(benchmarkTreeSize)
	b.StartTimer()
	i := 0
	for i < b.N {
		tr := NewOrdered[int, int](*treeOrder)
		for _, item := range insertP {
			tr.Insert(item, item)
			i++
			if i >= b.N {
				return
			}
		}
	}
}

func BenchmarkSeek(b *testing.B) {
	b.StopTimer()
	size := 100000
	insertP := rand.Perm(size)
	tr := NewOrdered[int, int](*treeOrder)
	for _, item := range insertP {
		tr.Insert(item, item)
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		tr.AscendGreaterOrEqual(i%size, func(int, int) bool { return false })
	}
}

func BenchmarkDeleteInsert(b *testing.B) {
	b.StopTimer()
	insertP := rand.Perm(benchmarkTreeSize)
	tr := NewOrdered[int, int](*treeOrder)
	for _, item := range insertP {
		tr.Insert(item, item)
	}
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tr.Delete(insertP[i%benchmarkTreeSize])
		tr.Insert(insertP[i%benchmarkTreeSize], i)
	}
}

func BenchmarkDelete(b *testing.B) {
	b.StopTimer()
	insertP := rand.Perm(benchmarkTreeSize)
	removeP := rand.Perm(benchmarkTreeSize)
	b.StartTimer()
	i := 0
	for i < b.N {
		b.StopTimer()
		tr := NewOrdered[int, int](*treeOrder)
		for _, v := range insertP {
			tr.Insert(v, v)
		}
		b.StartTimer()
		for _, item := range removeP {
			tr.Delete(item)
			i++
			if i >= b.N {
				return
			}
		}
		if tr.Len() > 0 {
			panic(tr.Len())
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	b.StopTimer()
	insertP := rand.Perm(benchmarkTreeSize)
	searchP := rand.Perm(benchmarkTreeSize)
	tr := NewOrdered[int, int](*treeOrder)
	for _, v := range insertP {
		tr.Insert(v, v)
	}
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tr.Search(searchP[i%benchmarkTreeSize])
	}
}

func BenchmarkAscend(b *testing.B) {
	arr := rand.Perm(benchmarkTreeSize)
	tr := NewOrdered[int, int](*treeOrder)
	for _, v := range arr {
		tr.Insert(v, v)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := 0
		tr.Ascend(func(k int, _ int) bool {
			if k != j {
				b.Fatalf("mismatch: expected: %v, got %v", j, k)
			}
			j++
			return true
		})
	}
}

func TestDescendMinMax(t *testing.T) {
	tr := NewOrdered[int, int](4)
	if _, _, ok := tr.Min(); ok {
		t.Fatal("min of empty tree")
	}
	if _, _, ok := tr.Max(); ok {
		t.Fatal("max of empty tree")
	}
	for _, v := range rand.Perm(100) {
		tr.Insert(v, -v)
	}
	var got []int
	tr.Descend(func(k, _ int) bool {
		got = append(got, k)
		return true
	})
	if want := intRange(100, true); !reflect.DeepEqual(got, want) {
		t.Fatalf("descend:\n got: %v\nwant: %v", got, want)
	}
	if k, v, ok := tr.Min(); !ok || k != 0 || v != 0 {
		t.Fatalf("min: %v %v %v", k, v, ok)
	}
	if k, v, ok := tr.Max(); !ok || k != 99 || v != -99 {
		t.Fatalf("max: %v %v %v", k, v, ok)
	}
}
