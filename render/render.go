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

// Package render draws tree snapshots: as a Graphviz digraph, as a plain
// text dump, and as a one line summary.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/google/bplustree"
)

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, `|`, `\|`, `{`, `\{`, `}`, `\}`, `<`, `\<`, `>`, `\>`,
)

func label(k any) string {
	return recordEscaper.Replace(fmt.Sprint(k))
}

// WriteDot writes s to w as a Graphviz digraph.  Each node is a record with
// one field per key, internal nodes get a second row with one port per
// child, the nodes of a level share a rank, and the leaves are joined by
// bidirectional edges in chain order.
func WriteDot[K any](w io.Writer, s bplustree.Snapshot[K]) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "digraph G {\nnode [shape = record];\n\n")

	id := 0
	for _, level := range s.Levels {
		begin := id
		for _, n := range level {
			keys := make([]string, len(n.Keys))
			for i, k := range n.Keys {
				keys[i] = fmt.Sprintf("<k%d> %s", i, label(k))
			}
			if n.Leaf {
				fmt.Fprintf(bw, "%d [label=\"%s\"];\n", id, strings.Join(keys, "|"))
			} else {
				ptrs := make([]string, n.Children)
				for i := range ptrs {
					ptrs[i] = fmt.Sprintf("<p%d>", i)
				}
				fmt.Fprintf(bw, "%d [label=\"{{%s}|{%s}}\"];\n", id, strings.Join(keys, "|"), strings.Join(ptrs, "|"))
			}
			id++
		}
		writeSameRank(bw, begin, id)
	}

	// Children of level i are numbered right after it, in order.
	child := len(s.Levels[0])
	parent := 0
	for _, level := range s.Levels {
		for _, n := range level {
			for i := 0; i < n.Children; i++ {
				fmt.Fprintf(bw, "%d:p%d -> %d;\n", parent, i, child)
				child++
			}
			parent++
		}
	}

	if len(s.Leaves) > 1 {
		first := id - len(s.Leaves)
		for i := first; i < id-1; i++ {
			fmt.Fprintf(bw, "%d -> %d [dir=both];\n", i, i+1)
		}
	}
	fmt.Fprint(bw, "}\n")
	return errors.Wrap(bw.Flush(), "writing dot")
}

func writeSameRank(w io.Writer, begin, end int) {
	var b strings.Builder
	b.WriteString("{rank = same;")
	for i := begin; i < end; i++ {
		fmt.Fprintf(&b, " %d;", i)
	}
	b.WriteString("}\n\n")
	io.WriteString(w, b.String())
}

// Print writes one line per internal level, nodes separated by a tab, and
// then the leaf chain on the last line.
func Print[K any](w io.Writer, s bplustree.Snapshot[K]) error {
	bw := bufio.NewWriter(w)
	for _, level := range s.Levels {
		if len(level) == 0 || level[0].Leaf {
			break
		}
		nodes := make([]string, len(level))
		for i, n := range level {
			nodes[i] = joinKeys(n.Keys)
		}
		fmt.Fprintln(bw, strings.Join(nodes, "\t"))
	}
	leaves := make([]string, len(s.Leaves))
	for i, leaf := range s.Leaves {
		leaves[i] = joinKeys(leaf)
	}
	fmt.Fprintln(bw, strings.Join(leaves, "\t"))
	return errors.Wrap(bw.Flush(), "printing tree")
}

func joinKeys[K any](keys []K) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, " ")
}

// Summary describes the size of s in one line, e.g.
// "height 3, 9 nodes, 6 leaves, 1,021 keys".
func Summary[K any](s bplustree.Snapshot[K]) string {
	nodes := 0
	for _, level := range s.Levels {
		nodes += len(level)
	}
	return fmt.Sprintf("height %d, %s nodes, %s leaves, %s keys",
		s.Height(),
		humanize.Comma(int64(nodes)),
		humanize.Comma(int64(len(s.Leaves))),
		humanize.Comma(int64(len(s.Keys()))))
}
