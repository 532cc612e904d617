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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/google/bplustree"
	"github.com/google/bplustree/render"
)

type tree = bplustree.BPlusTree[int, int]

type scenario struct {
	name  string
	desc  string
	setup func(*tree)
	step  func(*tree)
}

func insertRange(from, to int) func(*tree) {
	return func(tr *tree) {
		for i := from; i <= to; i++ {
			tr.Insert(i, i)
		}
	}
}

func deleteKeys(keys ...int) func(*tree) {
	return func(tr *tree) {
		for _, k := range keys {
			tr.Delete(k)
		}
	}
}

func then(fs ...func(*tree)) func(*tree) {
	return func(tr *tree) {
		for _, f := range fs {
			f(tr)
		}
	}
}

var scenarios = []scenario{
	{
		name:  "rotation",
		desc:  "insert 1..6, then 7 moves an entry into the left leaf instead of splitting",
		setup: insertRange(1, 6),
		step:  insertRange(7, 7),
	},
	{
		name:  "split-leaf",
		desc:  "insert 1..4, then 5 splits the root leaf",
		setup: insertRange(1, 4),
		step:  insertRange(5, 5),
	},
	{
		name:  "split-internal",
		desc:  "insert 1..20, then 21 splits the full root",
		setup: insertRange(1, 20),
		step:  insertRange(21, 21),
	},
	{
		name:  "delete-leaf",
		desc:  "insert 1..5 and delete 5, then deleting 4 fuses the last leaf into its left sibling",
		setup: then(insertRange(1, 5), deleteKeys(5)),
		step:  deleteKeys(4),
	},
	{
		name:  "delete-index",
		desc:  "insert 1..5, then delete the separator 3",
		setup: insertRange(1, 5),
		step:  deleteKeys(3),
	},
	{
		name:  "merge-leaf",
		desc:  "insert 1..5, then deleting 1 borrows from the right leaf",
		setup: insertRange(1, 5),
		step:  deleteKeys(1),
	},
	{
		name:  "merge-internal",
		desc:  "insert 1..23, then deleting the separator 20 merges two leaves and splits them again",
		setup: insertRange(1, 23),
		step:  deleteKeys(20),
	},
}

func findScenario(name string) (scenario, error) {
	for _, s := range scenarios {
		if s.name == name {
			return s, nil
		}
	}
	return scenario{}, errors.Newf("unknown scenario %q", name)
}

func scenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios known to the scenario command.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", s.name, s.desc)
			}
		},
	}
}

func scenarioCommand(ctx *cliContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "scenario <name>",
		Short: "Replay a named scenario and print the tree before and after its last step.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := findScenario(args[0])
			if err != nil {
				return err
			}
			tr, err := ctx.newTree()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			s.setup(tr)
			if err := dump(w, "before", tr, out, s.name); err != nil {
				return err
			}
			ctx.log.Info().Str("scenario", s.name).Msg(s.desc)
			s.step(tr)
			if err := dump(w, "after", tr, out, s.name); err != nil {
				return err
			}
			if err := tr.Verify(); err != nil {
				return errors.Wrapf(err, "scenario %s", s.name)
			}
			fmt.Fprintln(w, render.Summary(tr.Snapshot()))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "directory to write <name>-before.dot and <name>-after.dot into")
	return cmd
}

func dump(w io.Writer, stage string, tr *tree, dir, name string) error {
	snap := tr.Snapshot()
	fmt.Fprintf(w, "%s:\n", stage)
	if err := render.Print(w, snap); err != nil {
		return err
	}
	if dir == "" {
		return nil
	}
	return writeDotFile(filepath.Join(dir, fmt.Sprintf("%s-%s.dot", name, stage)), tr)
}

func writeDotFile(path string, tr *tree) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating dot file")
	}
	if err := render.WriteDot(f, tr.Snapshot()); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
