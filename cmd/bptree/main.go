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

// Command bptree replays the structural scenarios of the B+ tree, runs
// random workloads against it, and renders the results.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/bplustree"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		os.Exit(1)
	}
}

type cliContext struct {
	order    int
	logLevel string
	log      zerolog.Logger
}

func rootCommand() *cobra.Command {
	ctx := &cliContext{log: zerolog.Nop()}
	cmd := &cobra.Command{
		Use:           "bptree",
		Short:         "Drive and inspect in-memory B+ trees.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := zerolog.ParseLevel(ctx.logLevel)
			if err != nil {
				return errors.Wrapf(err, "bad --log-level %q", ctx.logLevel)
			}
			ctx.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}
	cmd.PersistentFlags().IntVar(&ctx.order, "order", bplustree.DefaultOrder, "tree order, an even number of at least 2")
	cmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "info", "log level; debug logs every split, rotation, borrow and fuse")

	cmd.AddCommand(scenarioCommand(ctx), scenariosCommand(), workloadCommand(ctx))
	return cmd
}

func (c *cliContext) newTree(opts ...bplustree.Option) (*bplustree.BPlusTree[int, int], error) {
	if c.order < 2 || c.order%2 != 0 {
		return nil, errors.Newf("--order must be even and at least 2, got %d", c.order)
	}
	opts = append(opts, bplustree.WithLogger(c.log))
	return bplustree.NewOrdered[int, int](c.order, opts...), nil
}
