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
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/google/bplustree"
	"github.com/google/bplustree/render"
)

type workloadConfig struct {
	keys           int
	seed           int64
	deleteFraction float64
	out            string
}

func workloadCommand(ctx *cliContext) *cobra.Command {
	var cfg workloadConfig
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Run a seeded random insert/delete workload, checking the tree after every operation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkload(cmd.OutOrStdout(), ctx, cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.keys, "keys", 10_000, "size of the key space; twice as many operations are run")
	cmd.Flags().Int64Var(&cfg.seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&cfg.deleteFraction, "delete-fraction", 0.3, "fraction of operations that are deletes")
	cmd.Flags().StringVar(&cfg.out, "out", "", "file to write the final tree to as a Graphviz digraph")
	return cmd
}

func runWorkload(w io.Writer, ctx *cliContext, cfg workloadConfig) error {
	if cfg.keys <= 0 {
		return errors.Newf("--keys must be positive, got %d", cfg.keys)
	}
	if cfg.deleteFraction < 0 || cfg.deleteFraction > 1 {
		return errors.Newf("--delete-fraction must be within [0, 1], got %v", cfg.deleteFraction)
	}

	reg := prometheus.NewRegistry()
	tr, err := ctx.newTree(bplustree.WithMetrics(bplustree.NewMetrics(reg)))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	ops := 2 * cfg.keys
	since := time.Now()
	var inserts, deletes int
	for i := 1; i <= ops; i++ {
		k := rng.Intn(cfg.keys)
		if rng.Float64() < cfg.deleteFraction {
			tr.Delete(k)
			deletes++
		} else {
			tr.Insert(k, i)
			inserts++
		}
		if err := tr.Verify(); err != nil {
			return errors.Wrapf(err, "op %d on key %d", i, k)
		}
		if i%10_000 == 0 {
			ctx.log.Info().
				Str("ops", humanize.Comma(int64(i))).
				Str("keys", humanize.Comma(int64(tr.Len()))).
				Str("ops/s", humanize.Comma(int64(10_000/time.Since(since).Seconds()))).
				Msg("workload")
			since = time.Now()
		}
	}

	snap := tr.Snapshot()
	fmt.Fprintf(w, "%s inserts, %s deletes\n", humanize.Comma(int64(inserts)), humanize.Comma(int64(deletes)))
	fmt.Fprintln(w, render.Summary(snap))
	fmt.Fprintf(w, "digest %016x\n", snap.Digest())

	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	writeMetrics(w, mfs)

	if cfg.out != "" {
		return writeDotFile(cfg.out, tr)
	}
	return nil
}

func writeMetrics(w io.Writer, mfs []*dto.MetricFamily) {
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var v float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				v = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			fmt.Fprintf(w, "%s%s %v\n", mf.GetName(), labels(m.GetLabel()), v)
		}
	}
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
