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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the structural changes made by the trees it is attached to.
// A nil *Metrics records nothing.
type Metrics struct {
	Splits          *prometheus.CounterVec
	Rotations       prometheus.Counter
	Borrows         *prometheus.CounterVec
	Fuses           *prometheus.CounterVec
	SeparatorMerges prometheus.Counter
	RootChanges     *prometheus.CounterVec
	Height          prometheus.Gauge
	Keys            prometheus.Gauge
}

// NewMetrics creates the tree metrics and registers them with reg.  A nil reg
// creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Splits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bplustree_splits_total",
			Help: "number of node splits",
		}, []string{"kind"}),
		Rotations: f.NewCounter(prometheus.CounterOpts{
			Name: "bplustree_rotations_total",
			Help: "number of leaf overflows resolved by moving an entry to a sibling",
		}),
		Borrows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bplustree_borrows_total",
			Help: "number of underflows resolved by borrowing from a sibling",
		}, []string{"kind"}),
		Fuses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bplustree_fuses_total",
			Help: "number of underflows resolved by fusing two siblings",
		}, []string{"kind"}),
		SeparatorMerges: f.NewCounter(prometheus.CounterOpts{
			Name: "bplustree_separator_merges_total",
			Help: "number of deletes that merged the subtrees around a stale separator",
		}),
		RootChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bplustree_root_changes_total",
			Help: "number of times the root gained or lost a level",
		}, []string{"dir"}),
		Height: f.NewGauge(prometheus.GaugeOpts{
			Name: "bplustree_height",
			Help: "number of levels in the tree",
		}),
		Keys: f.NewGauge(prometheus.GaugeOpts{
			Name: "bplustree_keys",
			Help: "number of keys in the tree",
		}),
	}
}

func (m *Metrics) split(k nodeKind) {
	if m != nil {
		m.Splits.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) rotation() {
	if m != nil {
		m.Rotations.Inc()
	}
}

func (m *Metrics) borrow(k nodeKind) {
	if m != nil {
		m.Borrows.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) fuse(k nodeKind) {
	if m != nil {
		m.Fuses.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) separatorMerge() {
	if m != nil {
		m.SeparatorMerges.Inc()
	}
}

func (m *Metrics) rootChange(dir string) {
	if m != nil {
		m.RootChanges.WithLabelValues(dir).Inc()
	}
}

func (m *Metrics) observe(height, keys int) {
	m.Height.Set(float64(height))
	m.Keys.Set(float64(keys))
}
