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
	"github.com/rs/zerolog"
)

type options struct {
	log     zerolog.Logger
	metrics *Metrics
}

// Option configures a tree at construction time.
type Option func(*options)

// WithLogger makes the tree log its structural changes (splits, rotations,
// borrows, fuses and root changes) to l at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics makes the tree record its structural changes in m.  Several
// trees may share one Metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}
