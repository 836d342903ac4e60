// Copyright 2025 DriverHub
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

package repository

import "sync/atomic"

// Metrics tracks repository operation counts. Safe for concurrent use;
// all counters are updated atomically.
type Metrics struct {
	reads   int64
	writes  int64
	deletes int64
	scans   int64
	errors  int64
}

// NewMetrics creates a zeroed metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRead records a read-class operation (GetByKey, GetAll, IsExist).
func (m *Metrics) RecordRead(err error) {
	atomic.AddInt64(&m.reads, 1)
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

// RecordWrite records a write-class operation (Create, Update, batches).
func (m *Metrics) RecordWrite(err error) {
	atomic.AddInt64(&m.writes, 1)
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

// RecordDelete records a delete-class operation (Delete, BatchDelete, Clear).
func (m *Metrics) RecordDelete(err error) {
	atomic.AddInt64(&m.deletes, 1)
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

// RecordScan records an all-tenants enumeration.
func (m *Metrics) RecordScan(err error) {
	atomic.AddInt64(&m.scans, 1)
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Reads   int64
	Writes  int64
	Deletes int64
	Scans   int64
	Errors  int64
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Reads:   atomic.LoadInt64(&m.reads),
		Writes:  atomic.LoadInt64(&m.writes),
		Deletes: atomic.LoadInt64(&m.deletes),
		Scans:   atomic.LoadInt64(&m.scans),
		Errors:  atomic.LoadInt64(&m.errors),
	}
}
