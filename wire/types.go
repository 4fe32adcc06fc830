// Copyright 2026 The Otelturbine Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wire holds the in-memory remote-write data model and its encoder.
// The types mirror the prompb messages of the Prometheus remote-write 0.1.0
// protocol; Marshal produces the exact gogo-compatible byte encoding without
// generated code.
package wire

import "github.com/hUwUtao/otelturbine/model/labels"

// Sample is a single observed value at a millisecond timestamp.
type Sample struct {
	Value     float64
	Timestamp int64
}

// TimeSeries pairs a sorted label set with its samples. Series live for one
// pipeline invocation only.
type TimeSeries struct {
	Labels  labels.Labels
	Samples []Sample
}

// WriteRequest is the top-level unit handed to Marshal.
type WriteRequest struct {
	Timeseries []TimeSeries
}
