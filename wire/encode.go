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

package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Protobuf tags of the remote-write messages. All nested and repeated fields
// use LEN encoding, so each tag is followed by a varint byte length.
const (
	tagRequestSeries = 0x0A // WriteRequest field 1, repeated TimeSeries
	tagSeriesLabel   = 0x0A // TimeSeries field 1, repeated Label
	tagSeriesSample  = 0x12 // TimeSeries field 2, repeated Sample
	tagLabelName     = 0x0A // Label field 1, string
	tagLabelValue    = 0x12 // Label field 2, string
	tagSampleValue   = 0x09 // Sample field 1, fixed64
	tagSampleTS      = 0x10 // Sample field 2, varint
)

// Marshal encodes the request into the remote-write protobuf wire format.
//
// The format length-prefixes every nested message, and a prefix cannot be
// written until the message size is known, so Marshal runs two passes: an
// allocation-free sizing pass over the whole request, then a single output
// allocation written front to back at tracked offsets. No per-field buffers,
// no copies; string payloads land directly in the destination slice.
func Marshal(req *WriteRequest) []byte {
	if len(req.Timeseries) == 0 {
		return nil
	}

	seriesSizes := make([]int, len(req.Timeseries))
	total := 0
	for i := range req.Timeseries {
		n := sizeSeries(&req.Timeseries[i])
		seriesSizes[i] = n
		total += 1 + SizeUvarintSmall(uint(n)) + n
	}

	buf := make([]byte, total)
	off := 0
	for i := range req.Timeseries {
		buf[off] = tagRequestSeries
		off++
		off += PutUvarintSmall(buf, off, uint(seriesSizes[i]))
		off = putSeries(buf, off, &req.Timeseries[i])
	}
	if off != total {
		// A sizing/writing divergence corrupts the stream; it is a bug in
		// this package, never a property of the input.
		panic(fmt.Sprintf("wire: encoded %d bytes, sized %d", off, total))
	}
	return buf
}

func sizeLabel(name, value string) int {
	return 1 + SizeUvarintSmall(uint(len(name))) + len(name) +
		1 + SizeUvarintSmall(uint(len(value))) + len(value)
}

func sizeSample(s Sample) int {
	// 1 tag byte + 8 fixed bytes for the value, 1 tag byte + varint for the
	// timestamp. Millisecond timestamps fit an int on 64-bit targets; the
	// int64 path handles the rest identically.
	n := 1 + 8 + 1
	if ts := s.Timestamp; ts >= 0 && uint64(ts) <= math.MaxInt {
		return n + SizeUvarintSmall(uint(ts))
	}
	return n + SizeVarint(s.Timestamp)
}

func sizeSeries(ts *TimeSeries) int {
	n := 0
	for _, l := range ts.Labels {
		ln := sizeLabel(l.Name, l.Value)
		n += 1 + SizeUvarintSmall(uint(ln)) + ln
	}
	for _, s := range ts.Samples {
		sn := sizeSample(s)
		n += 1 + SizeUvarintSmall(uint(sn)) + sn
	}
	return n
}

func putLabel(buf []byte, off int, name, value string) int {
	buf[off] = tagLabelName
	off++
	off += PutUvarintSmall(buf, off, uint(len(name)))
	off += copy(buf[off:], name)
	buf[off] = tagLabelValue
	off++
	off += PutUvarintSmall(buf, off, uint(len(value)))
	off += copy(buf[off:], value)
	return off
}

func putSample(buf []byte, off int, s Sample) int {
	buf[off] = tagSampleValue
	off++
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(s.Value))
	off += 8
	buf[off] = tagSampleTS
	off++
	if ts := s.Timestamp; ts >= 0 && uint64(ts) <= math.MaxInt {
		off += PutUvarintSmall(buf, off, uint(ts))
	} else {
		off += PutVarint(buf, off, s.Timestamp)
	}
	return off
}

func putSeries(buf []byte, off int, ts *TimeSeries) int {
	for _, l := range ts.Labels {
		buf[off] = tagSeriesLabel
		off++
		off += PutUvarintSmall(buf, off, uint(sizeLabel(l.Name, l.Value)))
		off = putLabel(buf, off, l.Name, l.Value)
	}
	for _, s := range ts.Samples {
		buf[off] = tagSeriesSample
		off++
		off += PutUvarintSmall(buf, off, uint(sizeSample(s)))
		off = putSample(buf, off, s)
	}
	return off
}
