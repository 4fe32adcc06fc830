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

// LEB128 varint primitives. Size computations never allocate so the encoder
// can run its sizing pass before the single output allocation, and the Put
// variants write into a caller-owned buffer at an offset.

// SizeUvarint returns the number of bytes PutUvarint writes for v.
func SizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// SizeVarint returns the encoded size of v under the protobuf int64 rule:
// the value is reinterpreted as its two's-complement uint64, so negative
// inputs always occupy ten bytes.
func SizeVarint(v int64) int {
	return SizeUvarint(uint64(v))
}

// SizeUvarintSmall returns the encoded size of a non-negative machine-word
// value. It avoids 64-bit shifts on 32-bit targets; output is byte-for-byte
// identical to SizeUvarint over the shared range.
func SizeUvarintSmall(v uint) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// PutUvarint encodes v at buf[off:] and returns the number of bytes written.
// The buffer must have at least SizeUvarint(v) bytes of room at off.
func PutUvarint(buf []byte, off int, v uint64) int {
	n := 0
	for v >= 0x80 {
		buf[off+n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[off+n] = byte(v)
	return n + 1
}

// PutVarint encodes v through its two's-complement uint64, matching
// SizeVarint.
func PutVarint(buf []byte, off int, v int64) int {
	return PutUvarint(buf, off, uint64(v))
}

// PutUvarintSmall is the machine-word counterpart of PutUvarint.
func PutUvarintSmall(buf []byte, off int, v uint) int {
	n := 0
	for v >= 0x80 {
		buf[off+n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[off+n] = byte(v)
	return n + 1
}

// AppendUvarint appends the encoding of v to b.
func AppendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}
