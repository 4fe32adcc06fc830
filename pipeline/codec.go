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

package pipeline

import "github.com/golang/snappy"

// Codec compresses the encoded write request before transmission. The
// remote-write 0.1.0 protocol mandates snappy block format, which the default
// codec provides; tests substitute their own.
type Codec interface {
	Compress(b []byte) ([]byte, error)
	// ContentEncoding is the value sent in the Content-Encoding header.
	ContentEncoding() string
}

type snappyCodec struct{}

func (snappyCodec) Compress(b []byte) ([]byte, error) { return snappy.Encode(nil, b), nil }
func (snappyCodec) ContentEncoding() string           { return "snappy" }
