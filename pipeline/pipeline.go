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

// Package pipeline wires the OTLP converter, the schema engine and the wire
// encoder into a request-scoped forwarding pipeline: OTLP/JSON in, snappy
// compressed remote-write out. A Pipeline is immutable after New and safe for
// unlimited concurrent use; every invocation owns its series and buffers.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/common/promslog"
	"go.opentelemetry.io/collector/pdata/pmetric/pmetricotlp"

	"github.com/hUwUtao/otelturbine/otlpconvert"
	"github.com/hUwUtao/otelturbine/schema"
	"github.com/hUwUtao/otelturbine/wire"
)

const (
	// contentTypeJSON is the only accepted inbound media type; the protobuf
	// OTLP flavor is deliberately rejected with 415.
	contentTypeJSON = "application/json"

	remoteWriteContentType = "application/x-protobuf"
	remoteWriteVersion     = "0.1.0"

	// maxErrMsgLen bounds diagnostic messages copied from downstream
	// responses into results.
	maxErrMsgLen = 500
)

// Result is the outcome of one pipeline invocation, expressed as an HTTP
// status for the host server to relay: 200 forwarded, 204 nothing to forward,
// 400 bad payload, 415 unsupported content type, 502 downstream failure.
type Result struct {
	Status  int
	Message string
}

// Pipeline converts, filters, encodes and forwards metrics. Build one with
// New and keep it for the process lifetime; schema compilation happens once
// here and never per request.
type Pipeline struct {
	cfg     Config
	schemas []schema.CompiledSchema
	client  *http.Client
	codec   Codec
	timeout time.Duration
	logger  *slog.Logger
}

// Option customizes a Pipeline beyond its Config.
type Option func(*Pipeline)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithHTTPClient sets the outbound client, e.g. to share pooling with the
// host. The pipeline still applies its own per-push deadline.
func WithHTTPClient(c *http.Client) Option { return func(p *Pipeline) { p.client = c } }

// WithCodec replaces the snappy compression codec.
func WithCodec(c Codec) Option { return func(p *Pipeline) { p.codec = c } }

// New compiles the schemas and returns a ready Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	if cfg.DefaultAction == "" {
		cfg.DefaultAction = DefaultConfig.DefaultAction
	}
	compiled, err := schema.Compile(cfg.Schemas)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:     cfg,
		schemas: compiled,
		client:  http.DefaultClient,
		codec:   snappyCodec{},
		timeout: time.Duration(cfg.Timeout),
		logger:  promslog.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// run executes one invocation: validate → parse → convert → filter → inject →
// encode → compress → transmit. No retries at this layer.
func (p *Pipeline) run(ctx context.Context, contentType string, body []byte, rules []injectRule) Result {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != contentTypeJSON {
		return Result{Status: http.StatusUnsupportedMediaType, Message: fmt.Sprintf("unsupported content type %q", contentType)}
	}

	// The OTLP decoder treats an absent resourceMetrics list as an empty
	// payload; the protocol distinguishes the two, so probe the raw body
	// before decoding.
	if jsoniter.Get(body, "resourceMetrics").ValueType() != jsoniter.ArrayValue {
		return Result{Status: http.StatusBadRequest, Message: "missing resourceMetrics"}
	}
	req := pmetricotlp.NewExportRequest()
	if err := req.UnmarshalJSON(body); err != nil {
		return Result{Status: http.StatusBadRequest, Message: "malformed OTLP payload"}
	}

	series := otlpconvert.Convert(req.Metrics())
	converted := len(series)
	series = schema.Apply(series, p.schemas, p.cfg.DefaultAction)
	inject(series, rules)
	p.logger.Debug("converted payload", "series", converted, "forwarded", len(series))
	if len(series) == 0 {
		return Result{Status: http.StatusNoContent, Message: "no series to forward"}
	}

	encoded := wire.Marshal(&wire.WriteRequest{Timeseries: series})
	compressed, err := p.codec.Compress(encoded)
	if err != nil {
		return Result{Status: http.StatusBadGateway, Message: truncate("compression failed: " + err.Error())}
	}
	if err := p.send(ctx, compressed); err != nil {
		p.logger.Warn("remote write failed", "err", err)
		return Result{Status: http.StatusBadGateway, Message: truncate(err.Error())}
	}
	return Result{Status: http.StatusOK, Message: "forwarded"}
}

// send posts the compressed payload to the remote-write endpoint, bounded by
// the configured timeout. Any non-2xx response is an error carrying the start
// of the response body.
func (p *Pipeline) send(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RemoteWriteURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building remote write request: %w", err)
	}
	req.Header.Set("Content-Type", remoteWriteContentType)
	req.Header.Set("Content-Encoding", p.codec.ContentEncoding())
	req.Header.Set("X-Prometheus-Remote-Write-Version", remoteWriteVersion)
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote write: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrMsgLen))
		return fmt.Errorf("remote write returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func truncate(s string) string {
	if len(s) > maxErrMsgLen {
		return s[:maxErrMsgLen]
	}
	return s
}
