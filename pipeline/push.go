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

import (
	"context"
	"net/http"

	"github.com/hUwUtao/otelturbine/schema"
	"github.com/hUwUtao/otelturbine/wire"
)

// injectRule forces a label onto every series whose metric name matches the
// selector. Rules run strictly after schema filtering, so caller-supplied
// overrides always win and are never filtered out themselves.
type injectRule struct {
	selector *schema.Matcher
	name     string
	value    string
}

// Push accumulates per-request label injections and is consumed exactly once
// by Do. It must not be shared between concurrent requests.
type Push struct {
	p     *Pipeline
	rules []injectRule
	err   error
}

// Push starts a new per-request invocation builder.
func (p *Pipeline) Push() *Push {
	return &Push{p: p}
}

// Inject adds a label to every series whose resolved metric name matches
// selector ("*" for all metrics, a plain string for one, or a pattern). An
// invalid selector surfaces as a bad-request result from Do.
func (b *Push) Inject(selector, name, value string) *Push {
	if b.err != nil {
		return b
	}
	m, err := schema.NewMatcher(selector)
	if err != nil {
		b.err = err
		return b
	}
	b.rules = append(b.rules, injectRule{selector: m, name: name, value: value})
	return b
}

// Do runs the pipeline over one inbound request body.
func (b *Push) Do(ctx context.Context, contentType string, body []byte) Result {
	if b.err != nil {
		return Result{Status: http.StatusBadRequest, Message: truncate("invalid inject selector: " + b.err.Error())}
	}
	return b.p.run(ctx, contentType, body, b.rules)
}

func inject(series []wire.TimeSeries, rules []injectRule) {
	if len(rules) == 0 {
		return
	}
	for i := range series {
		name := series[i].Labels.MetricName()
		for _, r := range rules {
			if r.selector.Matches(name) {
				series[i].Labels = series[i].Labels.Set(r.name, r.value)
			}
		}
	}
}
