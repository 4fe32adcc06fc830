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

package schema

import (
	"github.com/hUwUtao/otelturbine/model/labels"
	"github.com/hUwUtao/otelturbine/wire"
)

// Apply runs the compiled rules over the series list. For each series the
// first schema whose name pattern matches the metric name wins; series
// matching no schema follow def. Series and their label slices are mutated in
// place; the input must not be reused afterwards.
func Apply(series []wire.TimeSeries, schemas []CompiledSchema, def Action) []wire.TimeSeries {
	out := series[:0]
	for i := range series {
		s := &series[i]
		cs := match(s.Labels.MetricName(), schemas)
		if cs == nil {
			if def == ActionPass {
				out = append(out, *s)
			}
			continue
		}
		if applySchema(s, cs) {
			out = append(out, *s)
		}
	}
	return out
}

func match(name string, schemas []CompiledSchema) *CompiledSchema {
	for i := range schemas {
		if schemas[i].Name.Matches(name) {
			return &schemas[i]
		}
	}
	return nil
}

// applySchema filters and rewrites the series labels, reporting whether the
// series survives.
func applySchema(s *wire.TimeSeries, cs *CompiledSchema) bool {
	// One pass over the (sorted) labels. An explicitly listed label that is
	// missing or whose value fails its matcher kills the series; an unlisted
	// label is value-filtered by the wildcard and at worst dropped alone.
	kept := s.Labels[:0]
	seen := 0
	for _, l := range s.Labels {
		switch m, explicit := cs.Labels[l.Name]; {
		case l.Name == labels.MetricName:
			kept = append(kept, l)
		case explicit:
			if !m.Matches(l.Value) {
				return false
			}
			kept = append(kept, l)
			seen++
		case cs.Wildcard != nil && cs.Wildcard.Matches(l.Value):
			kept = append(kept, l)
		}
	}
	if seen < len(cs.Labels) {
		// A required label was absent entirely.
		return false
	}
	s.Labels = kept

	// Injection overwrites in place or inserts at sorted position; it never
	// drops a series.
	for _, inj := range cs.Inject {
		s.Labels = s.Labels.Set(inj.Name, inj.Value)
	}

	if cs.MaxLabels > 0 {
		s.Labels = capLabels(s.Labels, cs.MaxLabels)
	}
	return true
}

// capLabels truncates the set to the first max labels by name, never counting
// or dropping __name__.
func capLabels(ls labels.Labels, max int) labels.Labels {
	name, hasName := ls.Get(labels.MetricName)
	ls = ls.Del(labels.MetricName)
	if len(ls) > max {
		ls = ls[:max]
	}
	if hasName {
		ls = ls.Set(labels.MetricName, name)
	}
	return ls
}
