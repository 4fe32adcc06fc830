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
	"fmt"

	"github.com/grafana/regexp"

	"github.com/hUwUtao/otelturbine/model/labels"
)

type matchKind int

const (
	matchAny matchKind = iota
	matchExact
	matchRegexp
)

// Matcher matches strings against a compiled pattern. Patterns recognized as
// "match anything" or as a bare literal are downgraded to cheaper checks; the
// downgrade is purely a performance cache with no behavioral difference from
// evaluating the anchored pattern.
type Matcher struct {
	kind    matchKind
	literal string
	re      *regexp.Regexp
}

// NewMatcher compiles pattern into a Matcher. "", ".*" and "*" match
// anything; a pattern free of regexp metacharacters matches by string
// equality; everything else is an anchored regexp.
func NewMatcher(pattern string) (*Matcher, error) {
	switch pattern {
	case "", ".*", Wildcard:
		return &Matcher{kind: matchAny}, nil
	}
	if regexp.QuoteMeta(pattern) == pattern {
		return &Matcher{kind: matchExact, literal: pattern}, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return &Matcher{kind: matchRegexp, re: re}, nil
}

// Matches reports whether s satisfies the pattern.
func (m *Matcher) Matches(s string) bool {
	switch m.kind {
	case matchAny:
		return true
	case matchExact:
		return m.literal == s
	default:
		return m.re.MatchString(s)
	}
}

// CompiledSchema is the reusable form of a MetricSchema. Built once per
// pipeline, read-only afterwards, safe for concurrent use.
type CompiledSchema struct {
	Name      *Matcher
	Labels    map[string]*Matcher
	Wildcard  *Matcher
	Inject    labels.Labels
	MaxLabels int
}

// Compile translates the rules into their matcher form, preserving order.
func Compile(schemas []MetricSchema) ([]CompiledSchema, error) {
	compiled := make([]CompiledSchema, 0, len(schemas))
	for i, s := range schemas {
		name, err := NewMatcher(s.Name)
		if err != nil {
			return nil, fmt.Errorf("schema %d: name: %w", i, err)
		}
		cs := CompiledSchema{Name: name, MaxLabels: s.MaxLabels}
		for ln, pattern := range s.Labels {
			m, err := NewMatcher(pattern)
			if err != nil {
				return nil, fmt.Errorf("schema %d: label %q: %w", i, ln, err)
			}
			if ln == Wildcard {
				cs.Wildcard = m
				continue
			}
			if cs.Labels == nil {
				cs.Labels = make(map[string]*Matcher, len(s.Labels))
			}
			cs.Labels[ln] = m
		}
		// Flatten injections to a sorted slice so application is a
		// deterministic merge with no per-request map walks.
		if len(s.Inject) > 0 {
			cs.Inject = make(labels.Labels, 0, len(s.Inject))
			for n, v := range s.Inject {
				cs.Inject = append(cs.Inject, labels.Label{Name: n, Value: v})
			}
			cs.Inject.Sort()
		}
		compiled = append(compiled, cs)
	}
	return compiled, nil
}
