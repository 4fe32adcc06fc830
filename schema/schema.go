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

// Package schema filters and relabels series according to user-authored
// rules. Rules are compiled once into fast matchers and applied per request;
// matching is strictly first-rule-wins in the order supplied.
package schema

import "fmt"

// Wildcard is the label-rule key matching any label name. The attached
// pattern filters unlisted labels by value.
const Wildcard = "*"

// Action is what happens to a series no schema matches.
type Action string

const (
	// ActionPass forwards unmatched series untouched.
	ActionPass Action = "pass"
	// ActionDrop discards unmatched series.
	ActionDrop Action = "drop"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Action) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch act := Action(s); act {
	case ActionPass, ActionDrop:
		*a = act
		return nil
	}
	return fmt.Errorf("unknown default action %q", s)
}

// MetricSchema is one user-authored rule. Immutable once supplied.
//
// Name selects metrics: a plain string matches exactly, anything containing
// regexp metacharacters is an anchored pattern, and "*" matches every metric.
// Labels maps a label name to the value pattern it must satisfy; a listed
// label is mandatory and a failing or missing one drops the whole series. The
// Wildcard key instead value-filters every label not listed explicitly.
// Inject pairs are set on every matched series, overwriting existing values.
// MaxLabels, when positive, caps the number of labels besides __name__.
type MetricSchema struct {
	Name      string            `yaml:"name"`
	Labels    map[string]string `yaml:"labels,omitempty"`
	Inject    map[string]string `yaml:"inject,omitempty"`
	MaxLabels int               `yaml:"max_labels,omitempty"`
}
