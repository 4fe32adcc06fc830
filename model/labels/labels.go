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

// Package labels implements the label set attached to every time series
// flowing through the pipeline. A set is a flat slice kept sorted by label
// name with no duplicate names, so lookups are binary searches and the
// remote-write encoder can emit it without re-sorting.
package labels

import (
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/common/model"
)

// MetricName is the reserved label holding the metric name. Every series
// carries it exactly once.
const MetricName = model.MetricNameLabel

// seps separates name/value pairs when hashing, same byte Prometheus uses
// in labels.StableHash.
var seps = []byte{'\xff'}

// Label is a single name/value pair.
type Label struct {
	Name  string
	Value string
}

// Labels is a set of labels sorted by name. Callers mutating a Labels must
// preserve the ordering invariant or call Sort before handing it on.
type Labels []Label

// New returns a sorted label set built from the given pairs.
func New(ls ...Label) Labels {
	set := make(Labels, 0, len(ls))
	set = append(set, ls...)
	set.Sort()
	return set
}

// FromMap returns a sorted label set built from a name→value map.
func FromMap(m map[string]string) Labels {
	set := make(Labels, 0, len(m))
	for name, value := range m {
		set = append(set, Label{Name: name, Value: value})
	}
	set.Sort()
	return set
}

// FromStrings returns a sorted label set from pairs of strings.
// It panics on an odd number of arguments.
func FromStrings(ss ...string) Labels {
	if len(ss)%2 != 0 {
		panic("invalid number of strings")
	}
	set := make(Labels, 0, len(ss)/2)
	for i := 0; i < len(ss); i += 2 {
		set = append(set, Label{Name: ss[i], Value: ss[i+1]})
	}
	set.Sort()
	return set
}

// Sort re-establishes the by-name ordering invariant.
func (ls Labels) Sort() {
	slices.SortStableFunc(ls, func(a, b Label) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// search returns the index of name in ls and whether it is present.
func (ls Labels) search(name string) (int, bool) {
	return slices.BinarySearchFunc(ls, name, func(l Label, n string) int {
		return strings.Compare(l.Name, n)
	})
}

// Get returns the value of the label with the given name and whether the
// label is present. ls must be sorted.
func (ls Labels) Get(name string) (string, bool) {
	if i, ok := ls.search(name); ok {
		return ls[i].Value, true
	}
	return "", false
}

// Has reports whether the set contains a label with the given name.
func (ls Labels) Has(name string) bool {
	_, ok := ls.search(name)
	return ok
}

// Set overwrites the value of name in place when present, otherwise inserts
// the pair at its sorted position. The receiver slice may be reallocated.
func (ls Labels) Set(name, value string) Labels {
	i, ok := ls.search(name)
	if ok {
		ls[i].Value = value
		return ls
	}
	return slices.Insert(ls, i, Label{Name: name, Value: value})
}

// Del removes the label with the given name, if present.
func (ls Labels) Del(name string) Labels {
	if i, ok := ls.search(name); ok {
		return slices.Delete(ls, i, i+1)
	}
	return ls
}

// MetricName returns the value of the __name__ label, or "" when absent.
func (ls Labels) MetricName() string {
	v, _ := ls.Get(MetricName)
	return v
}

// Copy returns an independent copy of the set.
func (ls Labels) Copy() Labels {
	return slices.Clone(ls)
}

// Equal reports whether two sets hold the same pairs in the same order.
func (ls Labels) Equal(other Labels) bool {
	return slices.Equal(ls, other)
}

// Hash returns a signature of the set, the same algorithm as Prometheus'
// labels.StableHash. ls must be sorted, otherwise equal sets hash apart.
func (ls Labels) Hash() uint64 {
	b := make([]byte, 0, 1024)
	for i, l := range ls {
		if len(b)+len(l.Name)+len(l.Value)+2 >= cap(b) {
			// If the set is 1KB+, switch to the streaming digest rather than
			// allocating the whole entry.
			h := xxhash.New()
			_, _ = h.Write(b)
			for _, l := range ls[i:] {
				_, _ = h.WriteString(l.Name)
				_, _ = h.Write(seps)
				_, _ = h.WriteString(l.Value)
				_, _ = h.Write(seps)
			}
			return h.Sum64()
		}

		b = append(b, l.Name...)
		b = append(b, seps[0])
		b = append(b, l.Value...)
		b = append(b, seps[0])
	}
	return xxhash.Sum64(b)
}

// String returns the set in the usual {name="value", ...} form.
func (ls Labels) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.Name)
		b.WriteByte('=')
		b.WriteByte('"')
		b.WriteString(l.Value)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
