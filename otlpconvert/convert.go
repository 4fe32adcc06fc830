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

// Package otlpconvert turns an OTLP metrics payload into the flat series list
// the rest of the pipeline operates on. Gauges, cumulative sums and
// fixed-bucket histograms are converted; exponential histograms and summaries
// are skipped without error.
package otlpconvert

import (
	"strconv"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/hUwUtao/otelturbine/model/labels"
	"github.com/hUwUtao/otelturbine/wire"
)

const (
	sumSuffix    = "_sum"
	countSuffix  = "_count"
	bucketSuffix = "_bucket"
	leLabel      = "le"
	pInf         = "+Inf"
)

// Converter accumulates series across one payload. Data points carrying
// identical label sets are merged onto a single series, with samples in
// arrival order, so a payload never produces duplicate series. Converters are
// single-use and not safe for concurrent use; the pipeline allocates one per
// request.
type Converter struct {
	series []wire.TimeSeries
	// unique maps a label-set signature to indices into series. Slices handle
	// the (unlikely) hash collision: entries are compared by labels before use.
	unique map[uint64][]int

	// now is the fallback for data points without a timestamp.
	now func() time.Time
}

// NewConverter returns an empty converter.
func NewConverter() *Converter {
	return &Converter{
		unique: map[uint64][]int{},
		now:    time.Now,
	}
}

// Convert is shorthand for a single FromMetrics/TimeSeries round.
func Convert(md pmetric.Metrics) []wire.TimeSeries {
	c := NewConverter()
	c.FromMetrics(md)
	return c.TimeSeries()
}

// FromMetrics walks the resource→scope→metric structure and converts every
// supported metric. Missing or empty nesting levels simply contribute nothing.
func (c *Converter) FromMetrics(md pmetric.Metrics) {
	resourceMetrics := md.ResourceMetrics()
	for i := 0; i < resourceMetrics.Len(); i++ {
		rm := resourceMetrics.At(i)
		resourceAttrs := rm.Resource().Attributes()
		scopeMetrics := rm.ScopeMetrics()
		for j := 0; j < scopeMetrics.Len(); j++ {
			metrics := scopeMetrics.At(j).Metrics()
			for k := 0; k < metrics.Len(); k++ {
				metric := metrics.At(k)
				switch metric.Type() {
				case pmetric.MetricTypeGauge:
					c.addNumberDataPoints(metric.Gauge().DataPoints(), resourceAttrs, metric.Name())
				case pmetric.MetricTypeSum:
					c.addNumberDataPoints(metric.Sum().DataPoints(), resourceAttrs, metric.Name())
				case pmetric.MetricTypeHistogram:
					c.addHistogramDataPoints(metric.Histogram().DataPoints(), resourceAttrs, metric.Name())
				default:
					// Exponential histograms and summaries have no fixed-bucket
					// representation here; skip them silently.
				}
			}
		}
	}
}

// TimeSeries returns the converted series in first-seen order. The converter
// must not be reused afterwards.
func (c *Converter) TimeSeries() []wire.TimeSeries {
	return c.series
}

func (c *Converter) addNumberDataPoints(pts pmetric.NumberDataPointSlice, resourceAttrs pcommon.Map, name string) {
	for x := 0; x < pts.Len(); x++ {
		pt := pts.At(x)
		var val float64
		switch pt.ValueType() {
		case pmetric.NumberDataPointValueTypeInt:
			val = float64(pt.IntValue())
		case pmetric.NumberDataPointValueTypeDouble:
			val = pt.DoubleValue()
		}
		lbls := c.createLabels(resourceAttrs, pt.Attributes(), name)
		c.addSample(c.timestamp(pt.Timestamp()), val, lbls)
	}
}

func (c *Converter) addHistogramDataPoints(pts pmetric.HistogramDataPointSlice, resourceAttrs pcommon.Map, name string) {
	for x := 0; x < pts.Len(); x++ {
		pt := pts.At(x)
		ts := c.timestamp(pt.Timestamp())
		base := c.mergeAttributes(resourceAttrs, pt.Attributes())

		// Buckets carry the running sum of counts up to each bound, reset per
		// data point. The final +Inf bucket equals the total count.
		var cumulative uint64
		bounds := pt.ExplicitBounds()
		counts := pt.BucketCounts()
		for i := 0; i < bounds.Len() && i < counts.Len(); i++ {
			cumulative += counts.At(i)
			bound := strconv.FormatFloat(bounds.At(i), 'f', -1, 64)
			lbls := withName(base, name+bucketSuffix, labels.Label{Name: leLabel, Value: bound})
			c.addSample(ts, float64(cumulative), lbls)
		}
		infLabels := withName(base, name+bucketSuffix, labels.Label{Name: leLabel, Value: pInf})
		c.addSample(ts, float64(pt.Count()), infLabels)

		c.addSample(ts, float64(pt.Count()), withName(base, name+countSuffix))

		var sum float64
		if pt.HasSum() {
			sum = pt.Sum()
		}
		c.addSample(ts, sum, withName(base, name+sumSuffix))
	}
}

// addSample appends a sample to the series identified by lbls, creating the
// series on first sight. lbls must be sorted.
func (c *Converter) addSample(ts int64, val float64, lbls labels.Labels) {
	h := lbls.Hash()
	for _, idx := range c.unique[h] {
		if c.series[idx].Labels.Equal(lbls) {
			c.series[idx].Samples = append(c.series[idx].Samples, wire.Sample{Value: val, Timestamp: ts})
			return
		}
	}
	c.unique[h] = append(c.unique[h], len(c.series))
	c.series = append(c.series, wire.TimeSeries{
		Labels:  lbls,
		Samples: []wire.Sample{{Value: val, Timestamp: ts}},
	})
}

// timestamp converts an OTLP nanosecond timestamp to milliseconds, falling
// back to wall-clock time when the point carries none.
func (c *Converter) timestamp(ts pcommon.Timestamp) int64 {
	if ts == 0 {
		return c.now().UnixMilli()
	}
	return int64(ts) / int64(time.Millisecond)
}

// mergeAttributes flattens resource and data-point attributes into one map,
// the data point winning on key conflicts.
func (c *Converter) mergeAttributes(resourceAttrs, pointAttrs pcommon.Map) map[string]string {
	merged := make(map[string]string, resourceAttrs.Len()+pointAttrs.Len())
	resourceAttrs.Range(func(k string, v pcommon.Value) bool {
		merged[k] = attributeValue(v)
		return true
	})
	pointAttrs.Range(func(k string, v pcommon.Value) bool {
		merged[k] = attributeValue(v)
		return true
	})
	return merged
}

func (c *Converter) createLabels(resourceAttrs, pointAttrs pcommon.Map, name string) labels.Labels {
	return withName(c.mergeAttributes(resourceAttrs, pointAttrs), name)
}

// withName builds a sorted label set from merged attributes plus __name__ and
// any extras. Extras win over attributes of the same name.
func withName(attrs map[string]string, name string, extras ...labels.Label) labels.Labels {
	lbls := make(labels.Labels, 0, len(attrs)+1+len(extras))
	lbls = append(lbls, labels.Label{Name: labels.MetricName, Value: name})
	for _, e := range extras {
		if _, clash := attrs[e.Name]; !clash {
			lbls = append(lbls, e)
		}
	}
	for k, v := range attrs {
		if k == labels.MetricName {
			continue
		}
		if override, ok := overrides(extras, k); ok {
			lbls = append(lbls, labels.Label{Name: k, Value: override})
			continue
		}
		lbls = append(lbls, labels.Label{Name: k, Value: v})
	}
	lbls.Sort()
	return lbls
}

func overrides(extras []labels.Label, name string) (string, bool) {
	for _, e := range extras {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// attributeValue stringifies an attribute: strings pass through, numbers use
// decimal formatting, booleans become "true"/"false", anything else is empty.
func attributeValue(v pcommon.Value) string {
	switch v.Type() {
	case pcommon.ValueTypeStr:
		return v.Str()
	case pcommon.ValueTypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case pcommon.ValueTypeDouble:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case pcommon.ValueTypeBool:
		return strconv.FormatBool(v.Bool())
	default:
		return ""
	}
}
