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

package otlpconvert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/hUwUtao/otelturbine/model/labels"
	"github.com/hUwUtao/otelturbine/wire"
)

const testNanos = pcommon.Timestamp(1718000000 * 1e9)

func newGauge(md pmetric.Metrics, name string) pmetric.NumberDataPoint {
	sm := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty()
	m := sm.Metrics().AppendEmpty()
	m.SetName(name)
	dp := m.SetEmptyGauge().DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	return dp
}

func TestConvertGauge(t *testing.T) {
	md := pmetric.NewMetrics()
	dp := newGauge(md, "node_temp")
	dp.SetDoubleValue(36.6)
	dp.Attributes().PutStr("core", "0")

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, labels.FromStrings(labels.MetricName, "node_temp", "core", "0"), series[0].Labels)
	require.Equal(t, []wire.Sample{{Value: 36.6, Timestamp: int64(testNanos) / 1e6}}, series[0].Samples)
}

func TestConvertIntValueCoerced(t *testing.T) {
	md := pmetric.NewMetrics()
	newGauge(md, "m").SetIntValue(42)

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, 42.0, series[0].Samples[0].Value)
}

func TestConvertUnsetValueIsZero(t *testing.T) {
	md := pmetric.NewMetrics()
	newGauge(md, "m")

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, 0.0, series[0].Samples[0].Value)
}

func TestConvertSum(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("requests_total")
	dp := m.SetEmptySum().DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	dp.SetDoubleValue(100)

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, "requests_total", series[0].Labels.MetricName())
}

func TestConvertMissingTimestampUsesWallClock(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("m")
	m.SetEmptyGauge().DataPoints().AppendEmpty().SetDoubleValue(1)

	c := NewConverter()
	now := time.UnixMilli(1700000000123)
	c.now = func() time.Time { return now }
	c.FromMetrics(md)

	series := c.TimeSeries()
	require.Len(t, series, 1)
	require.Equal(t, now.UnixMilli(), series[0].Samples[0].Timestamp)
}

func TestConvertAttributeMerge(t *testing.T) {
	md := pmetric.NewMetrics()
	rm := md.ResourceMetrics().AppendEmpty()
	rm.Resource().Attributes().PutStr("env", "prod")
	rm.Resource().Attributes().PutStr("host", "a1")
	m := rm.ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("m")
	dp := m.SetEmptyGauge().DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	dp.SetDoubleValue(1)
	// Data-point attributes win on key conflict.
	dp.Attributes().PutStr("env", "staging")
	dp.Attributes().PutInt("shard", 7)
	dp.Attributes().PutDouble("ratio", 0.5)
	dp.Attributes().PutBool("canary", true)
	dp.Attributes().PutEmptySlice("ignored")

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, labels.FromStrings(
		labels.MetricName, "m",
		"canary", "true",
		"env", "staging",
		"host", "a1",
		"ignored", "",
		"ratio", "0.5",
		"shard", "7",
	), series[0].Labels)
}

func TestConvertSeriesInvariants(t *testing.T) {
	md := pmetric.NewMetrics()
	rm := md.ResourceMetrics().AppendEmpty()
	rm.Resource().Attributes().PutStr("zz", "1")
	rm.Resource().Attributes().PutStr("aa", "2")
	m := rm.ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("m")
	h := m.SetEmptyHistogram()
	dp := h.DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	dp.ExplicitBounds().FromRaw([]float64{1})
	dp.BucketCounts().FromRaw([]uint64{1, 0})
	dp.SetCount(1)

	for _, s := range Convert(md) {
		require.NotEmpty(t, s.Labels.MetricName(), "series without __name__: %s", s.Labels)
		for i := 1; i < len(s.Labels); i++ {
			require.Less(t, s.Labels[i-1].Name, s.Labels[i].Name, "labels unsorted or duplicated: %s", s.Labels)
		}
	}
}

func TestConvertHistogram(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("req_duration")
	dp := m.SetEmptyHistogram().DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	dp.ExplicitBounds().FromRaw([]float64{10, 50, 100})
	dp.BucketCounts().FromRaw([]uint64{2, 3, 4, 1})
	dp.SetCount(10)
	dp.SetSum(321.5)

	series := Convert(md)
	require.Len(t, series, 6)

	byLe := map[string]float64{}
	for _, s := range series[:4] {
		require.Equal(t, "req_duration_bucket", s.Labels.MetricName())
		le, ok := s.Labels.Get("le")
		require.True(t, ok)
		byLe[le] = s.Samples[0].Value
	}
	// Bucket values are cumulative, not per bucket.
	require.Equal(t, map[string]float64{"10": 2, "50": 5, "100": 9, "+Inf": 10}, byLe)

	require.Equal(t, "req_duration_count", series[4].Labels.MetricName())
	require.Equal(t, 10.0, series[4].Samples[0].Value)
	require.Equal(t, "req_duration_sum", series[5].Labels.MetricName())
	require.Equal(t, 321.5, series[5].Samples[0].Value)
}

func TestConvertHistogramWithoutSum(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("h")
	dp := m.SetEmptyHistogram().DataPoints().AppendEmpty()
	dp.SetTimestamp(testNanos)
	dp.ExplicitBounds().FromRaw([]float64{5})
	dp.BucketCounts().FromRaw([]uint64{1, 1})
	dp.SetCount(2)

	series := Convert(md)
	require.Len(t, series, 4)
	require.Equal(t, "h_sum", series[3].Labels.MetricName())
	require.Equal(t, 0.0, series[3].Samples[0].Value)
}

func TestConvertCumulativeResetsPerDataPoint(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("h")
	h := m.SetEmptyHistogram()
	for i, counts := range [][]uint64{{3, 1}, {2, 2}} {
		dp := h.DataPoints().AppendEmpty()
		dp.SetTimestamp(testNanos)
		dp.Attributes().PutInt("dp", int64(i))
		dp.ExplicitBounds().FromRaw([]float64{1})
		dp.BucketCounts().FromRaw(counts)
		dp.SetCount(counts[0] + counts[1])
	}

	series := Convert(md)
	var firsts []float64
	for _, s := range series {
		if le, _ := s.Labels.Get("le"); le == "1" {
			firsts = append(firsts, s.Samples[0].Value)
		}
	}
	require.Equal(t, []float64{3, 2}, firsts)
}

func TestConvertSkipsUnsupportedKinds(t *testing.T) {
	md := pmetric.NewMetrics()
	ms := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics()

	sum := ms.AppendEmpty()
	sum.SetName("summary")
	sum.SetEmptySummary().DataPoints().AppendEmpty().SetTimestamp(testNanos)

	exp := ms.AppendEmpty()
	exp.SetName("expo")
	exp.SetEmptyExponentialHistogram().DataPoints().AppendEmpty().SetTimestamp(testNanos)

	g := ms.AppendEmpty()
	g.SetName("kept")
	g.SetEmptyGauge().DataPoints().AppendEmpty().SetDoubleValue(1)

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, "kept", series[0].Labels.MetricName())
}

func TestConvertMergesIdenticalLabelSets(t *testing.T) {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("m")
	g := m.SetEmptyGauge()
	for i := 0; i < 2; i++ {
		dp := g.DataPoints().AppendEmpty()
		dp.SetTimestamp(testNanos + pcommon.Timestamp(i)*1e9)
		dp.SetDoubleValue(float64(i))
	}

	series := Convert(md)
	require.Len(t, series, 1)
	require.Equal(t, []wire.Sample{
		{Value: 0, Timestamp: int64(testNanos) / 1e6},
		{Value: 1, Timestamp: int64(testNanos)/1e6 + 1000},
	}, series[0].Samples)
}

func TestConvertEmptyPayload(t *testing.T) {
	require.Empty(t, Convert(pmetric.NewMetrics()))

	md := pmetric.NewMetrics()
	md.ResourceMetrics().AppendEmpty()
	require.Empty(t, Convert(md))
}
