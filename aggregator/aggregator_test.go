package aggregator

import (
	"math"
	"testing"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// makeHistory returns n samples oldest-first, one minute apart, power = index.
func makeHistory(n int) []model.Sample {
	out := make([]model.Sample, n)
	for i := range out {
		out[i] = model.CreateSample(base.Add(time.Duration(i)*time.Minute), 230, 1, float64(i))
	}
	return out
}

func powers(samples []model.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Power
	}
	return out
}

func TestNormalizeHistoryReversesOldestFirst(t *testing.T) {
	in := makeHistory(4)
	got := NormalizeHistory(in)
	assert.Equal(t, []float64{3, 2, 1, 0}, powers(got))
	// input untouched
	assert.Equal(t, []float64{0, 1, 2, 3}, powers(in))
}

func TestNormalizeHistoryKeepsNewestFirst(t *testing.T) {
	in := NormalizeHistory(makeHistory(4))
	got := NormalizeHistory(in)
	assert.Equal(t, []float64{3, 2, 1, 0}, powers(got))
}

func TestNormalizeHistorySkipsMissingTimestamps(t *testing.T) {
	in := []model.Sample{
		{Power: 9},
		model.CreateSample(base.Add(2*time.Minute), 0, 0, 2),
		model.CreateSample(base.Add(time.Minute), 0, 0, 1),
		{Power: 8},
	}
	got := NormalizeHistory(in)
	assert.Equal(t, []float64{9, 2, 1, 8}, powers(got))
}

func TestNormalizeHistoryUndecidableIsReversed(t *testing.T) {
	in := []model.Sample{{Power: 1}, {Power: 2}, {Power: 3}}
	assert.Equal(t, []float64{3, 2, 1}, powers(NormalizeHistory(in)))
	assert.Empty(t, NormalizeHistory(nil))
}

func TestSelectWindow(t *testing.T) {
	history := NormalizeHistory(makeHistory(60))

	daily := SelectWindow(history, model.Daily)
	require.Len(t, daily, 12)
	assert.Equal(t, 59.0, daily[0].Power)
	assert.Equal(t, 48.0, daily[11].Power)

	assert.Len(t, SelectWindow(history, model.Weekly), 24)
	assert.Len(t, SelectWindow(history, model.Monthly), 48)

	short := history[:5]
	assert.Len(t, SelectWindow(short, model.Monthly), 5)

	assert.Empty(t, SelectWindow(nil, model.Daily))
	assert.Empty(t, SelectWindow([]model.Sample{}, model.Weekly))
}

func TestSelectWindowDoesNotAlias(t *testing.T) {
	history := NormalizeHistory(makeHistory(3))
	window := SelectWindow(history, model.Daily)
	window[0] = model.Sample{Power: 1000}
	assert.Equal(t, 2.0, history[0].Power)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, model.Stats{}, ComputeStats(nil))

	got := ComputeStats([]model.Sample{{Power: 10}, {Power: 20}, {Power: 30}})
	assert.Equal(t, model.Stats{Peak: 30, Average: 20, Total: 60}, got)
}

func TestComputeStatsMalformedPowerCountsAsZero(t *testing.T) {
	window := []model.Sample{
		model.NewSample(model.RawSample{"power": "bad"}),
		model.NewSample(model.RawSample{"power": 5.0}),
	}
	assert.Equal(t, model.Stats{Peak: 5, Average: 2.5, Total: 5}, ComputeStats(window))

	// hand-built samples carrying NaN must not poison the sums either
	got := ComputeStats([]model.Sample{{Power: math.NaN()}, {Power: 4}})
	assert.Equal(t, model.Stats{Peak: 4, Average: 2, Total: 4}, got)
}

func TestBuildSeries(t *testing.T) {
	window := []model.Sample{
		model.CreateSample(base.Add(90*time.Second), 0, 0, 7),
		{Power: 3},
	}
	got := BuildSeries(window, time.UTC)
	assert.Equal(t, []model.SeriesPoint{
		{Label: "08:01:30", Value: 7},
		{Label: "--:--:--", Value: 3},
	}, got)

	tokyo := time.FixedZone("Asia/Tokyo", 9*60*60)
	assert.Equal(t, "17:00:00", TimeLabel(base, tokyo))
	assert.Empty(t, BuildSeries(nil, time.UTC))
}

func TestUnitAndTitle(t *testing.T) {
	assert.Equal(t, "kW", UnitFor(model.Daily))
	assert.Equal(t, "kWh", UnitFor(model.Weekly))
	assert.Equal(t, "kWh", UnitFor(model.Monthly))

	assert.Equal(t, "Today's Production", TitleFor(model.Daily))
	assert.Equal(t, "This Week's Production", TitleFor(model.Weekly))
	assert.Equal(t, "This Year's Production", TitleFor(model.Monthly))
}

func TestAggregate(t *testing.T) {
	history := NormalizeHistory(makeHistory(30))
	got := Aggregate(history, model.Daily, time.UTC)

	assert.Equal(t, model.Daily, got.Range)
	assert.True(t, got.HasData)
	assert.Len(t, got.Window, 12)
	assert.Len(t, got.Series, 12)
	assert.Equal(t, "08:29:00", got.Series[0].Label)
	assert.Equal(t, 29.0, got.Stats.Peak)
	assert.Equal(t, 18.0+19+20+21+22+23+24+25+26+27+28+29, got.Stats.Total)
	assert.InDelta(t, 23.5, got.Stats.Average, 1e-9)
	assert.Equal(t, "kW", got.Unit)

	empty := Aggregate(nil, model.Monthly, time.UTC)
	assert.False(t, empty.HasData)
	assert.Equal(t, model.Stats{}, empty.Stats)
	assert.Equal(t, "kWh", empty.Unit)
}
