// Package aggregator turns a fetched history into the windowed analytics view.
// Every function here is pure: inputs are never mutated and no state is kept
// between calls, so several readers may call them concurrently.
package aggregator

import (
	"time"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
)

// NormalizeHistory returns a most-recent-first copy of samples.
// The order is detected from the first and last usable timestamps; when it
// cannot be decided the input is assumed oldest-first, which is what the
// gateway server ships.
func NormalizeHistory(samples []model.Sample) []model.Sample {
	out := make([]model.Sample, len(samples))
	copy(out, samples)
	if newestFirst(out) {
		return out
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func newestFirst(samples []model.Sample) bool {
	first, last := -1, -1
	for i := range samples {
		if !samples[i].Timestamp.IsZero() {
			first = i
			break
		}
	}
	for i := len(samples) - 1; i > first; i-- {
		if !samples[i].Timestamp.IsZero() {
			last = i
			break
		}
	}
	if first < 0 || last < 0 {
		return false
	}
	return samples[first].Timestamp.After(samples[last].Timestamp)
}

// SelectWindow returns the newest tw.Size() samples of a normalized history.
func SelectWindow(history []model.Sample, tw model.TimeWindow) []model.Sample {
	n := tw.Size()
	if len(history) < n {
		n = len(history)
	}
	window := make([]model.Sample, n)
	copy(window, history[:n])
	return window
}

// ComputeStats derives peak, average and total power over the window.
func ComputeStats(window []model.Sample) model.Stats {
	if len(window) == 0 {
		return model.Stats{}
	}
	peak := model.ToNumberOrZero(window[0].Power)
	total := 0.0
	for _, s := range window {
		p := model.ToNumberOrZero(s.Power)
		if p > peak {
			peak = p
		}
		total += p
	}
	return model.Stats{
		Peak:    peak,
		Average: total / float64(len(window)),
		Total:   total,
	}
}

// BuildSeries produces one chart point per sample, keeping the window order.
func BuildSeries(window []model.Sample, loc *time.Location) []model.SeriesPoint {
	series := make([]model.SeriesPoint, 0, len(window))
	for _, s := range window {
		series = append(series, model.SeriesPoint{
			Label: TimeLabel(s.Timestamp, loc),
			Value: model.ToNumberOrZero(s.Power),
		})
	}
	return series
}

// TimeLabel renders the time of day of ts in loc.
func TimeLabel(ts time.Time, loc *time.Location) string {
	if ts.IsZero() {
		return constant.InvalidTimeLabel
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(constant.TimeLabelLayout)
}

func UnitFor(tw model.TimeWindow) string {
	if tw == model.Daily {
		return constant.UnitPower
	}
	return constant.UnitEnergy
}

func TitleFor(tw model.TimeWindow) string {
	switch tw {
	case model.Weekly:
		return constant.TitleWeekly
	case model.Monthly:
		return constant.TitleMonthly
	}
	return constant.TitleDaily
}

// Aggregate builds the complete analytics view of a normalized history.
func Aggregate(history []model.Sample, tw model.TimeWindow, loc *time.Location) model.AggregateResult {
	window := SelectWindow(history, tw)
	return model.AggregateResult{
		Range:   tw,
		Window:  window,
		Series:  BuildSeries(window, loc),
		Stats:   ComputeStats(window),
		Unit:    UnitFor(tw),
		Title:   TitleFor(tw),
		HasData: len(window) > 0,
	}
}
