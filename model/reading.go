package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
)

type Metric string

const (
	Voltage Metric = "voltage"
	Current Metric = "current"
	Power   Metric = "power"
)

// Metrics lists every metric tracked by the live reading, in display order.
var Metrics = []Metric{Voltage, Current, Power}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Direction maps a trend onto +1, -1 or 0.
func (t Trend) Direction() int {
	switch t {
	case TrendUp:
		return 1
	case TrendDown:
		return -1
	}
	return 0
}

type ConnectionState string

const (
	Disconnected   ConnectionState = "disconnected"
	Connected      ConnectionState = "connected"
	WaitingForData ConnectionState = "waitingForData"
)

// Label is the text shown on the connection badge.
func (c ConnectionState) Label() string {
	switch c {
	case Connected:
		return constant.StatusConnected
	case WaitingForData:
		return constant.StatusWaiting
	}
	return constant.StatusDisconnected
}

// Connected reports whether the transport link is up, with or without data.
func (c ConnectionState) Connected() bool {
	return c == Connected || c == WaitingForData
}

// LiveReading is the last known state of the gateway stream.
type LiveReading struct {
	Values          map[Metric]float64 `json:"values"`
	Trend           map[Metric]Trend   `json:"trends"`
	ConnectionState ConnectionState    `json:"connectionState"`
	Status          string             `json:"status"`
	Connected       bool               `json:"connected"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func CreateLiveReading() *LiveReading {
	r := &LiveReading{
		Values:          make(map[Metric]float64, len(Metrics)),
		Trend:           make(map[Metric]Trend, len(Metrics)),
		ConnectionState: Disconnected,
	}
	for _, m := range Metrics {
		r.Values[m] = 0
		r.Trend[m] = TrendStable
	}
	r.SetConnectionState(Disconnected)
	return r
}

func (r *LiveReading) SetConnectionState(state ConnectionState) {
	r.ConnectionState = state
	r.Status = state.Label()
	r.Connected = state.Connected()
}

// Clone returns a deep copy safe to hand to readers.
func (r *LiveReading) Clone() LiveReading {
	c := *r
	c.Values = make(map[Metric]float64, len(r.Values))
	for k, v := range r.Values {
		c.Values[k] = v
	}
	c.Trend = make(map[Metric]Trend, len(r.Trend))
	for k, v := range r.Trend {
		c.Trend[k] = v
	}
	return c
}

var ErrUnknownTimeWindow = errors.New("unknown time window")

// TimeWindow selects how much history the analytics view covers.
type TimeWindow string

const (
	Daily   TimeWindow = "daily"
	Weekly  TimeWindow = "weekly"
	Monthly TimeWindow = "monthly"
)

var TimeWindows = []TimeWindow{Daily, Weekly, Monthly}

func ParseTimeWindow(s string) (TimeWindow, error) {
	switch tw := TimeWindow(strings.ToLower(strings.TrimSpace(s))); tw {
	case Daily, Weekly, Monthly:
		return tw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeWindow, s)
}

// Size is the number of most recent samples the window keeps.
func (tw TimeWindow) Size() int {
	switch tw {
	case Weekly:
		return constant.WeeklyWindowSize
	case Monthly:
		return constant.MonthlyWindowSize
	}
	return constant.DailyWindowSize
}

type Stats struct {
	Peak    float64 `json:"peak"`
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
}

type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AggregateResult is the analytics view for one time window.
type AggregateResult struct {
	Range   TimeWindow    `json:"range"`
	Window  []Sample      `json:"window"`
	Series  []SeriesPoint `json:"series"`
	Stats   Stats         `json:"stats"`
	Unit    string        `json:"unit"`
	Title   string        `json:"title"`
	HasData bool          `json:"hasData"`
}
