package model

import (
	"time"
)

// Sample is one measurement snapshot reported by the gateway.
// It is a value type: copies are handed around, nothing mutates a Sample once built.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Voltage   float64   `json:"voltage"`
	Current   float64   `json:"current"`
	Power     float64   `json:"power"`
}

// RawSample is the wire shape of a sample. Any field may be absent, null or garbage.
type RawSample map[string]interface{}

const (
	fieldTimestamp = "timestamp"
)

func CreateSample(dateTime time.Time, voltage, current, power float64) Sample {
	return Sample{
		Timestamp: dateTime,
		Voltage:   ToNumberOrZero(voltage),
		Current:   ToNumberOrZero(current),
		Power:     ToNumberOrZero(power),
	}
}

// NewSample applies the ingestion tolerance policy to a raw sample.
func NewSample(raw RawSample) Sample {
	if raw == nil {
		return Sample{}
	}
	return Sample{
		Timestamp: ToTimeOrZero(raw[fieldTimestamp]),
		Voltage:   raw.Value(Voltage),
		Current:   raw.Value(Current),
		Power:     raw.Value(Power),
	}
}

// Value returns the numeric value of metric m, 0 when missing or malformed.
func (raw RawSample) Value(m Metric) float64 {
	if raw == nil {
		return 0
	}
	return ToNumberOrZero(raw[string(m)])
}

// Value returns the value of metric m.
func (s Sample) Value(m Metric) float64 {
	switch m {
	case Voltage:
		return s.Voltage
	case Current:
		return s.Current
	case Power:
		return s.Power
	}
	return 0
}

// ToRawSample converts a decoded JSON element into a RawSample.
// Elements that are not objects yield nil, which NewSample turns into a zero Sample.
func ToRawSample(v interface{}) RawSample {
	switch t := v.(type) {
	case RawSample:
		return t
	case map[string]interface{}:
		return RawSample(t)
	default:
		return nil
	}
}
