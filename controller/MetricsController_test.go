package controller

import (
	"testing"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetricsUpdate(t *testing.T) {
	m := CreateMetricsController(zap.NewNop(), prometheus.NewRegistry())

	live := CreateLiveController(zap.NewNop())
	live.RegistHandler(m.Update)
	live.OnConnect()
	live.OnUpdate([]model.RawSample{{"voltage": 230.0, "current": 2.0, "power": 460.0}})
	live.OnUpdate([]model.RawSample{{"voltage": 229.0, "current": 2.0, "power": 460.0}})

	assert.Equal(t, 229.0, testutil.ToFloat64(m.voltage))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.current))
	assert.Equal(t, 460.0, testutil.ToFloat64(m.power))
	assert.Equal(t, -1.0, testutil.ToFloat64(m.trend.WithLabelValues("voltage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trend.WithLabelValues("power")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionState))

	live.OnWaiting()
	live.OnDisconnect()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connectionState))
}

func TestMetricsUpdateAnalytics(t *testing.T) {
	m := CreateMetricsController(zap.NewNop(), prometheus.NewRegistry())
	m.UpdateAnalytics(model.AggregateResult{
		Range: model.Weekly,
		Unit:  "kWh",
		Stats: model.Stats{Peak: 30, Average: 20, Total: 60},
	})

	assert.Equal(t, 30.0, testutil.ToFloat64(m.windowPeak.WithLabelValues("weekly", "kWh")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.windowAverage.WithLabelValues("weekly", "kWh")))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.windowTotal.WithLabelValues("weekly", "kWh")))
}
