package controller

import (
	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type MetricsController struct {
	logger          *zap.Logger
	voltage         prometheus.Gauge
	current         prometheus.Gauge
	power           prometheus.Gauge
	trend           *prometheus.GaugeVec
	connectionState prometheus.Gauge
	windowPeak      *prometheus.GaugeVec
	windowAverage   *prometheus.GaugeVec
	windowTotal     *prometheus.GaugeVec
}

func CreateMetricsController(l *zap.Logger, reg prometheus.Registerer) *MetricsController {
	c := MetricsController{
		logger: l,
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "voltage",
			Help:      "Latest Voltage [V]",
		}),
		current: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "current",
			Help:      "Latest Current [A]",
		}),
		power: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "power",
			Help:      "Latest Power [W]",
		}),
		trend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "trend",
			Help:      "Trend per metric (1 up, -1 down, 0 stable)",
		}, []string{"metric"}),
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "connection_state",
			Help:      "Gateway connection (0 disconnected, 1 connected, 2 waiting for data)",
		}),
		windowPeak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "window_peak",
			Help:      "Peak Production of the window",
		}, []string{"range", "unit"}),
		windowAverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "window_average",
			Help:      "Average Production of the window",
		}, []string{"range", "unit"}),
		windowTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "solar",
			Name:      "window_total",
			Help:      "Total Production of the window",
		}, []string{"range", "unit"}),
	}

	reg.MustRegister(c.voltage,
		c.current,
		c.power,
		c.trend,
		c.connectionState,
		c.windowPeak,
		c.windowAverage,
		c.windowTotal)

	return &c
}

// Update publishes a live reading.
func (controller *MetricsController) Update(reading model.LiveReading) {
	controller.voltage.Set(reading.Values[model.Voltage])
	controller.current.Set(reading.Values[model.Current])
	controller.power.Set(reading.Values[model.Power])
	for _, m := range model.Metrics {
		controller.trend.WithLabelValues(string(m)).Set(float64(reading.Trend[m].Direction()))
	}
	switch reading.ConnectionState {
	case model.Connected:
		controller.connectionState.Set(1)
	case model.WaitingForData:
		controller.connectionState.Set(2)
	default:
		controller.connectionState.Set(0)
	}
}

// UpdateAnalytics publishes the statistics of one window.
func (controller *MetricsController) UpdateAnalytics(result model.AggregateResult) {
	labels := []string{string(result.Range), result.Unit}
	controller.windowPeak.WithLabelValues(labels...).Set(result.Stats.Peak)
	controller.windowAverage.WithLabelValues(labels...).Set(result.Stats.Average)
	controller.windowTotal.WithLabelValues(labels...).Set(result.Stats.Total)
}

func CreatePrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
