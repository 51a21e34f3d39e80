package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/aggregator"
	"github.com/M1HNE41/Solar-Sense-App/gateway"
	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
	"github.com/gorhill/cronexpr"
	"go.uber.org/zap"
)

type AnalyticsController struct {
	logger        *zap.Logger
	location      *time.Location
	cronExpr      *cronexpr.Expression
	mu            sync.RWMutex
	history       []model.Sample
	loading       bool
	loaded        bool
	resultHandler func(result model.AggregateResult)
}

func CreateAnalyticsController(l *zap.Logger, loc *time.Location, cronExprString string) *AnalyticsController {
	if loc == nil {
		loc = time.Local
	}
	expr, err := cronexpr.Parse(cronExprString)
	if err != nil {
		l.Warn("invalid refresh cron expression, use default",
			zap.String("expr", cronExprString), zap.Error(err))
		expr = cronexpr.MustParse(constant.DefaultHistoryRefreshCron)
	}
	return &AnalyticsController{
		logger:   l,
		location: loc,
		cronExpr: expr,
		loading:  true,
	}
}

func (controller *AnalyticsController) RegistHandler(handler func(result model.AggregateResult)) {
	if handler != nil {
		controller.resultHandler = handler
	}
}

// LoadHistory replaces the history with payload. A payload that is not a list
// leaves the history empty and returns false.
func (controller *AnalyticsController) LoadHistory(payload interface{}) bool {
	var elems []interface{}
	switch t := payload.(type) {
	case []interface{}:
		elems = t
	case []model.RawSample:
		elems = make([]interface{}, 0, len(t))
		for _, raw := range t {
			elems = append(elems, raw)
		}
	case []map[string]interface{}:
		elems = make([]interface{}, 0, len(t))
		for _, raw := range t {
			elems = append(elems, raw)
		}
	default:
		controller.logger.Warn(fmt.Sprintf("history payload is not a list: %T", payload))
		controller.setHistory(nil)
		return false
	}

	samples := make([]model.Sample, 0, len(elems))
	for _, e := range elems {
		samples = append(samples, model.NewSample(model.ToRawSample(e)))
	}
	controller.setHistory(aggregator.NormalizeHistory(samples))
	controller.logger.Debug(fmt.Sprintf("history loaded: %d samples", len(samples)))
	return true
}

func (controller *AnalyticsController) setHistory(history []model.Sample) {
	controller.mu.Lock()
	controller.history = history
	controller.loading = false
	controller.loaded = true
	controller.mu.Unlock()
}

// Refresh fetches the history. A failed fetch empties the history.
func (controller *AnalyticsController) Refresh(ctx context.Context, fetcher gateway.HistoryFetcher) bool {
	payload, err := fetcher.FetchHistory(ctx)
	if err != nil {
		controller.logger.Error("error fetching historical data", zap.Error(err))
		controller.setHistory(nil)
		controller.notify()
		return false
	}
	ok := controller.LoadHistory(payload)
	controller.notify()
	return ok && controller.HasData()
}

func (controller *AnalyticsController) notify() {
	if controller.resultHandler == nil {
		return
	}
	for _, tw := range model.TimeWindows {
		controller.resultHandler(controller.Result(tw))
	}
}

// Run refreshes once, then on every tick of the cron schedule until ctx is done.
func (controller *AnalyticsController) Run(ctx context.Context, fetcher gateway.HistoryFetcher) {
	for {
		controller.Refresh(ctx, fetcher)

		next := controller.cronExpr.Next(time.Now())
		if next.IsZero() {
			controller.logger.Warn("refresh schedule has no next time")
			return
		}
		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// Result computes the analytics view for tw from the current history.
func (controller *AnalyticsController) Result(tw model.TimeWindow) model.AggregateResult {
	controller.mu.RLock()
	history := controller.history
	controller.mu.RUnlock()
	return aggregator.Aggregate(history, tw, controller.location)
}

func (controller *AnalyticsController) History() []model.Sample {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	out := make([]model.Sample, len(controller.history))
	copy(out, controller.history)
	return out
}

func (controller *AnalyticsController) Loading() bool {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.loading
}

func (controller *AnalyticsController) HasData() bool {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return len(controller.history) > 0
}

func (controller *AnalyticsController) Readiness() bool {
	controller.mu.RLock()
	defer controller.mu.RUnlock()
	return controller.loaded
}
