package controller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/gateway"
	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionClosed = errors.New("live session is closed")

// LiveController is one dashboard session: it owns the live reading and the
// subscription feeding it. Events are applied one at a time, in delivery order.
type LiveController struct {
	logger             *zap.Logger
	sessionID          string
	mu                 sync.Mutex
	reading            *model.LiveReading
	subscription       gateway.Subscription
	closed             bool
	liveReadingHandler func(reading model.LiveReading)
}

func CreateLiveController(l *zap.Logger) *LiveController {
	id := uuid.NewString()
	return &LiveController{
		logger:    l.With(zap.String("session", id)),
		sessionID: id,
		reading:   model.CreateLiveReading(),
	}
}

func (controller *LiveController) SessionID() string {
	return controller.sessionID
}

// Open subscribes the session to source.
func (controller *LiveController) Open(source gateway.EventSource) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return ErrSessionClosed
	}
	if controller.subscription != nil {
		return fmt.Errorf("session %s is already open", controller.sessionID)
	}
	controller.subscription = source.Subscribe(gateway.Handlers{
		OnConnect:    controller.OnConnect,
		OnDisconnect: controller.OnDisconnect,
		OnWaiting:    controller.OnWaiting,
		OnUpdate:     controller.OnUpdate,
	})
	controller.logger.Info("live session opened")
	return nil
}

// Close unsubscribes from the source. Any later event is a no-op.
func (controller *LiveController) Close() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return
	}
	controller.closed = true
	if controller.subscription != nil {
		controller.subscription.Unsubscribe()
		controller.subscription = nil
	}
	controller.logger.Info("live session closed")
}

func (controller *LiveController) RegistHandler(handler func(reading model.LiveReading)) {
	if handler != nil {
		controller.liveReadingHandler = handler
	}
}

func (controller *LiveController) OnConnect() {
	controller.apply(func(r *model.LiveReading) bool {
		r.SetConnectionState(model.Connected)
		controller.logger.Info("gateway connected")
		return true
	})
}

func (controller *LiveController) OnDisconnect() {
	controller.apply(func(r *model.LiveReading) bool {
		r.SetConnectionState(model.Disconnected)
		controller.logger.Warn("gateway disconnected")
		return true
	})
}

// OnWaiting marks a connected session that has not received data yet.
func (controller *LiveController) OnWaiting() {
	controller.apply(func(r *model.LiveReading) bool {
		if r.ConnectionState != model.Connected {
			return false
		}
		r.SetConnectionState(model.WaitingForData)
		controller.logger.Info("waiting for data")
		return true
	})
}

// OnUpdate applies the newest sample of batch; an empty batch is ignored.
func (controller *LiveController) OnUpdate(batch []model.RawSample) {
	if len(batch) == 0 {
		return
	}
	latest := batch[0]
	controller.apply(func(r *model.LiveReading) bool {
		for _, m := range model.Metrics {
			next := latest.Value(m)
			prev := r.Values[m]
			if next > prev {
				r.Trend[m] = model.TrendUp
			} else if next < prev {
				r.Trend[m] = model.TrendDown
			}
			// equal readings keep the last direction
			r.Values[m] = next
		}
		if r.ConnectionState == model.WaitingForData {
			r.SetConnectionState(model.Connected)
		}
		r.UpdatedAt = time.Now()

		controller.logger.Debug(fmt.Sprintf("V: %v [V]", r.Values[model.Voltage]))
		controller.logger.Debug(fmt.Sprintf("A: %v [A]", r.Values[model.Current]))
		controller.logger.Debug(fmt.Sprintf("W: %v [W]", r.Values[model.Power]))
		return true
	})
}

// apply runs f on the reading unless the session is closed, then notifies
// the registered handler with a snapshot.
func (controller *LiveController) apply(f func(r *model.LiveReading) bool) {
	controller.mu.Lock()
	if controller.closed || !f(controller.reading) {
		controller.mu.Unlock()
		return
	}
	snapshot := controller.reading.Clone()
	handler := controller.liveReadingHandler
	controller.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
}

func (controller *LiveController) Snapshot() model.LiveReading {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.reading.Clone()
}

func (controller *LiveController) Readiness() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return !controller.closed && controller.reading.ConnectionState.Connected()
}
