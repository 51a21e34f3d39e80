package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"go.uber.org/zap"
)

// event names used by the gateway server
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventUpdate     = "updateData"
	eventUpdateAlt  = "update"
)

var (
	ErrClosed         = errors.New("gateway is closed")
	ErrNotConnected   = errors.New("gateway is not connected")
	ErrInvalidMessage = errors.New("invalid gateway message")
)

// Handlers receives the events of one subscriber. Nil handlers are skipped.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
	OnWaiting    func()
	OnUpdate     func(batch []model.RawSample)
}

type Subscription interface {
	// Unsubscribe drops every handler of the subscription at once.
	Unsubscribe()
}

type EventSource interface {
	Subscribe(h Handlers) Subscription
}

// Transport is an event source backed by a physical link.
type Transport interface {
	EventSource
	Init(ctx context.Context) error
	Serve(ctx context.Context) error
	Disconnect()
}

// Hub fans events out to subscribers, one event at a time, in delivery order.
type Hub struct {
	logger  *zap.Logger
	waiting time.Duration

	// serializes delivery
	deliver sync.Mutex

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]Handlers
	idle   *time.Timer
}

func NewHub(l *zap.Logger, waiting time.Duration) *Hub {
	return &Hub{
		logger:  l,
		waiting: waiting,
		subs:    make(map[uint64]Handlers),
	}
}

func (h *Hub) Subscribe(handlers Handlers) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.subs[h.nextID] = handlers
	return &subscription{hub: h, id: h.nextID}
}

type subscription struct {
	hub  *Hub
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}

func (h *Hub) snapshot() []Handlers {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Handlers, 0, len(h.subs))
	for _, s := range h.subs {
		out = append(out, s)
	}
	return out
}

// Connect notifies subscribers and arms the idle timer that reports a
// connected link with no data.
func (h *Hub) Connect() {
	h.armIdle()
	h.emit(func(s Handlers) {
		if s.OnConnect != nil {
			s.OnConnect()
		}
	})
}

func (h *Hub) Disconnect() {
	h.stopIdle()
	h.emit(func(s Handlers) {
		if s.OnDisconnect != nil {
			s.OnDisconnect()
		}
	})
}

func (h *Hub) Waiting() {
	h.emit(func(s Handlers) {
		if s.OnWaiting != nil {
			s.OnWaiting()
		}
	})
}

func (h *Hub) Update(batch []model.RawSample) {
	h.stopIdle()
	h.emit(func(s Handlers) {
		if s.OnUpdate != nil {
			s.OnUpdate(batch)
		}
	})
}

func (h *Hub) emit(f func(Handlers)) {
	h.deliver.Lock()
	defer h.deliver.Unlock()
	for _, s := range h.snapshot() {
		f(s)
	}
}

func (h *Hub) armIdle() {
	if h.waiting <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idle != nil {
		h.idle.Stop()
	}
	h.idle = time.AfterFunc(h.waiting, h.Waiting)
}

func (h *Hub) stopIdle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idle != nil {
		h.idle.Stop()
		h.idle = nil
	}
}

// Event routes a named event with its decoded payload.
func (h *Hub) Event(name string, data interface{}) error {
	switch name {
	case EventConnect:
		h.Connect()
	case EventDisconnect:
		h.Disconnect()
	case EventUpdate, eventUpdateAlt:
		batch, err := toBatch(data)
		if err != nil {
			return err
		}
		h.Update(batch)
	default:
		h.logger.Debug(fmt.Sprintf("ignore event: %s", name))
	}
	return nil
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Dispatch decodes one JSON message. A bare array is an update batch,
// an object is an {"event": ..., "data": ...} envelope.
func (h *Hub) Dispatch(msg []byte) error {
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	switch t := v.(type) {
	case []interface{}:
		return h.Event(EventUpdate, t)
	case map[string]interface{}:
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		var data interface{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
			}
		}
		return h.Event(env.Event, data)
	}
	return fmt.Errorf("%w: unexpected %T", ErrInvalidMessage, v)
}

func toBatch(data interface{}) ([]model.RawSample, error) {
	list, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: update payload is %T, not a list", ErrInvalidMessage, data)
	}
	batch := make([]model.RawSample, 0, len(list))
	for _, e := range list {
		batch = append(batch, model.ToRawSample(e))
	}
	return batch, nil
}
