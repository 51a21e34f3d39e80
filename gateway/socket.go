package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// engine.io / socket.io packet prefixes
const (
	packetOpen       = "0"
	packetPing       = "2"
	packetPong       = "3"
	packetConnect    = "40"
	packetDisconnect = "41"
	packetEvent      = "42"
	packetError      = "44"
)

// SocketURL derives the socket.io websocket endpoint from the server base URL.
func SocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// SocketSource receives gateway events over a socket.io websocket.
type SocketSource struct {
	*Hub
	logger        *zap.Logger
	url           string
	dialer        *websocket.Dialer
	retryCount    int
	reconnectWait time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

func NewSocketSource(l *zap.Logger, socketURL string, retryCount int, reconnectWait, waiting time.Duration) *SocketSource {
	if retryCount < 1 {
		retryCount = 1
	}
	return &SocketSource{
		Hub:           NewHub(l, waiting),
		logger:        l,
		url:           socketURL,
		dialer:        websocket.DefaultDialer,
		retryCount:    retryCount,
		reconnectWait: reconnectWait,
	}
}

// Init dials the server, retrying up to the configured count.
func (s *SocketSource) Init(ctx context.Context) error {
	var err error
	for counter := 0; counter < s.retryCount; counter++ {
		err = s.dial(ctx)
		if err == nil {
			return nil
		}
		s.logger.Warn("dial socket is failed", zap.String("url", s.url), zap.Int("attempt", counter+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectWait):
		}
	}
	return err
}

func (s *SocketSource) dial(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.logger.Info("socket connected", zap.String("url", s.url))
	return nil
}

// Serve reads packets until the connection drops or ctx is done.
func (s *SocketSource) Serve(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ictx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read from socket: %w", err)
		}
		if err := s.handlePacket(conn, string(msg)); err != nil {
			s.logger.Warn("drop packet", zap.Error(err))
		}
	}
}

func (s *SocketSource) handlePacket(conn *websocket.Conn, p string) error {
	switch {
	case p == packetPing:
		return conn.WriteMessage(websocket.TextMessage, []byte(packetPong))
	case strings.HasPrefix(p, packetEvent):
		return s.handleEvent(strings.TrimPrefix(p, packetEvent))
	case strings.HasPrefix(p, packetConnect):
		s.setConnected(true)
	case strings.HasPrefix(p, packetDisconnect):
		s.setConnected(false)
	case strings.HasPrefix(p, packetError):
		return fmt.Errorf("server refused namespace: %s", strings.TrimPrefix(p, packetError))
	case strings.HasPrefix(p, packetOpen):
		// handshake done, join the default namespace
		return conn.WriteMessage(websocket.TextMessage, []byte(packetConnect))
	default:
		s.logger.Debug("ignore packet", zap.String("packet", p))
	}
	return nil
}

func (s *SocketSource) handleEvent(body string) error {
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: event without name", ErrInvalidMessage)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	var data interface{}
	if len(args) > 1 {
		if err := json.Unmarshal(args[1], &data); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	}
	return s.Event(name, data)
}

func (s *SocketSource) setConnected(connected bool) {
	s.mu.Lock()
	changed := s.connected != connected
	s.connected = connected
	s.mu.Unlock()
	if !changed {
		return
	}
	if connected {
		s.Connect()
	} else {
		s.Hub.Disconnect()
	}
}

// Disconnect closes the link and reports the drop to subscribers.
func (s *SocketSource) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	s.setConnected(false)
}
