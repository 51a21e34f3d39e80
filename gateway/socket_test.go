package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSocketURL(t *testing.T) {
	u, err := SocketURL("https://esp32-server-lyo0.onrender.com")
	require.NoError(t, err)
	assert.Equal(t, "wss://esp32-server-lyo0.onrender.com/socket.io/?EIO=4&transport=websocket", u)

	u, err = SocketURL("http://localhost:3000/")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/socket.io/?EIO=4&transport=websocket", u)

	_, err = SocketURL("ftp://example.com")
	assert.Error(t, err)
}

// fakeSocketIO plays the server side of a socket.io session.
func fakeSocketIO(t *testing.T, pong chan<- string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		write := func(s string) bool {
			return conn.WriteMessage(websocket.TextMessage, []byte(s)) == nil
		}
		if !write(`0{"sid":"abc","pingInterval":25000,"pingTimeout":20000}`) {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil || string(msg) != packetConnect {
			return
		}
		write(`40{"sid":"def"}`)
		write(packetPing)
		_, msg, err = conn.ReadMessage()
		if err != nil {
			return
		}
		pong <- string(msg)
		write(`42["updateData",[{"timestamp":"2025-03-01T10:30:00Z","voltage":230.1,"current":2,"power":460.2}]]`)
		write(`42["other",{}]`)
		// hold the connection until the client goes away
		conn.ReadMessage()
	}))
}

func TestSocketSourceReceivesEvents(t *testing.T) {
	pong := make(chan string, 1)
	srv := fakeSocketIO(t, pong)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	source := NewSocketSource(zap.NewNop(), wsURL, 1, 10*time.Millisecond, 0)
	rec := newRecorder()
	source.Subscribe(rec.handlers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, source.Init(ctx))

	done := make(chan error, 1)
	go func() { done <- source.Serve(ctx) }()

	select {
	case batch := <-rec.batches:
		require.Len(t, batch, 1)
		assert.Equal(t, 460.2, batch[0].Value(model.Power))
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
	assert.Equal(t, packetPong, <-pong)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.connects))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}
	source.Disconnect()
	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.disconnects))
}

func TestSocketSourceServeWithoutInit(t *testing.T) {
	source := NewSocketSource(zap.NewNop(), "ws://127.0.0.1:1", 1, 0, 0)
	assert.ErrorIs(t, source.Serve(context.Background()), ErrNotConnected)
}

func TestSocketSourceInitFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	source := NewSocketSource(zap.NewNop(), "ws"+strings.TrimPrefix(srv.URL, "http"), 2, time.Millisecond, 0)
	assert.Error(t, source.Init(context.Background()))
}
