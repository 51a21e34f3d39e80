package gateway

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSerialServeLines(t *testing.T) {
	source := NewSerialSource(zap.NewNop(), "/dev/null", 115200, 1, 0, 0)
	rec := newRecorder()
	source.Subscribe(rec.handlers())

	input := strings.Join([]string{
		`{"event":"connect"}`,
		``,
		`garbage`,
		`[{"voltage":229.5,"current":0.5,"power":114.75}]`,
	}, "\n")

	err := source.serveLines(strings.NewReader(input))
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.connects))
	require.Len(t, rec.batches, 1)
	batch := <-rec.batches
	assert.Equal(t, 229.5, batch[0].Value(model.Voltage))
}

func TestSerialDefaults(t *testing.T) {
	source := NewSerialSource(zap.NewNop(), "", 9600, 0, 0, 0)
	assert.Equal(t, DefaultSerialDevice(), source.SerialDevice)
	assert.Equal(t, 9600, source.Baudrate)
	assert.ErrorIs(t, source.Serve(context.Background()), ErrNotConnected)
}
