package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
	"github.com/tarm/serial"
	"go.uber.org/zap"
)

// DefaultSerialDevice returns the usual device path of the USB gateway.
func DefaultSerialDevice() string {
	switch runtime.GOOS {
	case "darwin":
		// mac
		return constant.DefaultSerialDeviceForDarwin
	default:
		// raspberry pi.
		return constant.DefaultSerialDevice
	}
}

// SerialSource reads newline delimited JSON messages from a gateway
// attached over USB serial.
type SerialSource struct {
	*Hub
	logger       *zap.Logger
	Baudrate     int
	SerialDevice string
	ReadTimeout  time.Duration
	retryCount   int
	retryWait    time.Duration

	mu   sync.Mutex
	port io.ReadCloser
}

func NewSerialSource(l *zap.Logger, device string, baudrate, retryCount int, retryWait, waiting time.Duration) *SerialSource {
	if device == "" {
		device = DefaultSerialDevice()
	}
	if retryCount < 1 {
		retryCount = 1
	}
	return &SerialSource{
		Hub:          NewHub(l, waiting),
		logger:       l,
		Baudrate:     baudrate,
		SerialDevice: device,
		retryCount:   retryCount,
		retryWait:    retryWait,
	}
}

func (s *SerialSource) Init(ctx context.Context) error {
	var err error
	for counter := 0; counter < s.retryCount; counter++ {
		err = s.open()
		if err == nil {
			s.logger.Info("serial connected", zap.String("device", s.SerialDevice))
			return nil
		}
		s.logger.Warn("open serial is failed", zap.String("device", s.SerialDevice), zap.Int("attempt", counter+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryWait):
		}
	}
	return err
}

func (s *SerialSource) open() error {
	c := &serial.Config{
		Name:        s.SerialDevice,
		Baud:        s.Baudrate,
		ReadTimeout: s.ReadTimeout,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.port = p
	s.mu.Unlock()
	return nil
}

func (s *SerialSource) Serve(ctx context.Context) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return ErrNotConnected
	}

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ictx.Done()
		port.Close()
	}()

	s.Connect()
	err := s.serveLines(port)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// serveLines dispatches every non-empty line of r until EOF or a read error.
func (s *SerialSource) serveLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.logger.Debug("[RECEIVE] >> " + string(line))
		if err := s.Dispatch(line); err != nil {
			s.logger.Warn("drop line", zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read from serial: %w", err)
	}
	return io.EOF
}

func (s *SerialSource) Disconnect() {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()
	if port != nil {
		port.Close()
		s.Hub.Disconnect()
	}
}
