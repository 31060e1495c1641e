package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"token-radar/internal/domain"
)

// messageBuffer absorbs bursts so a slow store does not stall the
// socket reader immediately.
const messageBuffer = 1024

// WSConfig configures WebSocket source behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSSource streams chat messages from a WebSocket relay that emits one
// JSON frame per message. The connection is kept alive with pings and
// re-dialed with exponential backoff after any failure.
type WSSource struct {
	endpoint string
	config   WSConfig

	conn   *websocket.Conn
	connMu sync.Mutex
}

var _ Source = (*WSSource)(nil)

// NewWSSource creates a WebSocket source for the given endpoint.
func NewWSSource(endpoint string, config *WSConfig) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSSource{endpoint: endpoint, config: cfg}
}

// Name identifies the source in logs.
func (s *WSSource) Name() string {
	return "websocket"
}

// Messages dials the relay and starts the read and ping loops. The
// initial dial failing is fatal; failures after that reconnect.
func (s *WSSource) Messages(ctx context.Context) (<-chan domain.ChatMessage, error) {
	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	out := make(chan domain.ChatMessage, messageBuffer)
	go s.readLoop(ctx, out)
	go s.pingLoop(ctx)
	go func() {
		// Closing the connection unblocks a reader stuck in ReadMessage.
		<-ctx.Done()
		s.dropConn()
	}()
	return out, nil
}

// connect establishes the WebSocket connection.
func (s *WSSource) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// current returns the live connection, or nil while disconnected.
func (s *WSSource) current() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

// dropConn closes and forgets the connection so the read loop
// re-dials.
func (s *WSSource) dropConn() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// readLoop reads frames and forwards decoded messages until the
// context is cancelled. Dead connections are re-dialed with
// exponential backoff.
func (s *WSSource) readLoop(ctx context.Context, out chan<- domain.ChatMessage) {
	defer close(out)
	defer s.dropConn()

	delay := s.config.ReconnectDelay

	for ctx.Err() == nil {
		conn := s.current()
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			if err := s.connect(ctx); err != nil {
				logrus.Warnf("WebSocket reconnect to %s failed, retrying in %v: %v", s.endpoint, delay*2, err)
				delay *= 2
				if delay > s.config.MaxReconnectDelay {
					delay = s.config.MaxReconnectDelay
				}
				continue
			}
			logrus.Infof("WebSocket reconnected to %s", s.endpoint)
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.Warnf("WebSocket read failed, reconnecting: %v", err)
			s.dropConn()
			continue
		}

		// Reset backoff after a healthy read.
		delay = s.config.ReconnectDelay

		msg, err := decodeFrame(frame)
		if err != nil {
			logrus.Warnf("Dropping bad WebSocket frame: %v", err)
			continue
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *WSSource) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, the reader will handle reconnect.
				}
			}
			s.connMu.Unlock()
		}
	}
}
