package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Live price stream
// -----------------------------------------------------------------------------

const (
	handshakeTimeout = 10 * time.Second
	streamPingPeriod = 45 * time.Second
	streamWriteWait  = 5 * time.Second
	tickBuffer       = 256
)

// StreamConn is one upstream streaming subscription for one symbol. The
// relay opens one per (client, symbol) pair and never shares them.
type StreamConn struct {
	Symbol string

	conn      *websocket.Conn
	ticks     chan models.MLiveTick
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
	logger    *logger.Logger
}

// -----------------------------------------------------------------------------

// subscribeAction is the provider's subscription envelope.
type subscribeAction struct {
	Action string          `json:"action"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Symbols string `json:"symbols"`
	APIKey  string `json:"apikey,omitempty"`
}

// -----------------------------------------------------------------------------

// DialStream opens the streaming connection for a single symbol and sends
// the subscribe action. The returned conn delivers parsed ticks on Ticks()
// until Close() or a transport failure.
func DialStream(ctx context.Context, cfg *models.MConfig, symbol string) (*StreamConn, error) {
	if cfg.Upstream.APIKey == "" {
		return nil, helpers.NewConfigurationError("API key is not configured")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  handshakeTimeout,
		EnableCompression: true,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.Upstream.WSURL, nil)
	if err != nil {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("dial stream for %s", symbol), err)
	}

	sub := subscribeAction{
		Action: "subscribe",
		Params: subscribeParams{Symbols: symbol, APIKey: cfg.Upstream.APIKey},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, helpers.NewUpstreamError(fmt.Sprintf("subscribe %s", symbol), err)
	}

	s := &StreamConn{
		Symbol: symbol,
		conn:   conn,
		ticks:  make(chan models.MLiveTick, tickBuffer),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
		logger: logger.NewLogger("Stream-" + symbol),
	}

	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// -----------------------------------------------------------------------------

// Ticks delivers parsed price updates in arrival order.
func (s *StreamConn) Ticks() <-chan models.MLiveTick {
	return s.ticks
}

// Errs delivers at most one transport error before the stream ends.
func (s *StreamConn) Errs() <-chan error {
	return s.errs
}

// Done is closed when the stream is torn down.
func (s *StreamConn) Done() <-chan struct{} {
	return s.done
}

// -----------------------------------------------------------------------------

// Close tears down the upstream connection. Idempotent.
func (s *StreamConn) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// -----------------------------------------------------------------------------

func (s *StreamConn) readLoop() {
	defer s.Close()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Deliberate teardown, not an error.
			default:
				select {
				case s.errs <- helpers.NewUpstreamError("stream read", err):
				default:
				}
			}
			return
		}

		var tick models.MLiveTick
		if err := json.Unmarshal(raw, &tick); err != nil {
			// Malformed provider frame: log and keep reading.
			s.logger.Warning("Unparseable stream message: %v", err)
			continue
		}

		// The provider interleaves status events; only price events carry data.
		if tick.Event != "" && tick.Event != "price" {
			continue
		}

		select {
		case s.ticks <- tick:
		case <-s.done:
			return
		default:
			// Slow consumer, drop tick. The next one supersedes it.
		}
	}
}

// -----------------------------------------------------------------------------

func (s *StreamConn) pingLoop() {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
		}
	}
}
