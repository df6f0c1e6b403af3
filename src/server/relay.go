package server

import (
	"context"
	"sync"

	"stocks-dashboard/src/models"
	"stocks-dashboard/src/upstream"
)

// -----------------------------------------------------------------------------
// Relay Session
// -----------------------------------------------------------------------------

// relaySession owns one client's upstream subscriptions: one provider
// stream per subscribed symbol, opened on subscribe and torn down on
// unsubscribe or disconnect. Sessions never share streams, so one client's
// teardown cannot starve another's.
type relaySession struct {
	server *DashboardServer
	client *Client

	mu   sync.Mutex
	subs map[string]*upstream.StreamConn
}

// -----------------------------------------------------------------------------

func newRelaySession(server *DashboardServer, client *Client) *relaySession {
	return &relaySession{
		server: server,
		client: client,
		subs:   make(map[string]*upstream.StreamConn),
	}
}

// -----------------------------------------------------------------------------

// subscribe opens an upstream stream for the symbol. A duplicate subscribe
// is a no-op; a dial failure goes back to the client as an error message
// while the connection stays up.
func (r *relaySession) subscribe(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[symbol]; ok {
		return
	}

	stream, err := upstream.DialStream(context.Background(), r.server.Config.MConfig, symbol)
	if err != nil {
		r.server.Logger.Warning("Failed to open stream for %s: %v", symbol, err)
		r.client.trySend(models.MRelayError{Error: err.Error()})
		return
	}

	r.subs[symbol] = stream
	r.server.Logger.Info("Client subscribed to %s", symbol)
	go r.pump(symbol, stream)
}

// -----------------------------------------------------------------------------

// unsubscribe tears down the symbol's stream if one exists.
func (r *relaySession) unsubscribe(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stream, ok := r.subs[symbol]; ok {
		delete(r.subs, symbol)
		stream.Close()
		r.server.Logger.Info("Client unsubscribed from %s", symbol)
	}
}

// -----------------------------------------------------------------------------

// closeAll tears down every stream. Called when the client disconnects.
func (r *relaySession) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for symbol, stream := range r.subs {
		delete(r.subs, symbol)
		stream.Close()
	}
}

// -----------------------------------------------------------------------------

// pump forwards one stream's ticks and errors to the client until the
// stream ends. Upstream errors are relayed as messages, never as a client
// disconnect.
func (r *relaySession) pump(symbol string, stream *upstream.StreamConn) {
	for {
		select {
		case tick := <-stream.Ticks():
			r.server.recordTick(tick)
			r.client.trySend(tick)

		case err := <-stream.Errs():
			r.server.Logger.Warning("Stream error for %s: %v", symbol, err)
			r.client.trySend(models.MRelayError{Error: err.Error()})

		case <-stream.Done():
			// A transport failure closes the stream right after queueing
			// its error; forward it before giving up.
			select {
			case err := <-stream.Errs():
				r.server.Logger.Warning("Stream error for %s: %v", symbol, err)
				r.client.trySend(models.MRelayError{Error: err.Error()})
			default:
			}
			return
		}
	}
}
