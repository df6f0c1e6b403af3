package server

import (
	"encoding/json"
	"net/http"

	"stocks-dashboard/src/helpers"
	"stocks-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.shutdown:
			for client := range s.clients {
				delete(s.clients, client)
				s.dropClient(client)
			}
			s.setConnCount(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnCount(len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.dropClient(client)
			}
			s.setConnCount(len(s.clients))

		case message := <-s.broadcast:
			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					s.dropClient(client)
				}
			}
			s.setConnCount(len(s.clients))
		}
	}
}

// -----------------------------------------------------------------------------

// dropClient tears a client down. The send channel is never closed because
// relay pumps may still be queueing ticks into it; the done signal stops
// trySend and writePump instead.
func (s *DashboardServer) dropClient(client *Client) {
	client.shutdown()
	client.relay.closeAll()
}

// -----------------------------------------------------------------------------

// Broadcast queues a message for every connected client. Used by the
// periodic refresher for watchlist quote updates.
func (s *DashboardServer) Broadcast(message interface{}) {
	select {
	case s.broadcast <- message:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update")
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) setConnCount(n int) {
	s.countMutex.Lock()
	s.connCount = n
	s.countMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.shutdown:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage dispatches one streamed client command. A malformed
// or unknown message is logged and ignored, never a reason to drop the
// connection.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("%v", helpers.NewClientParseError("failed to parse client command", err))
		return
	}
	if cmd.Symbol == "" {
		s.Logger.Warning("Client command '%s' without a symbol, ignoring", cmd.Type)
		return
	}

	switch cmd.Type {
	case "subscribe":
		client.relay.subscribe(cmd.Symbol)
	case "unsubscribe":
		client.relay.unsubscribe(cmd.Symbol)
	default:
		s.Logger.Warning("Unknown client command '%s', ignoring", cmd.Type)
	}
}
