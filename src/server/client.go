package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096 // client commands are tiny JSON objects
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

type Client struct {
	hub   *DashboardServer
	conn  *websocket.Conn
	send  chan interface{}
	relay *relaySession

	// done signals teardown instead of closing send: relay pumps keep
	// sending concurrently, and a send on a closed channel would panic.
	done     chan struct{}
	doneOnce sync.Once
}

// -----------------------------------------------------------------------------

func newClient(hub *DashboardServer, conn *websocket.Conn) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
		done: make(chan struct{}),
	}
	c.relay = newRelaySession(hub, c)
	return c
}

// -----------------------------------------------------------------------------

// shutdown marks the client as torn down. Idempotent; send stays open so
// in-flight senders never panic.
func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// -----------------------------------------------------------------------------

// trySend queues a message for the client without blocking. Messages for a
// torn-down client and messages that find the buffer full are dropped; the
// hub loop prunes clients that stay slow.
func (c *Client) trySend(message interface{}) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- message:
	default:
	}
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		// The hub may already be gone when the whole server is stopping.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
			c.shutdown()
			c.relay.closeAll()
		}
		c.conn.Close()
		c.hub.Logger.Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		// Handle the message (subscribe/unsubscribe commands)
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// Write JSON message
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
