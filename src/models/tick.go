package models

// -----------------------------------------------------------------------------
// Streaming message shapes
// -----------------------------------------------------------------------------

// MLiveTick is a single streamed price update. Transient: superseded by the
// next tick for the same symbol.
type MLiveTick struct {
	Event     string  `json:"event,omitempty"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// -----------------------------------------------------------------------------

// MClientCommand is what the browser sends over the relay socket.
type MClientCommand struct {
	Type   string `json:"type"` // "subscribe" or "unsubscribe"
	Symbol string `json:"symbol"`
}

// -----------------------------------------------------------------------------

// MRelayError is forwarded to the browser when an upstream subscription
// fails. The client connection itself stays open.
type MRelayError struct {
	Error string `json:"error"`
}

// -----------------------------------------------------------------------------

// MQuoteBroadcast is the hub payload pushed by the watchlist refresher.
type MQuoteBroadcast struct {
	Type   string            `json:"type"` // "quotes"
	Quotes map[string]MQuote `json:"quotes"`
}
