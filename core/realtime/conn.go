package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/donext/calls-core/core/events"
)

// Conn is a websocket connection to a single realtime call. All writes
// are serialized through a mutex so the session loop and the termination
// path can share it safely.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex

	closed   bool
	closedMu sync.Mutex
}

// Dial attaches to an accepted realtime call over websocket.
func Dial(ctx context.Context, baseURL, apiKey, callID string) (*Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse realtime url: %w", err)
	}
	values := u.Query()
	values.Set("call_id", callID)
	u.RawQuery = values.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(),
		http.Header{"Authorization": {"Bearer " + apiKey}})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open socket connection to realtime engine (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open socket connection to realtime engine: %w", err)
	}

	return &Conn{ws: ws}, nil
}

// ReadEvent blocks until the next event arrives. A read failure after
// Close was called is reported as a plain close, not an error worth
// reacting to, so callers can distinguish it through [Closed].
func (c *Conn) ReadEvent() (events.Event, error) {
	_, msg, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read from realtime engine: %w", err)
	}

	event, err := events.Parse(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse realtime event: %w", err)
	}
	return event, nil
}

// SetReadDeadline bounds the next ReadEvent call. A zero time clears
// the deadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

// SendAssistantMessage injects an assistant message into the
// conversation. The engine does not speak it until a response is
// created.
func (c *Conn) SendAssistantMessage(text string) error {
	return c.writeJSON(itemCreateMsg{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:    "message",
			Role:    "assistant",
			Content: []contentPart{{Type: "output_text", Text: text}},
		},
	})
}

// SendFunctionOutput reports the result of a tool invocation back to
// the engine, keyed by the invocation id the engine assigned.
func (c *Conn) SendFunctionOutput(invocationID, output string) error {
	return c.writeJSON(itemCreateMsg{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:   "function_call_output",
			CallID: invocationID,
			Output: output,
		},
	})
}

// CreateResponse asks the engine to produce the next assistant turn.
func (c *Conn) CreateResponse() error {
	return c.writeJSON(responseCreateMsg{Type: "response.create"})
}

// CancelResponse aborts any in-flight assistant turn.
func (c *Conn) CancelResponse() error {
	return c.writeJSON(responseCancelMsg{Type: "response.cancel"})
}

// DisableTurnDetection stops the engine from treating further caller
// audio as new turns. Used while winding a call down so background
// noise cannot restart the conversation.
func (c *Conn) DisableTurnDetection() error {
	return c.writeJSON(sessionUpdateMsg{
		Type: "session.update",
		Session: sessionConfig{
			Type:  "realtime",
			Audio: audioConfig{Input: audioInputConfig{TurnDetection: nil}},
		},
	})
}

// Close sends a normal-closure frame and tears the connection down.
// Safe to call more than once.
func (c *Conn) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	c.mu.Lock()
	err := c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	if err != nil {
		if aggressiveCloseErr := c.ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", aggressiveCloseErr)
		}
		return nil
	}
	return c.ws.Close()
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()
	return c.closed
}

func (c *Conn) writeJSON(msg any) error {
	if c.Closed() {
		return fmt.Errorf("websocket connection closed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
