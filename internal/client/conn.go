package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const keepAliveInterval = 30 * time.Second

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Conn is a websocket transport for Client.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return &Conn{ws: ws}, nil
}

func (c *Conn) Send(eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.ws.WriteJSON(envelope{Type: eventType, Payload: raw})
}

// Listen reads server events and feeds them to the client until the
// connection fails or ctx is done. While listening it emits periodic alive
// messages so idle connections are not dropped by intermediaries.
func (c *Conn) Listen(ctx context.Context, client *Client) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.ws.Close()

	go func() {
		<-ctx.Done()
		c.ws.Close()
	}()
	go c.keepAlive(ctx, keepAliveInterval)

	for {
		var env envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return err
		}

		if err := client.HandleEvent(env.Type, env.Payload); err != nil {
			return err
		}
	}
}

func (c *Conn) keepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send("alive", nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
