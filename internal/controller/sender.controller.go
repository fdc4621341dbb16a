package controller

import (
	"context"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.writeLocked(ctx, conn, output)
}

// broadcast holds the write mutex across the whole fan-out: a single event
// reaches every conn before any other event may be written, so all clients
// observe broadcasts in the same order.
func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for _, conn := range conns {
		c.writeLocked(ctx, conn, output)
	}
}

func (c *controller) writeLocked(ctx context.Context, conn *websocket.Conn, output *Output) {
	if err := conn.WriteJSON(output); err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "type", output.Type, "error", err)
	}
}

func (c *controller) writeError(ctx context.Context, conn *websocket.Conn, errorType, message string) {
	c.writeToConn(ctx, conn, &Output{
		Type:    errorType,
		Payload: message,
	})
}
