package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/service/room"
)

func (c *controller) getPlayer(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.GetPlayer(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to get player", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp.Player); err != nil {
		c.logger.DebugContext(r.Context(), "failed to encode player", "error", err)
	}
}

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	defer c.handleDisconnect(r.Context(), conn)

	if err := c.wsmux.ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "error", err)
	}
}

func (c *controller) handleDisconnect(ctx context.Context, conn *websocket.Conn) {
	resp, err := c.roomService.Disconnect(ctx, &room.DisconnectParams{Conn: conn})
	if err != nil {
		// a conn that never joined leaves nothing to announce
		if !errors.Is(err, room.ErrNotJoined) {
			c.logger.ErrorContext(ctx, "failed to disconnect member", "error", err)
		}

		return
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "online-users",
		Payload: resp.Memberlist,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "system-message",
		Payload: resp.SystemMessage,
	})
}
