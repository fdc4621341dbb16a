package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c *controller) requestIdWSMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_id", uuid.NewString()))
		return next(ctx, conn, payload)
	}
}

func (c *controller) loggingWSMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		messageType := wsrouter.GetMessageTypeFromCtx(ctx)
		start := time.Now()

		err := next(ctx, conn, payload)

		c.logger.InfoContext(ctx, "handled message",
			"message_type", messageType,
			"processing_time", time.Since(start).String(),
			"error", err,
		)

		return err
	}
}
