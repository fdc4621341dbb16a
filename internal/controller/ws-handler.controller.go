package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
)

type JoinInput struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (c *controller) handleJoin(ctx context.Context, conn *websocket.Conn, input JoinInput) error {
	c.logger.DebugContext(ctx, "join", "name", input.Name)

	if valErrs, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, "join-error", valErrs[0].Message)
		return nil
	}

	resp, err := c.roomService.Join(ctx, &room.JoinParams{
		Conn: conn,
		Name: input.Name,
	})
	if err != nil {
		if errors.Is(err, room.ErrEmptyName) || errors.Is(err, room.ErrNameTaken) {
			c.writeError(ctx, conn, "join-error", err.Error())
			return nil
		}

		c.logger.ErrorContext(ctx, "failed to join", "error", err)
		c.writeError(ctx, conn, "join-error", "failed to join the room")
		return err
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "your-profile",
		Payload: resp.JoinedMember,
	})
	c.writeToConn(ctx, conn, &Output{
		Type:    "chat-history",
		Payload: resp.ChatHistory,
	})
	c.writeToConn(ctx, conn, &Output{
		Type:    "video-sync",
		Payload: resp.Player,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "online-users",
		Payload: resp.Memberlist,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "system-message",
		Payload: resp.SystemMessage,
	})

	return nil
}

func (c *controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, text string) error {
	resp, err := c.roomService.PostMessage(ctx, &room.PostMessageParams{
		SenderConn: conn,
		Text:       text,
	})
	if err != nil {
		switch {
		case errors.Is(err, room.ErrNotJoined), errors.Is(err, room.ErrEmptyMessage):
			// dropped without a reply
			return nil
		case errors.Is(err, room.ErrMessageTooLong), errors.Is(err, room.ErrRateLimited):
			c.writeError(ctx, conn, "chat-error", err.Error())
			return nil
		}

		c.logger.ErrorContext(ctx, "failed to post message", "error", err)
		return err
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "chat-message",
		Payload: resp.Message,
	})

	return nil
}

type VideoActionInput struct {
	CurrentTime *float64 `json:"current_time"`
	IsPaused    *bool    `json:"is_paused"`
}

func (c *controller) handleVideoAction(ctx context.Context, conn *websocket.Conn, input VideoActionInput) error {
	resp, err := c.roomService.ApplyAction(ctx, &room.ApplyActionParams{
		SenderConn:  conn,
		CurrentTime: input.CurrentTime,
		IsPaused:    input.IsPaused,
	})
	if err != nil {
		if errors.Is(err, room.ErrNotJoined) {
			return nil
		}

		c.logger.ErrorContext(ctx, "failed to apply video action", "error", err)
		return err
	}

	// relayed to everyone but the sender, who already applied it locally
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "video-action",
		Payload: resp.Action,
	})

	return nil
}

func (c *controller) handleChangeVideo(ctx context.Context, conn *websocket.Conn, link string) error {
	c.logger.DebugContext(ctx, "change video", "link", link)

	resp, err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		SenderConn: conn,
		Link:       link,
	})
	if err != nil {
		switch {
		case errors.Is(err, room.ErrNotJoined):
			return nil
		case errors.Is(err, domain.ErrInvalidLink),
			errors.Is(err, domain.ErrInvalidEmbeddedLink),
			errors.Is(err, domain.ErrUnsupportedLink):
			c.writeError(ctx, conn, "video-error", err.Error())
			return nil
		}

		c.logger.ErrorContext(ctx, "failed to change video", "error", err)
		c.writeError(ctx, conn, "video-error", "failed to change the video")
		return err
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "change-video",
		Payload: resp.Source,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "video-sync",
		Payload: resp.Player,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "system-message",
		Payload: resp.SystemMessage,
	})

	return nil
}

func (c *controller) handleAlive(ctx context.Context, conn *websocket.Conn, _ struct{}) error {
	return nil
}
