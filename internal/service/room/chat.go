package room

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/repository/room"
)

type PostMessageParams struct {
	SenderConn *websocket.Conn
	Text       string
}

type PostMessageResponse struct {
	Message ChatMessage
	Conns   []*websocket.Conn
}

// PostMessage validates and appends a user chat message. Empty messages are
// rejected with ErrEmptyMessage (callers drop them silently); too-long and
// rate-limited messages are reported back to the sender.
func (s *service) PostMessage(ctx context.Context, params *PostMessageParams) (PostMessageResponse, error) {
	memberId, err := s.getSender(params.SenderConn)
	if err != nil {
		return PostMessageResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(params.Text)
	if text == "" {
		return PostMessageResponse{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.chatMessageLimit {
		return PostMessageResponse{}, ErrMessageTooLong
	}

	accepted, err := s.roomRepo.AcquireChatCooldown(ctx, memberId, s.chatCooldown)
	if err != nil {
		return PostMessageResponse{}, fmt.Errorf("failed to acquire chat cooldown: %w", err)
	}
	if !accepted {
		return PostMessageResponse{}, ErrRateLimited
	}

	member, err := s.roomRepo.GetMember(ctx, memberId)
	if err != nil {
		return PostMessageResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	msg := room.ChatMessage{
		Author: &room.ChatAuthor{
			Id:   memberId,
			Name: member.Username,
		},
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.roomRepo.AppendChatMessage(ctx, &msg, s.chatHistoryLimit); err != nil {
		return PostMessageResponse{}, fmt.Errorf("failed to append chat message: %w", err)
	}

	conns, err := s.getConns(ctx)
	if err != nil {
		return PostMessageResponse{}, err
	}

	return PostMessageResponse{
		Message: chatMessageFromRepo(&msg),
		Conns:   conns,
	}, nil
}

type GetChatHistoryResponse struct {
	Messages []ChatMessage
}

func (s *service) GetChatHistory(ctx context.Context) (GetChatHistoryResponse, error) {
	history, err := s.roomRepo.GetChatHistory(ctx)
	if err != nil {
		return GetChatHistoryResponse{}, fmt.Errorf("failed to get chat history: %w", err)
	}

	messages := make([]ChatMessage, 0, len(history))
	for i := range history {
		messages = append(messages, chatMessageFromRepo(&history[i]))
	}

	return GetChatHistoryResponse{Messages: messages}, nil
}
