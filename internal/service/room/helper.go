package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/repository/connection"
	"github.com/watchroom/server/internal/repository/room"
)

func (s *service) getSender(conn *websocket.Conn) (string, error) {
	memberId, err := s.connRepo.GetMemberId(conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return "", ErrNotJoined
		}

		return "", fmt.Errorf("failed to get member id: %w", err)
	}

	return memberId, nil
}

func (s *service) getMembers(ctx context.Context) ([]Member, error) {
	memberIds, err := s.roomRepo.GetMemberIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	members := make([]Member, 0, len(memberIds))
	for _, memberId := range memberIds {
		member, err := s.roomRepo.GetMember(ctx, memberId)
		if err != nil {
			return nil, fmt.Errorf("failed to get member: %w", err)
		}

		members = append(members, Member{
			Id:   memberId,
			Name: member.Username,
		})
	}

	return members, nil
}

// getConns returns the connections of all members, skipping members whose
// connection is already gone.
func (s *service) getConns(ctx context.Context) ([]*websocket.Conn, error) {
	memberIds, err := s.roomRepo.GetMemberIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	conns := make([]*websocket.Conn, 0, len(memberIds))
	for _, memberId := range memberIds {
		conn, err := s.connRepo.GetConn(memberId)
		if err != nil {
			if errors.Is(err, connection.ErrNotFound) {
				continue
			}

			return nil, fmt.Errorf("failed to get conn: %w", err)
		}

		conns = append(conns, conn)
	}

	return conns, nil
}

func (s *service) getConnsExcept(ctx context.Context, sender *websocket.Conn) ([]*websocket.Conn, error) {
	conns, err := s.getConns(ctx)
	if err != nil {
		return nil, err
	}

	filtered := conns[:0]
	for _, conn := range conns {
		if conn != sender {
			filtered = append(filtered, conn)
		}
	}

	return filtered, nil
}

func (s *service) appendSystemMessage(ctx context.Context, text string) (ChatMessage, error) {
	msg := room.ChatMessage{
		Text:      text,
		IsSystem:  true,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.roomRepo.AppendChatMessage(ctx, &msg, s.chatHistoryLimit); err != nil {
		return ChatMessage{}, fmt.Errorf("failed to append system message: %w", err)
	}

	return chatMessageFromRepo(&msg), nil
}
