package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/repository/connection"
	"github.com/watchroom/server/internal/repository/room"
)

type JoinParams struct {
	Conn *websocket.Conn
	Name string
}

type JoinResponse struct {
	JoinedMember  Member
	Memberlist    []Member
	ChatHistory   []ChatMessage
	Player        Player
	SystemMessage ChatMessage
	Conns         []*websocket.Conn
}

// Join registers a participant. Names are trimmed, must be non-empty and
// unique (case-sensitive exact match, first-come-wins).
func (s *service) Join(ctx context.Context, params *JoinParams) (JoinResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return JoinResponse{}, ErrEmptyName
	}

	memberId := uuid.NewString()
	acquired, err := s.roomRepo.AcquireName(ctx, name, memberId)
	if err != nil {
		return JoinResponse{}, fmt.Errorf("failed to acquire name: %w", err)
	}
	if !acquired {
		return JoinResponse{}, ErrNameTaken
	}

	if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
		MemberId: memberId,
		Username: name,
	}); err != nil {
		return JoinResponse{}, fmt.Errorf("failed to set member: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, memberId); err != nil {
		return JoinResponse{}, fmt.Errorf("failed to add conn: %w", err)
	}

	player, err := s.ensurePlayer(ctx)
	if err != nil {
		return JoinResponse{}, err
	}

	// history is read before the join announcement is appended: the joiner
	// receives the announcement via broadcast, not via the snapshot
	history, err := s.roomRepo.GetChatHistory(ctx)
	if err != nil {
		return JoinResponse{}, fmt.Errorf("failed to get chat history: %w", err)
	}
	chatHistory := make([]ChatMessage, 0, len(history))
	for i := range history {
		chatHistory = append(chatHistory, chatMessageFromRepo(&history[i]))
	}

	sysMsg, err := s.appendSystemMessage(ctx, fmt.Sprintf("%s joined the room", name))
	if err != nil {
		return JoinResponse{}, err
	}

	members, err := s.getMembers(ctx)
	if err != nil {
		return JoinResponse{}, err
	}

	conns, err := s.getConns(ctx)
	if err != nil {
		return JoinResponse{}, err
	}

	return JoinResponse{
		JoinedMember:  Member{Id: memberId, Name: name},
		Memberlist:    members,
		ChatHistory:   chatHistory,
		Player:        player,
		SystemMessage: sysMsg,
		Conns:         conns,
	}, nil
}

type DisconnectParams struct {
	Conn *websocket.Conn
}

type DisconnectResponse struct {
	Memberlist    []Member
	SystemMessage ChatMessage
	Conns         []*websocket.Conn
}

// Disconnect removes the participant behind the conn. A conn that never
// joined is a no-op reported via ErrNotJoined.
func (s *service) Disconnect(ctx context.Context, params *DisconnectParams) (DisconnectResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memberId, err := s.connRepo.RemoveByConn(params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return DisconnectResponse{}, ErrNotJoined
		}

		return DisconnectResponse{}, fmt.Errorf("failed to remove conn: %w", err)
	}

	member, err := s.roomRepo.GetMember(ctx, memberId)
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.roomRepo.RemoveMember(ctx, memberId); err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.roomRepo.ReleaseName(ctx, member.Username); err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to release name: %w", err)
	}

	sysMsg, err := s.appendSystemMessage(ctx, fmt.Sprintf("%s left the room", member.Username))
	if err != nil {
		return DisconnectResponse{}, err
	}

	members, err := s.getMembers(ctx)
	if err != nil {
		return DisconnectResponse{}, err
	}

	conns, err := s.getConns(ctx)
	if err != nil {
		return DisconnectResponse{}, err
	}

	return DisconnectResponse{
		Memberlist:    members,
		SystemMessage: sysMsg,
		Conns:         conns,
	}, nil
}
