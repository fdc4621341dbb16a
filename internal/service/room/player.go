package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/repository/room"
)

// ensurePlayer seeds the canonical playback state on first use: the
// configured default source, paused at position zero.
func (s *service) ensurePlayer(ctx context.Context) (Player, error) {
	player, err := s.roomRepo.GetPlayer(ctx)
	if err == nil {
		return playerFromRepo(&player), nil
	}
	if !errors.Is(err, room.ErrPlayerNotFound) {
		return Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	params := room.SetPlayerParams{
		SourceType:  string(domain.SourceTypeFile),
		Src:         s.defaultVideoURL,
		Title:       domain.FileTitle(s.defaultVideoURL),
		CurrentTime: 0,
		IsPaused:    true,
	}
	if source, err := domain.ParseSource(s.defaultVideoURL); err == nil && source.Type == domain.SourceTypeEmbedded {
		params.SourceType = string(source.Type)
		params.VideoId = source.VideoId
		params.Title = "YouTube: " + source.VideoId
	}

	if err := s.roomRepo.SetPlayer(ctx, &params); err != nil {
		return Player{}, fmt.Errorf("failed to set player: %w", err)
	}

	return Player{
		SourceType:  params.SourceType,
		Src:         params.Src,
		VideoId:     params.VideoId,
		Title:       params.Title,
		CurrentTime: params.CurrentTime,
		IsPaused:    params.IsPaused,
	}, nil
}

type ApplyActionParams struct {
	SenderConn  *websocket.Conn
	CurrentTime *float64
	IsPaused    *bool
}

// Action is the partial playback mutation relayed to the other clients. It
// is the raw action, not the merged snapshot.
type Action struct {
	CurrentTime *float64 `json:"current_time,omitempty"`
	IsPaused    *bool    `json:"is_paused,omitempty"`
}

type ApplyActionResponse struct {
	Action Action
	// every connected client except the sender
	Conns []*websocket.Conn
}

// ApplyAction merges the provided fields into the canonical playback state.
// It always succeeds for a joined sender; negative positions are clamped to
// zero so the state invariant holds.
func (s *service) ApplyAction(ctx context.Context, params *ApplyActionParams) (ApplyActionResponse, error) {
	if _, err := s.getSender(params.SenderConn); err != nil {
		return ApplyActionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	action := Action{
		CurrentTime: params.CurrentTime,
		IsPaused:    params.IsPaused,
	}
	if action.CurrentTime != nil && *action.CurrentTime < 0 {
		zero := 0.0
		action.CurrentTime = &zero
	}

	if _, err := s.ensurePlayer(ctx); err != nil {
		return ApplyActionResponse{}, err
	}

	if err := s.roomRepo.UpdatePlayer(ctx, &room.UpdatePlayerParams{
		CurrentTime: action.CurrentTime,
		IsPaused:    action.IsPaused,
	}); err != nil {
		return ApplyActionResponse{}, fmt.Errorf("failed to update player: %w", err)
	}

	conns, err := s.getConnsExcept(ctx, params.SenderConn)
	if err != nil {
		return ApplyActionResponse{}, err
	}

	return ApplyActionResponse{
		Action: action,
		Conns:  conns,
	}, nil
}

type ChangeVideoParams struct {
	SenderConn *websocket.Conn
	Link       string
}

type ChangeVideoResponse struct {
	Source        Source
	Player        Player
	SystemMessage ChatMessage
	Conns         []*websocket.Conn
}

// ChangeVideo replaces the canonical source wholesale: position resets to
// zero, playback pauses. Embedded titles are resolved best-effort; a failed
// lookup falls back to a generic label and never fails the command.
func (s *service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) (ChangeVideoResponse, error) {
	memberId, err := s.getSender(params.SenderConn)
	if err != nil {
		return ChangeVideoResponse{}, err
	}

	source, err := domain.ParseSource(params.Link)
	if err != nil {
		return ChangeVideoResponse{}, err
	}

	title := source.Title
	if source.Type == domain.SourceTypeEmbedded {
		title = s.resolveEmbeddedTitle(ctx, source.VideoId)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.roomRepo.GetMember(ctx, memberId)
	if err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	setParams := room.SetPlayerParams{
		SourceType:  string(source.Type),
		Src:         source.Src,
		VideoId:     source.VideoId,
		Title:       title,
		CurrentTime: 0,
		IsPaused:    true,
	}
	if err := s.roomRepo.SetPlayer(ctx, &setParams); err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	sysMsg, err := s.appendSystemMessage(ctx, fmt.Sprintf("%s changed the video to %s", member.Username, title))
	if err != nil {
		return ChangeVideoResponse{}, err
	}

	conns, err := s.getConns(ctx)
	if err != nil {
		return ChangeVideoResponse{}, err
	}

	return ChangeVideoResponse{
		Source: Source{
			SourceType: setParams.SourceType,
			Src:        setParams.Src,
			VideoId:    setParams.VideoId,
			Title:      setParams.Title,
		},
		Player: Player{
			SourceType:  setParams.SourceType,
			Src:         setParams.Src,
			VideoId:     setParams.VideoId,
			Title:       setParams.Title,
			CurrentTime: setParams.CurrentTime,
			IsPaused:    setParams.IsPaused,
		},
		SystemMessage: sysMsg,
		Conns:         conns,
	}, nil
}

func (s *service) resolveEmbeddedTitle(ctx context.Context, videoId string) string {
	fallback := "YouTube: " + videoId
	if s.titleResolver == nil {
		return fallback
	}

	title, err := s.titleResolver.ResolveTitle(ctx, videoId)
	if err != nil || title == "" {
		s.logger.DebugContext(ctx, "failed to resolve video title", "video_id", videoId, "error", err)
		return fallback
	}

	return title
}

type GetPlayerResponse struct {
	Player Player
}

// GetPlayer returns the full canonical snapshot.
func (s *service) GetPlayer(ctx context.Context) (GetPlayerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.ensurePlayer(ctx)
	if err != nil {
		return GetPlayerResponse{}, err
	}

	return GetPlayerResponse{Player: player}, nil
}
