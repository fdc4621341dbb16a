package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/repository/room"
)

var (
	ErrNotJoined      = errors.New("not joined")
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrNameTaken      = errors.New("name is already taken")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrRateLimited    = errors.New("too many messages, slow down")
)

type iRoomRepo interface {
	// member
	SetMember(context.Context, *room.SetMemberParams) error
	GetMember(ctx context.Context, memberId string) (room.Member, error)
	GetMemberIds(context.Context) ([]string, error)
	RemoveMember(ctx context.Context, memberId string) error
	AcquireName(ctx context.Context, name, memberId string) (bool, error)
	ReleaseName(ctx context.Context, name string) error
	// chat
	AppendChatMessage(ctx context.Context, msg *room.ChatMessage, limit int) error
	GetChatHistory(context.Context) ([]room.ChatMessage, error)
	AcquireChatCooldown(ctx context.Context, memberId string, interval time.Duration) (bool, error)
	// player
	SetPlayer(context.Context, *room.SetPlayerParams) error
	GetPlayer(context.Context) (room.Player, error)
	UpdatePlayer(context.Context, *room.UpdatePlayerParams) error
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByConn(*websocket.Conn) (string, error)
	RemoveByMemberId(string) (*websocket.Conn, error)
	GetConn(string) (*websocket.Conn, error)
	GetMemberId(*websocket.Conn) (string, error)
}

type iTitleResolver interface {
	ResolveTitle(ctx context.Context, videoId string) (string, error)
}

type Config struct {
	ChatHistoryLimit int
	ChatMessageLimit int
	ChatCooldown     time.Duration
	DefaultVideoURL  string
}

type service struct {
	roomRepo      iRoomRepo
	connRepo      iConnRepo
	titleResolver iTitleResolver
	logger        *slog.Logger

	chatHistoryLimit int
	chatMessageLimit int
	chatCooldown     time.Duration
	defaultVideoURL  string

	// serializes all room mutations; one handler runs at a time
	mu sync.Mutex
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, titleResolver iTitleResolver, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:         roomRepo,
		connRepo:         connRepo,
		titleResolver:    titleResolver,
		logger:           logger,
		chatHistoryLimit: cfg.ChatHistoryLimit,
		chatMessageLimit: cfg.ChatMessageLimit,
		chatCooldown:     cfg.ChatCooldown,
		defaultVideoURL:  cfg.DefaultVideoURL,
	}
}
