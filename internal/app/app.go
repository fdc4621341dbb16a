package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/watchroom/server/internal/controller"
	"github.com/watchroom/server/internal/repository/connection/inmemory"
	roomredis "github.com/watchroom/server/internal/repository/room/redis"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
	"github.com/watchroom/server/pkg/ytoembed"
)

type AppConfig struct {
	Host     string
	Port     int
	LogLevel string

	Redis redisclient.Config
	Room  room.Config

	OembedTimeout time.Duration
}

func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	if c.Room.ChatHistoryLimit < 1 {
		return fmt.Errorf("invalid chat history limit: %d", c.Room.ChatHistoryLimit)
	}
	if c.Room.ChatMessageLimit < 1 {
		return fmt.Errorf("invalid chat message limit: %d", c.Room.ChatMessageLimit)
	}
	if c.Room.ChatCooldown < 0 {
		return fmt.Errorf("invalid chat cooldown: %s", c.Room.ChatCooldown)
	}
	if c.Room.DefaultVideoURL == "" {
		return errors.New("default video url cannot be empty")
	}

	return nil
}

// oembedTitleResolver adapts the oEmbed client to the room service.
type oembedTitleResolver struct {
	client *ytoembed.Client
}

func (r oembedTitleResolver) ResolveTitle(ctx context.Context, videoId string) (string, error) {
	data, err := r.client.Get(ctx, videoId)
	if err != nil {
		return "", err
	}

	return data.Title, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	logger := slog.New(ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	})
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rc.Close()

	roomRepo := roomredis.NewRepo(rc, logger)
	connRepo := inmemory.NewRepo()
	titleResolver := oembedTitleResolver{client: ytoembed.NewClient(cfg.OembedTimeout)}

	roomService := room.NewService(roomRepo, connRepo, titleResolver, &cfg.Room, logger)
	ctrl := controller.NewController(roomService, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: ctrl.GetMux(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
