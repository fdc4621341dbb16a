package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/watchroom/server/internal/app"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/redisclient"
)

func main() {
	pflag.String("host", "0.0.0.0", "http listen host")
	pflag.Int("port", 8080, "http listen port")
	pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Int("chat-history-limit", 100, "number of retained chat messages")
	pflag.Int("chat-message-limit", 200, "max chat message length in characters")
	pflag.Int("chat-cooldown-ms", 700, "min interval between chat messages per member")
	pflag.String("default-video-url", "/static/sample.mp4", "video served until someone changes it")
	pflag.String("redis-host", "localhost", "redis host")
	pflag.Int("redis-port", 6379, "redis port")
	pflag.String("redis-password", "", "redis password")
	pflag.Int("oembed-timeout-ms", 3000, "youtube oembed request timeout")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		slog.Error("failed to bind flags", "error", err)
		os.Exit(1)
	}
	viper.SetEnvPrefix("SERVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg := app.AppConfig{
		Host:     viper.GetString("host"),
		Port:     viper.GetInt("port"),
		LogLevel: viper.GetString("log-level"),
		Redis: redisclient.Config{
			Host:     viper.GetString("redis-host"),
			Port:     viper.GetInt("redis-port"),
			Password: viper.GetString("redis-password"),
		},
		Room: room.Config{
			ChatHistoryLimit: viper.GetInt("chat-history-limit"),
			ChatMessageLimit: viper.GetInt("chat-message-limit"),
			ChatCooldown:     time.Duration(viper.GetInt("chat-cooldown-ms")) * time.Millisecond,
			DefaultVideoURL:  viper.GetString("default-video-url"),
		},
		OembedTimeout: time.Duration(viper.GetInt("oembed-timeout-ms")) * time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, &cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
