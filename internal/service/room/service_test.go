package room_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/repository/connection/inmemory"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	"github.com/watchroom/server/internal/service/room"
)

type stubResolver struct {
	title string
	err   error
}

func (s stubResolver) ResolveTitle(ctx context.Context, videoId string) (string, error) {
	return s.title, s.err
}

type roomService interface {
	Join(context.Context, *room.JoinParams) (room.JoinResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
	PostMessage(context.Context, *room.PostMessageParams) (room.PostMessageResponse, error)
	ApplyAction(context.Context, *room.ApplyActionParams) (room.ApplyActionResponse, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) (room.ChangeVideoResponse, error)
	GetPlayer(context.Context) (room.GetPlayerResponse, error)
	GetChatHistory(context.Context) (room.GetChatHistoryResponse, error)
}

func newTestService(t *testing.T, cfg room.Config, resolver stubResolver) (*miniredis.Miniredis, roomService) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, slog.Default())
	connRepo := inmemory.NewRepo()

	return s, room.NewService(roomRepo, connRepo, resolver, &cfg, slog.Default())
}

func defaultConfig() room.Config {
	return room.Config{
		ChatHistoryLimit: 100,
		ChatMessageLimit: 200,
		ChatCooldown:     700 * time.Millisecond,
		DefaultVideoURL:  "/static/sample.mp4",
	}
}

func TestJoin(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{})
	ctx := context.Background()

	conn1 := &websocket.Conn{}
	resp, err := svc.Join(ctx, &room.JoinParams{Conn: conn1, Name: "  alice  "})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.JoinedMember.Id)
	assert.Equal(t, "alice", resp.JoinedMember.Name, "name must be trimmed")
	assert.Equal(t, []room.Member{resp.JoinedMember}, resp.Memberlist)
	assert.Empty(t, resp.ChatHistory, "own join announcement must not be in the snapshot")
	assert.Equal(t, "alice joined the room", resp.SystemMessage.Text)
	assert.True(t, resp.SystemMessage.IsSystem)
	assert.Len(t, resp.Conns, 1)

	// default player snapshot
	assert.Equal(t, "file", resp.Player.SourceType)
	assert.Equal(t, "/static/sample.mp4", resp.Player.Src)
	assert.Equal(t, "sample.mp4", resp.Player.Title)
	assert.Zero(t, resp.Player.CurrentTime)
	assert.True(t, resp.Player.IsPaused)

	// empty name
	_, err = svc.Join(ctx, &room.JoinParams{Conn: &websocket.Conn{}, Name: "   "})
	require.ErrorIs(t, err, room.ErrEmptyName)

	// duplicate name, first-come-wins
	_, err = svc.Join(ctx, &room.JoinParams{Conn: &websocket.Conn{}, Name: "alice"})
	require.ErrorIs(t, err, room.ErrNameTaken)

	// second member sees the join announcement in the snapshot
	conn2 := &websocket.Conn{}
	resp2, err := svc.Join(ctx, &room.JoinParams{Conn: conn2, Name: "bob"})
	require.NoError(t, err)
	require.Len(t, resp2.ChatHistory, 1)
	assert.Equal(t, "alice joined the room", resp2.ChatHistory[0].Text)
	assert.Len(t, resp2.Conns, 2)

	// memberlist keeps join order
	require.Len(t, resp2.Memberlist, 2)
	assert.Equal(t, "alice", resp2.Memberlist[0].Name)
	assert.Equal(t, "bob", resp2.Memberlist[1].Name)
}

func TestDisconnect(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{})
	ctx := context.Background()

	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn1, Name: "alice"})
	require.NoError(t, err)
	_, err = svc.Join(ctx, &room.JoinParams{Conn: conn2, Name: "bob"})
	require.NoError(t, err)

	resp, err := svc.Disconnect(ctx, &room.DisconnectParams{Conn: conn1})
	require.NoError(t, err)
	assert.Equal(t, "alice left the room", resp.SystemMessage.Text)
	require.Len(t, resp.Memberlist, 1)
	assert.Equal(t, "bob", resp.Memberlist[0].Name)
	assert.Len(t, resp.Conns, 1)

	// name is free again
	_, err = svc.Join(ctx, &room.JoinParams{Conn: &websocket.Conn{}, Name: "alice"})
	require.NoError(t, err)

	// a conn that never joined
	_, err = svc.Disconnect(ctx, &room.DisconnectParams{Conn: &websocket.Conn{}})
	require.ErrorIs(t, err, room.ErrNotJoined)
}

func TestPostMessage(t *testing.T) {
	s, svc := newTestService(t, defaultConfig(), stubResolver{})
	ctx := context.Background()

	conn := &websocket.Conn{}
	joinResp, err := svc.Join(ctx, &room.JoinParams{Conn: conn, Name: "alice"})
	require.NoError(t, err)

	// unidentified sender
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: &websocket.Conn{}, Text: "hi"})
	require.ErrorIs(t, err, room.ErrNotJoined)

	resp, err := svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Message.Text, "text must be trimmed")
	require.NotNil(t, resp.Message.Author)
	assert.Equal(t, joinResp.JoinedMember.Id, resp.Message.Author.Id)
	assert.Equal(t, "alice", resp.Message.Author.Name)
	assert.False(t, resp.Message.IsSystem)
	assert.NotZero(t, resp.Message.Timestamp)
	assert.Len(t, resp.Conns, 1)

	// second message inside the cooldown window
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: "again"})
	require.ErrorIs(t, err, room.ErrRateLimited)

	// accepted again once the window passes
	s.FastForward(701 * time.Millisecond)
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: "again"})
	require.NoError(t, err)

	// empty and whitespace-only messages
	s.FastForward(701 * time.Millisecond)
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: "   "})
	require.ErrorIs(t, err, room.ErrEmptyMessage)

	// length limit counts runes
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: strings.Repeat("ы", 201)})
	require.ErrorIs(t, err, room.ErrMessageTooLong)

	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: strings.Repeat("ы", 200)})
	require.NoError(t, err)
}

func TestRejectedMessageDoesNotStartCooldown(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{})
	ctx := context.Background()

	conn := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn, Name: "alice"})
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: strings.Repeat("a", 300)})
	require.ErrorIs(t, err, room.ErrMessageTooLong)

	// the rejected message must not have consumed the cooldown
	_, err = svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: "ok"})
	require.NoError(t, err)
}

func TestChatHistoryEviction(t *testing.T) {
	cfg := defaultConfig()
	cfg.ChatHistoryLimit = 3
	s, svc := newTestService(t, cfg, stubResolver{})
	ctx := context.Background()

	conn := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn, Name: "alice"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.PostMessage(ctx, &room.PostMessageParams{SenderConn: conn, Text: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
		s.FastForward(701 * time.Millisecond)
	}

	resp, err := svc.GetChatHistory(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "msg 2", resp.Messages[0].Text)
	assert.Equal(t, "msg 4", resp.Messages[2].Text)
}

func TestApplyAction(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{})
	ctx := context.Background()

	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn1, Name: "alice"})
	require.NoError(t, err)
	_, err = svc.Join(ctx, &room.JoinParams{Conn: conn2, Name: "bob"})
	require.NoError(t, err)

	// unidentified sender
	paused := false
	_, err = svc.ApplyAction(ctx, &room.ApplyActionParams{SenderConn: &websocket.Conn{}, IsPaused: &paused})
	require.ErrorIs(t, err, room.ErrNotJoined)

	// seek only
	seekTo := 42.5
	resp, err := svc.ApplyAction(ctx, &room.ApplyActionParams{SenderConn: conn1, CurrentTime: &seekTo})
	require.NoError(t, err)
	require.NotNil(t, resp.Action.CurrentTime)
	assert.Equal(t, 42.5, *resp.Action.CurrentTime)
	assert.Nil(t, resp.Action.IsPaused, "untouched fields must not appear in the relayed action")
	assert.Len(t, resp.Conns, 1, "the sender must not receive its own action")

	// play only, the earlier seek survives the merge
	resp, err = svc.ApplyAction(ctx, &room.ApplyActionParams{SenderConn: conn2, IsPaused: &paused})
	require.NoError(t, err)
	assert.Nil(t, resp.Action.CurrentTime)

	player, err := svc.GetPlayer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42.5, player.Player.CurrentTime)
	assert.False(t, player.Player.IsPaused)

	// negative positions are clamped
	negative := -3.0
	resp, err = svc.ApplyAction(ctx, &room.ApplyActionParams{SenderConn: conn1, CurrentTime: &negative})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *resp.Action.CurrentTime)

	player, err = svc.GetPlayer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, player.Player.CurrentTime)
}

func TestChangeVideo(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{title: "Never Gonna Give You Up"})
	ctx := context.Background()

	conn := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn, Name: "alice"})
	require.NoError(t, err)

	// move playback off the defaults first
	playing := false
	seekTo := 30.0
	_, err = svc.ApplyAction(ctx, &room.ApplyActionParams{SenderConn: conn, CurrentTime: &seekTo, IsPaused: &playing})
	require.NoError(t, err)

	resp, err := svc.ChangeVideo(ctx, &room.ChangeVideoParams{
		SenderConn: conn,
		Link:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.Equal(t, "embedded", resp.Source.SourceType)
	assert.Equal(t, "dQw4w9WgXcQ", resp.Source.VideoId)
	assert.Equal(t, "Never Gonna Give You Up", resp.Source.Title)
	assert.Zero(t, resp.Player.CurrentTime, "position must reset")
	assert.True(t, resp.Player.IsPaused, "playback must pause")
	assert.Equal(t, "alice changed the video to Never Gonna Give You Up", resp.SystemMessage.Text)
	assert.Len(t, resp.Conns, 1)

	// file link
	resp, err = svc.ChangeVideo(ctx, &room.ChangeVideoParams{
		SenderConn: conn,
		Link:       "https://cdn.example.com/clip.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "file", resp.Source.SourceType)
	assert.Equal(t, "clip.mp4", resp.Source.Title)
	assert.Empty(t, resp.Source.VideoId)

	// unsupported link
	_, err = svc.ChangeVideo(ctx, &room.ChangeVideoParams{SenderConn: conn, Link: "https://example.com/page"})
	require.ErrorIs(t, err, domain.ErrUnsupportedLink)

	// unidentified sender
	_, err = svc.ChangeVideo(ctx, &room.ChangeVideoParams{SenderConn: &websocket.Conn{}, Link: "x.mp4"})
	require.ErrorIs(t, err, room.ErrNotJoined)
}

func TestChangeVideoTitleFallback(t *testing.T) {
	_, svc := newTestService(t, defaultConfig(), stubResolver{err: fmt.Errorf("offline")})
	ctx := context.Background()

	conn := &websocket.Conn{}
	_, err := svc.Join(ctx, &room.JoinParams{Conn: conn, Name: "alice"})
	require.NoError(t, err)

	resp, err := svc.ChangeVideo(ctx, &room.ChangeVideoParams{
		SenderConn: conn,
		Link:       "https://youtu.be/dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.Equal(t, "YouTube: dQw4w9WgXcQ", resp.Source.Title)
}
