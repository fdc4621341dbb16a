// Package client mirrors the room's canonical state on top of a local video
// player and reconciles the two: remote commands are applied to the player,
// local player events are forwarded to the room, and echoes of remote
// commands are suppressed so the two sides never ping-pong.
package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultSuppressWindow = 400 * time.Millisecond
	defaultDriftThreshold = 2.0
)

// PlayerControl is the local playback surface the client drives.
type PlayerControl interface {
	Play()
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	Load(src string)
}

type Profile struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Message struct {
	Author    *Profile `json:"author,omitempty"`
	Text      string   `json:"text"`
	IsSystem  bool     `json:"is_system"`
	Timestamp int64    `json:"timestamp"`
}

type State struct {
	SourceType  string  `json:"source_type"`
	Src         string  `json:"src"`
	VideoId     string  `json:"video_id,omitempty"`
	Title       string  `json:"title"`
	CurrentTime float64 `json:"current_time"`
	IsPaused    bool    `json:"is_paused"`
}

type Action struct {
	CurrentTime *float64 `json:"current_time,omitempty"`
	IsPaused    *bool    `json:"is_paused,omitempty"`
}

type SendFunc func(eventType string, payload any) error

type Options struct {
	Player PlayerControl
	Send   SendFunc
	Logger *slog.Logger

	// zero values fall back to 400ms and 2s
	SuppressWindow time.Duration
	DriftThreshold float64
}

type Client struct {
	player PlayerControl
	send   SendFunc
	logger *slog.Logger

	suppressWindow time.Duration
	driftThreshold float64
	sup            suppressor

	mu        sync.Mutex
	profile   Profile
	state     State
	sampledAt time.Time

	// OnChatMessage receives broadcast chat and system messages; isOwn is
	// true when the author is this client's own profile.
	OnChatMessage func(msg Message, isOwn bool)
	OnChatHistory func([]Message)
	OnOnlineUsers func([]Profile)
	OnServerError func(eventType, message string)
}

func New(opts Options) *Client {
	c := &Client{
		player:         opts.Player,
		send:           opts.Send,
		logger:         opts.Logger,
		suppressWindow: opts.SuppressWindow,
		driftThreshold: opts.DriftThreshold,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.suppressWindow <= 0 {
		c.suppressWindow = defaultSuppressWindow
	}
	if c.driftThreshold <= 0 {
		c.driftThreshold = defaultDriftThreshold
	}

	return c
}

func (c *Client) Join(name string) error {
	return c.send("join", map[string]string{"name": name})
}

func (c *Client) SendChat(text string) error {
	return c.send("chat-message", text)
}

func (c *Client) ChangeVideo(link string) error {
	return c.send("change-video", link)
}

func (c *Client) Profile() Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.profile
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// HandleEvent dispatches a single server event. Unknown event types are
// ignored.
func (c *Client) HandleEvent(eventType string, payload json.RawMessage) error {
	switch eventType {
	case "your-profile":
		var profile Profile
		if err := json.Unmarshal(payload, &profile); err != nil {
			return fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		c.mu.Lock()
		c.profile = profile
		c.mu.Unlock()
	case "video-sync":
		var state State
		if err := json.Unmarshal(payload, &state); err != nil {
			return fmt.Errorf("failed to unmarshal state: %w", err)
		}
		c.applyState(state)
	case "video-action":
		var action Action
		if err := json.Unmarshal(payload, &action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}
		c.applyAction(action)
	case "change-video":
		var state State
		if err := json.Unmarshal(payload, &state); err != nil {
			return fmt.Errorf("failed to unmarshal source: %w", err)
		}
		state.CurrentTime = 0
		state.IsPaused = true
		c.applyState(state)
	case "chat-message", "system-message":
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		if c.OnChatMessage != nil {
			c.mu.Lock()
			isOwn := msg.Author != nil && msg.Author.Id == c.profile.Id && c.profile.Id != ""
			c.mu.Unlock()
			c.OnChatMessage(msg, isOwn)
		}
	case "chat-history":
		var msgs []Message
		if err := json.Unmarshal(payload, &msgs); err != nil {
			return fmt.Errorf("failed to unmarshal history: %w", err)
		}
		if c.OnChatHistory != nil {
			c.OnChatHistory(msgs)
		}
	case "online-users":
		var users []Profile
		if err := json.Unmarshal(payload, &users); err != nil {
			return fmt.Errorf("failed to unmarshal users: %w", err)
		}
		if c.OnOnlineUsers != nil {
			c.OnOnlineUsers(users)
		}
	case "join-error", "chat-error", "video-error":
		var message string
		if err := json.Unmarshal(payload, &message); err != nil {
			return fmt.Errorf("failed to unmarshal error: %w", err)
		}
		if c.OnServerError != nil {
			c.OnServerError(eventType, message)
		}
	}

	return nil
}

// applyState drives the player to a full canonical snapshot.
func (c *Client) applyState(state State) {
	c.mu.Lock()
	sameSrc := c.state.Src == state.Src
	c.state = state
	c.sampledAt = time.Now()
	c.mu.Unlock()

	c.sup.Hold(c.suppressWindow)

	if !sameSrc {
		c.player.Load(state.Src)
	}
	c.player.Seek(state.CurrentTime)
	if state.IsPaused {
		c.player.Pause()
	} else {
		c.player.Play()
	}
}

// applyAction merges a partial mutation into the mirror and the player.
func (c *Client) applyAction(action Action) {
	c.mu.Lock()
	if action.CurrentTime != nil {
		c.state.CurrentTime = *action.CurrentTime
	}
	if action.IsPaused != nil {
		c.state.IsPaused = *action.IsPaused
	}
	c.sampledAt = time.Now()
	c.mu.Unlock()

	c.sup.Hold(c.suppressWindow)

	if action.CurrentTime != nil {
		c.player.Seek(*action.CurrentTime)
	}
	if action.IsPaused != nil {
		if *action.IsPaused {
			c.player.Pause()
		} else {
			c.player.Play()
		}
	}
}

// LocalPlay reports that the local player started playing. Echoes of remote
// commands are dropped.
func (c *Client) LocalPlay() {
	if c.sup.Active() {
		return
	}

	c.mu.Lock()
	c.state.IsPaused = false
	c.state.CurrentTime = c.player.CurrentTime()
	c.sampledAt = time.Now()
	currentTime := c.state.CurrentTime
	c.mu.Unlock()

	paused := false
	c.sendAction(Action{CurrentTime: &currentTime, IsPaused: &paused})
}

// LocalPause reports that the local player paused.
func (c *Client) LocalPause() {
	if c.sup.Active() {
		return
	}

	c.mu.Lock()
	c.state.IsPaused = true
	c.state.CurrentTime = c.player.CurrentTime()
	c.sampledAt = time.Now()
	currentTime := c.state.CurrentTime
	c.mu.Unlock()

	paused := true
	c.sendAction(Action{CurrentTime: &currentTime, IsPaused: &paused})
}

// LocalSeek reports a user seek. Only file sources emit native seek events;
// embedded sources rely on the drift poller instead.
func (c *Client) LocalSeek(seconds float64) {
	if c.sup.Active() {
		return
	}

	c.mu.Lock()
	isFile := c.state.SourceType == "file"
	c.state.CurrentTime = seconds
	c.sampledAt = time.Now()
	c.mu.Unlock()

	if !isFile {
		return
	}

	c.sendAction(Action{CurrentTime: &seconds})
}

func (c *Client) sendAction(action Action) {
	if err := c.send("video-action", action); err != nil {
		c.logger.Debug("failed to send video action", "error", err)
	}
}
