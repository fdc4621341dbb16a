package client

import (
	"context"
	"math"
	"time"
)

const defaultPollInterval = 1200 * time.Millisecond

// RunPoller watches the player position for jumps an embedded source never
// reports as events. A position off the expected timeline by more than the
// drift threshold counts as a user seek and is forwarded to the room.
// It blocks until ctx is done.
func (c *Client) RunPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollTick()
		}
	}
}

func (c *Client) pollTick() {
	c.mu.Lock()
	state := c.state
	sampledAt := c.sampledAt
	c.mu.Unlock()

	if state.SourceType != "embedded" || c.sup.Active() {
		return
	}

	expected := state.CurrentTime
	if !state.IsPaused && !sampledAt.IsZero() {
		expected += time.Since(sampledAt).Seconds()
	}

	actual := c.player.CurrentTime()
	if math.Abs(actual-expected) <= c.driftThreshold {
		return
	}

	c.mu.Lock()
	c.state.CurrentTime = actual
	c.sampledAt = time.Now()
	c.mu.Unlock()

	c.sendAction(Action{CurrentTime: &actual})
}
