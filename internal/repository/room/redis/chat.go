package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getChatKey() string {
	return "room:chat"
}

func (r repo) getChatCooldownKey(memberId string) string {
	return "room:chat:cooldown:" + memberId
}

// AppendChatMessage appends to the chat log and trims it to the last limit
// entries, oldest evicted first.
func (r repo) AppendChatMessage(ctx context.Context, msg *room.ChatMessage, limit int) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	pipe.RPush(ctx, r.getChatKey(), encoded)
	pipe.LTrim(ctx, r.getChatKey(), int64(-limit), -1)

	return r.executePipe(ctx, pipe)
}

// GetChatHistory returns the chat log oldest first.
func (r repo) GetChatHistory(ctx context.Context) ([]room.ChatMessage, error) {
	entries, err := r.rc.LRange(ctx, r.getChatKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]room.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg room.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

// AcquireChatCooldown starts the sender's cooldown window. Returns false
// while a previous window is still running; the key is only written on
// success, so rejected attempts do not extend the window.
func (r repo) AcquireChatCooldown(ctx context.Context, memberId string, interval time.Duration) (bool, error) {
	return r.rc.SetNX(ctx, r.getChatCooldownKey(memberId), 1, interval).Result()
}
