package redis

import (
	"context"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getPlayerKey() string {
	return "room:player"
}

func (r repo) SetPlayer(ctx context.Context, params *room.SetPlayerParams) error {
	pipe := r.rc.TxPipeline()

	pipe.Del(ctx, r.getPlayerKey())
	pipe.HSet(ctx, r.getPlayerKey(), room.Player{
		SourceType:  params.SourceType,
		Src:         params.Src,
		VideoId:     params.VideoId,
		Title:       params.Title,
		CurrentTime: params.CurrentTime,
		IsPaused:    params.IsPaused,
	})

	return r.executePipe(ctx, pipe)
}

func (r repo) GetPlayer(ctx context.Context) (room.Player, error) {
	var player room.Player
	if err := r.rc.HGetAll(ctx, r.getPlayerKey()).Scan(&player); err != nil {
		return room.Player{}, err
	}

	if player.SourceType == "" {
		return room.Player{}, room.ErrPlayerNotFound
	}

	return player, nil
}

// UpdatePlayer merges only the provided fields into the player hash.
func (r repo) UpdatePlayer(ctx context.Context, params *room.UpdatePlayerParams) error {
	fields := make(map[string]any, 2)
	if params.CurrentTime != nil {
		fields["current_time"] = *params.CurrentTime
	}
	if params.IsPaused != nil {
		fields["is_paused"] = *params.IsPaused
	}

	if len(fields) == 0 {
		return nil
	}

	return r.rc.HSet(ctx, r.getPlayerKey(), fields).Err()
}
