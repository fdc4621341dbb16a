package room

import "github.com/watchroom/server/internal/repository/room"

type Member struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type ChatMessage struct {
	Author    *Member `json:"author,omitempty"`
	Text      string  `json:"text"`
	IsSystem  bool    `json:"is_system"`
	Timestamp int64   `json:"timestamp"`
}

type Player struct {
	SourceType  string  `json:"source_type"`
	Src         string  `json:"src"`
	VideoId     string  `json:"video_id,omitempty"`
	Title       string  `json:"title"`
	CurrentTime float64 `json:"current_time"`
	IsPaused    bool    `json:"is_paused"`
}

// Source describes a change-video result without playback position.
type Source struct {
	SourceType string `json:"source_type"`
	Src        string `json:"src"`
	VideoId    string `json:"video_id,omitempty"`
	Title      string `json:"title"`
}

func chatMessageFromRepo(msg *room.ChatMessage) ChatMessage {
	out := ChatMessage{
		Text:      msg.Text,
		IsSystem:  msg.IsSystem,
		Timestamp: msg.Timestamp,
	}
	if msg.Author != nil {
		out.Author = &Member{Id: msg.Author.Id, Name: msg.Author.Name}
	}

	return out
}

func playerFromRepo(player *room.Player) Player {
	return Player{
		SourceType:  player.SourceType,
		Src:         player.Src,
		VideoId:     player.VideoId,
		Title:       player.Title,
		CurrentTime: player.CurrentTime,
		IsPaused:    player.IsPaused,
	}
}
