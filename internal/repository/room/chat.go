package room

// ChatMessage is stored json-encoded in the chat list. Author is nil for
// system messages.
type ChatMessage struct {
	Author    *ChatAuthor `json:"author,omitempty"`
	Text      string      `json:"text"`
	IsSystem  bool        `json:"is_system"`
	Timestamp int64       `json:"timestamp"`
}

type ChatAuthor struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
