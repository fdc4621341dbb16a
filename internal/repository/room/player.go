package room

type Player struct {
	SourceType  string  `redis:"source_type"`
	Src         string  `redis:"src"`
	VideoId     string  `redis:"video_id"`
	Title       string  `redis:"title"`
	CurrentTime float64 `redis:"current_time"`
	IsPaused    bool    `redis:"is_paused"`
}

type SetPlayerParams struct {
	SourceType  string
	Src         string
	VideoId     string
	Title       string
	CurrentTime float64
	IsPaused    bool
}

// UpdatePlayerParams is a partial update: nil fields are left untouched.
type UpdatePlayerParams struct {
	CurrentTime *float64
	IsPaused    *bool
}
