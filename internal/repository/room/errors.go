package room

import "errors"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrPlayerNotFound = errors.New("player not found")
)
