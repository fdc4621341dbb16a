package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
	"github.com/watchroom/server/pkg/wsrouter"
)

type iRoomService interface {
	Join(context.Context, *room.JoinParams) (room.JoinResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
	PostMessage(context.Context, *room.PostMessageParams) (room.PostMessageResponse, error)
	ApplyAction(context.Context, *room.ApplyActionParams) (room.ApplyActionResponse, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) (room.ChangeVideoResponse, error)
	GetPlayer(context.Context) (room.GetPlayerResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter

	// serializes every outbound write so all clients observe broadcasts
	// in the same server-side order
	writeMu sync.Mutex
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
