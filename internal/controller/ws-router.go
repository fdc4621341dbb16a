package controller

import (
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.requestIdWSMw)
	mux.Use(c.loggingWSMw)

	wsrouter.Handle(mux, "join", c.handleJoin)
	wsrouter.Handle(mux, "chat-message", c.handleChatMessage)
	wsrouter.Handle(mux, "video-action", c.handleVideoAction)
	wsrouter.Handle(mux, "change-video", c.handleChangeVideo)
	wsrouter.Handle(mux, "alive", c.handleAlive)

	return mux
}
