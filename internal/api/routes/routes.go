package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/voxbridge/voxbridge/internal/api/handlers"
)

type Deps struct {
	Token     *handlers.TokenHandler
	Translate *handlers.TranslateHandler
	Relay     *handlers.RelayHandler
	SelfTest  *handlers.SelfTestHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/realtime/token", d.Token.Issue)
	r.GET("/realtime/self-test", d.SelfTest.Check)

	// WebSocket relay (streaming transport only)
	r.GET("/realtime/ws", d.Relay.Stream)

	r.POST("/audio/translate", d.Translate.Translate)
}
