package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/voxbridge/voxbridge/internal/realtime"
)

type RelayHandler struct {
	relay        *realtime.Relay
	defaultModel string
	upgrader     websocket.Upgrader
	log          *logrus.Logger
}

func NewRelayHandler(relay *realtime.Relay, defaultModel string, log *logrus.Logger) *RelayHandler {
	return &RelayHandler{
		relay:        relay,
		defaultModel: defaultModel,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
		log: log,
	}
}

// Stream upgrades the request and hands the connection to the relay, which
// owns it from then on.
func (h *RelayHandler) Stream(c *gin.Context) {
	model := c.DefaultQuery("model", h.defaultModel)
	sourceLang := c.DefaultQuery("source_lang", "en")
	targetLang := c.DefaultQuery("target_lang", "fr")
	voice := c.Query("voice")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}

	if err := h.relay.Run(c.Request.Context(), conn, model, sourceLang, targetLang, voice); err != nil {
		h.log.WithError(err).WithField("model", model).Debug("relay session failed")
	}
}
