package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/voxbridge/voxbridge/internal/realtime"
)

// SelfTestHandler validates upstream connectivity for a model without a
// client in the loop: peer transport mints a throwaway token, streaming
// transport performs a bare websocket handshake.
type SelfTestHandler struct {
	resolver     *realtime.Resolver
	negotiator   *realtime.Negotiator
	apiKey       string
	baseURL      string
	defaultModel string
	log          *logrus.Logger
}

func NewSelfTestHandler(resolver *realtime.Resolver, negotiator *realtime.Negotiator, apiKey, baseURL, defaultModel string, log *logrus.Logger) *SelfTestHandler {
	return &SelfTestHandler{
		resolver:     resolver,
		negotiator:   negotiator,
		apiKey:       apiKey,
		baseURL:      baseURL,
		defaultModel: defaultModel,
		log:          log,
	}
}

type selfTestResponse struct {
	OK        bool               `json:"ok"`
	Model     string             `json:"model"`
	Transport realtime.Transport `json:"transport"`
	Detail    map[string]any     `json:"detail,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (h *SelfTestHandler) Check(c *gin.Context) {
	model := c.DefaultQuery("model", h.defaultModel)
	sourceLang := c.DefaultQuery("source_lang", "en")
	targetLang := c.DefaultQuery("target_lang", "fr")

	transport := h.resolver.Resolve(model, realtime.TransportPeer)
	cfg := realtime.NewSessionConfig(model, sourceLang, targetLang, "", transport)

	if transport == realtime.TransportPeer {
		token, err := h.negotiator.CreateSessionToken(c.Request.Context(), cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, selfTestResponse{
				OK: false, Model: model, Transport: transport, Error: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, selfTestResponse{
			OK: true, Model: model, Transport: transport,
			Detail: map[string]any{"message": "Ephemeral session minted.", "expires_at": token.ExpiresAt},
		})
		return
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{"realtime"},
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+h.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	target := h.baseURL + "?model=" + url.QueryEscape(model)
	conn, _, err := dialer.DialContext(c.Request.Context(), target, header)
	if err != nil {
		h.log.WithError(err).WithField("model", model).Error("realtime self-test handshake failed")
		c.JSON(http.StatusInternalServerError, selfTestResponse{
			OK: false, Model: model, Transport: transport, Error: err.Error(),
		})
		return
	}
	defer conn.Close()

	payload, _ := json.Marshal(realtime.BuildSessionUpdate(cfg))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.JSON(http.StatusInternalServerError, selfTestResponse{
			OK: false, Model: model, Transport: transport, Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, selfTestResponse{
		OK: true, Model: model, Transport: transport,
		Detail: map[string]any{"message": "WebSocket handshake ok."},
	})
}
