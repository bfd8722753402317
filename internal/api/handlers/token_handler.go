package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voxbridge/voxbridge/internal/realtime"
	"github.com/voxbridge/voxbridge/internal/utils"
)

type TokenHandler struct {
	resolver     *realtime.Resolver
	negotiator   *realtime.Negotiator
	defaultModel string
	defaultVoice string
	log          *logrus.Logger
}

func NewTokenHandler(resolver *realtime.Resolver, negotiator *realtime.Negotiator, defaultModel, defaultVoice string, log *logrus.Logger) *TokenHandler {
	return &TokenHandler{
		resolver:     resolver,
		negotiator:   negotiator,
		defaultModel: defaultModel,
		defaultVoice: defaultVoice,
		log:          log,
	}
}

// Issue mints a session token for the requested model. Peer-transport
// sessions get a short-lived upstream credential; streaming sessions get a
// relay-ready payload with no secret.
func (h *TokenHandler) Issue(c *gin.Context) {
	model := c.DefaultQuery("model", h.defaultModel)
	sourceLang := c.DefaultQuery("source_lang", "en")
	targetLang := c.DefaultQuery("target_lang", "fr")
	voice := c.DefaultQuery("voice", h.defaultVoice)

	transport := h.resolver.Resolve(model, realtime.TransportPeer)
	cfg := realtime.NewSessionConfig(model, sourceLang, targetLang, voice, transport)

	token, err := h.negotiator.CreateSessionToken(c.Request.Context(), cfg)
	if err != nil {
		h.log.WithError(err).WithField("model", model).Error("failed to issue realtime token")

		var upstream *realtime.UpstreamSessionError
		if errors.As(err, &upstream) {
			writeError(c, utils.E(utils.CodeInternal, "TokenHandler.Issue", upstream.Body, err))
			return
		}
		writeError(c, utils.E(utils.CodeInternal, "TokenHandler.Issue", "failed to create realtime session", err))
		return
	}

	h.log.WithFields(logrus.Fields{
		"model":     token.Model,
		"source":    sourceLang,
		"target":    targetLang,
		"transport": token.Transport,
	}).Info("issued realtime token")

	c.JSON(http.StatusOK, token)
}
