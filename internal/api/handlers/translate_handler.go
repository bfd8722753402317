package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voxbridge/voxbridge/internal/pipeline"
	"github.com/voxbridge/voxbridge/internal/utils"
)

type TranslateHandler struct {
	pipeline *pipeline.Pipeline
	log      *logrus.Logger
}

func NewTranslateHandler(p *pipeline.Pipeline, log *logrus.Logger) *TranslateHandler {
	return &TranslateHandler{pipeline: p, log: log}
}

type TranslateResponse struct {
	AudioBase64            string           `json:"audio_base64"`
	AudioFormat            string           `json:"audio_format"`
	Timing                 map[string]int64 `json:"timing"`
	DetectedSourceLanguage string           `json:"detected_source_language"`
	Model                  string           `json:"model"`
	Voice                  string           `json:"voice"`
	TranscriptionText      string           `json:"transcription_text"`
	TranslatedText         string           `json:"translated_text"`
}

// Translate accepts a recorded audio clip and runs the batch pipeline.
func (h *TranslateHandler) Translate(c *gin.Context) {
	sourceLang := c.DefaultQuery("source_lang", "en")
	targetLang := c.DefaultQuery("target_lang", "fr")
	voice := c.Query("voice")

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "TranslateHandler.Translate", "audio_file is required", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "TranslateHandler.Translate", "failed to open upload", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "TranslateHandler.Translate", "failed to read upload", err))
		return
	}

	result, err := h.pipeline.Translate(c.Request.Context(), pipeline.Request{
		Audio:      audio,
		Filename:   fileHeader.Filename,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Voice:      voice,
	})
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"source": sourceLang,
			"target": targetLang,
		}).Error("audio translation failed")
		writeError(c, translatePipelineErr(err))
		return
	}

	c.JSON(http.StatusOK, TranslateResponse{
		AudioBase64:            base64.StdEncoding.EncodeToString(result.AudioBytes),
		AudioFormat:            result.AudioFormat,
		Timing:                 result.Timing,
		DetectedSourceLanguage: result.DetectedSourceLanguage,
		Model:                  result.Model,
		Voice:                  result.Voice,
		TranscriptionText:      result.TranscriptionText,
		TranslatedText:         result.TranslatedText,
	})
}

func translatePipelineErr(err error) error {
	const op = "TranslateHandler.Translate"

	if errors.Is(err, pipeline.ErrEmptyInput) {
		return utils.E(utils.CodeInvalidArgument, op, "audio payload is empty", err)
	}

	var stage *pipeline.StageError
	if errors.As(err, &stage) {
		return utils.E(utils.CodeInternal, op, "pipeline stage "+stage.Stage+" failed", err)
	}

	return utils.E(utils.CodeInternal, op, err.Error(), err)
}
