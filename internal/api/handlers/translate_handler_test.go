package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/voxbridge/voxbridge/internal/pipeline"
	"github.com/voxbridge/voxbridge/internal/providers/stt"
	"github.com/voxbridge/voxbridge/internal/utils"
)

type stubSTT struct{ text, lang string }

func (s *stubSTT) Transcribe(ctx context.Context, audio []byte, filename, language string) (stt.Result, error) {
	return stt.Result{Text: s.text, Language: s.lang}, nil
}
func (s *stubSTT) Close() error { return nil }

type stubTranslator struct{ out string }

func (s *stubTranslator) Translate(ctx context.Context, instruction, text string) (string, error) {
	return s.out, nil
}
func (s *stubTranslator) Close() error { return nil }

type stubTTS struct{ out []byte }

func (s *stubTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return s.out, nil
}
func (s *stubTTS) Close() error { return nil }

func newTranslateRouter(audioOut []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := quietLogger()
	p := pipeline.New(
		&stubSTT{text: "bonjour", lang: "fr"},
		&stubTranslator{out: "hello"},
		&stubTTS{out: audioOut},
		"gpt-4o-mini", "verse", l,
	)
	h := NewTranslateHandler(p, l)

	r := gin.New()
	r.POST("/audio/translate", h.Translate)
	return r
}

func multipartAudio(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestTranslateEndpointHappyPath(t *testing.T) {
	audioOut := []byte{0x52, 0x49, 0x46, 0x46}
	r := newTranslateRouter(audioOut)

	body, contentType := multipartAudio(t, "audio_file", "clip.wav", []byte("riff-data"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/audio/translate?source_lang=fr&target_lang=en", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var resp TranslateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		t.Fatalf("audio_base64 not decodable: %v", err)
	}
	if !bytes.Equal(decoded, audioOut) {
		t.Fatalf("audio bytes mismatch")
	}
	if resp.TranscriptionText != "bonjour" || resp.TranslatedText != "hello" {
		t.Fatalf("unexpected texts: %q / %q", resp.TranscriptionText, resp.TranslatedText)
	}
	if resp.AudioFormat != "wav" {
		t.Fatalf("unexpected audio format %q", resp.AudioFormat)
	}
	if resp.DetectedSourceLanguage != "fr" {
		t.Fatalf("unexpected detected language %q", resp.DetectedSourceLanguage)
	}
	if _, ok := resp.Timing["total_latency_ms"]; !ok {
		t.Fatalf("timing missing total_latency_ms: %v", resp.Timing)
	}
}

func TestTranslateEndpointEmptyUploadIsBadRequest(t *testing.T) {
	r := newTranslateRouter([]byte{1})

	body, contentType := multipartAudio(t, "audio_file", "clip.wav", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audio/translate", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if apiErr.Code != utils.CodeInvalidArgument {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
}

func TestTranslateEndpointMissingFileIsBadRequest(t *testing.T) {
	r := newTranslateRouter([]byte{1})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audio/translate", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
