package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/voicerelay/internal/api/middleware"
	"github.com/nikhilbhutani/voicerelay/internal/assistant"
)

const maxBodyBytes = 1 << 20

// Text is a string field that accepts any JSON value. Strings are taken as
// is, null is empty, and anything else keeps its literal JSON text, so
// {"userMessage": 42} reads as "42".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// TextPayload is a transcript produced by the browser's speech recognition.
type TextPayload struct {
	Text Text `json:"text"`
}

// MessageRequest is the user's side of a chat exchange. The browser also
// sends a "voice" field, which is ignored.
type MessageRequest struct {
	UserMessage Text `json:"userMessage"`
}

// MessageResponse is the assistant's side of a chat exchange.
type MessageResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Assistant produces a reply for a single user message. Failures reaching the
// model are folded into the reply text.
type Assistant interface {
	Exchange(ctx context.Context, userMessage string) assistant.Exchange
}

type RelayHandler struct {
	assistant Assistant
}

func NewRelayHandler(a Assistant) *RelayHandler {
	return &RelayHandler{assistant: a}
}

// SpeechToText echoes the transcript back. Transcription already happened in
// the browser.
func (h *RelayHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	var payload TextPayload
	if err := decodeObject(w, r, &payload); err != nil {
		slog.Error("error in speech-to-text route", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	slog.Info("received text", "text", string(payload.Text), "request_id", middleware.GetRequestID(r.Context()))

	writeJSON(w, http.StatusOK, TextPayload{Text: payload.Text})
}

// ProcessMessage asks the assistant for a reply to userMessage.
func (h *RelayHandler) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req MessageRequest
	if err := decodeObject(w, r, &req); err != nil {
		slog.Error("error in process-message route", "error", err, "request_id", reqID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	slog.Info("processing message", "user_message", req.UserMessage, "request_id", reqID)

	ex := h.assistant.Exchange(r.Context(), string(req.UserMessage))

	slog.Info("assistant response",
		"response", ex.Response,
		"provider", ex.Provider,
		"latency_ms", ex.LatencyMs,
		"recovered", ex.Recovered,
		"request_id", reqID,
	)

	writeJSON(w, http.StatusOK, MessageResponse{Response: ex.Response})
}

// decodeObject reads a single JSON object into dst. Missing fields keep their
// zero value; an empty body, null, any non-object value, or data after the
// object is an error.
func decodeObject[T any](w http.ResponseWriter, r *http.Request, dst *T) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var obj *T
	if err := dec.Decode(&obj); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if obj == nil {
		return errors.New("request body must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: unexpected data after JSON object")
	}
	*dst = *obj
	return nil
}
