package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicerelay/internal/assistant"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Exchange(ctx context.Context, userMessage string) assistant.Exchange {
	args := m.Called(ctx, userMessage)
	return args.Get(0).(assistant.Exchange)
}

func post(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func TestSpeechToText_EchoesText(t *testing.T) {
	h := NewRelayHandler(new(mockAssistant))

	texts := []string{"hello world", "", "¿qué tal? 😀", "line\nbreak \"quoted\""}
	for _, text := range texts {
		body, _ := json.Marshal(TextPayload{Text: Text(text)})
		rr := post(t, h.SpeechToText, "/speech-to-text", string(body))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Equal(t, map[string]any{"text": text}, decodeBody(t, rr))
	}
}

func TestSpeechToText_MissingFieldDefaultsToEmpty(t *testing.T) {
	h := NewRelayHandler(new(mockAssistant))

	rr := post(t, h.SpeechToText, "/speech-to-text", `{}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":""}`, rr.Body.String())

	rr = post(t, h.SpeechToText, "/speech-to-text", `{"transcript":"ignored"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":""}`, rr.Body.String())
}

func TestProcessMessage_ReturnsReply(t *testing.T) {
	a := new(mockAssistant)
	a.On("Exchange", mock.Anything, "hello").
		Return(assistant.Exchange{UserMessage: "hello", Response: "Hi there!", Provider: "ollama"})
	h := NewRelayHandler(a)

	rr := post(t, h.ProcessMessage, "/process-message", `{"userMessage":"hello","voice":"default"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"Hi there!"}`, rr.Body.String())
	a.AssertExpectations(t)
}

func TestProcessMessage_MissingFieldDefaultsToEmpty(t *testing.T) {
	a := new(mockAssistant)
	a.On("Exchange", mock.Anything, "").Return(assistant.Exchange{Response: "What can I do for you?"})
	h := NewRelayHandler(a)

	rr := post(t, h.ProcessMessage, "/process-message", `{}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"What can I do for you?"}`, rr.Body.String())
	a.AssertExpectations(t)
}

func TestProcessMessage_RecoveredFailureIs200(t *testing.T) {
	a := new(mockAssistant)
	a.On("Exchange", mock.Anything, "hello").
		Return(assistant.Exchange{UserMessage: "hello", Response: assistant.UnavailableReply, Recovered: true})
	h := NewRelayHandler(a)

	rr := post(t, h.ProcessMessage, "/process-message", `{"userMessage":"hello"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, assistant.UnavailableReply, decodeBody(t, rr)["response"])
}

func TestMalformedBodies(t *testing.T) {
	bodies := []struct {
		name string
		body string
	}{
		{"truncated json", `{"text": "hel`},
		{"not json", `hello`},
		{"empty body", ``},
		{"null", `null`},
		{"array", `["hello"]`},
		{"string", `"hello"`},
		{"trailing garbage", `{"text": "hi", "userMessage": "hi"} trailing`},
		{"two objects", `{"text": "a"}{"text": "b"}`},
	}

	a := new(mockAssistant)
	h := NewRelayHandler(a)
	routes := map[string]http.HandlerFunc{
		"/speech-to-text":  h.SpeechToText,
		"/process-message": h.ProcessMessage,
	}

	for path, fn := range routes {
		for _, tc := range bodies {
			t.Run(path+"/"+tc.name, func(t *testing.T) {
				rr := post(t, fn, path, tc.body)

				assert.Equal(t, http.StatusInternalServerError, rr.Code)
				out := decodeBody(t, rr)
				assert.NotEmpty(t, out["error"])
			})
		}
	}

	a.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestNonStringFieldsReadAsText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"integer", `{"text": 42, "userMessage": 42}`, "42"},
		{"float keeps literal", `{"text": 4.50, "userMessage": 4.50}`, "4.50"},
		{"bool", `{"text": true, "userMessage": true}`, "true"},
		{"null", `{"text": null, "userMessage": null}`, ""},
		{"array", `{"text": [1, 2], "userMessage": [1, 2]}`, "[1,2]"},
		{"trailing whitespace", "{\"text\": \"hi\", \"userMessage\": \"hi\"}\n  ", "hi"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := new(mockAssistant)
			a.On("Exchange", mock.Anything, tc.want).Return(assistant.Exchange{Response: "ok"})
			h := NewRelayHandler(a)

			rr := post(t, h.SpeechToText, "/speech-to-text", tc.body)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, map[string]any{"text": tc.want}, decodeBody(t, rr))

			rr = post(t, h.ProcessMessage, "/process-message", tc.body)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `{"response":"ok"}`, rr.Body.String())
			a.AssertExpectations(t)
		})
	}
}
