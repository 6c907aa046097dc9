package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func MakeJsonBody(t *testing.T, body any) io.Reader {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// MakeCheckRequest - A POST to the check endpoint. An empty sessionId is left out of the body.
func MakeCheckRequest(t *testing.T, text string, sessionId string) *http.Request {
	body := map[string]any{"text": text}
	if sessionId != "" {
		body["session_id"] = sessionId
	}
	return httptest.NewRequest(http.MethodPost, "/api/v1/check", MakeJsonBody(t, body))
}

// AssertApiError - Checks the response is a JSON error with the given code and message.
func AssertApiError(t *testing.T, w *httptest.ResponseRecorder, errcode string, message string) {
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	jsonErr := make(map[string]any)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jsonErr))
	assert.Equal(t, errcode, jsonErr["errcode"])
	assert.Equal(t, message, jsonErr["error"])
}

func AssertJsonBody(t *testing.T, w *httptest.ResponseRecorder, expected any) {
	expectedJson, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.JSONEq(t, string(expectedJson), w.Body.String())
}

// AssertCheckResponse - Checks a 200 check response shows the given text and warnings, without display
// enhancements.
func AssertCheckResponse(t *testing.T, w *httptest.ResponseRecorder, sessionId string, text string, warnings ...string) {
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	if warnings == nil {
		warnings = make([]string, 0)
	}
	AssertJsonBody(t, w, map[string]any{
		"text":         text,
		"enhancements": []string{},
		"warnings":     warnings,
		"session_id":   sessionId,
	})
}
