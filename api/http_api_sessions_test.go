package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matrix-org/postguard/pipeline"
	"github.com/matrix-org/postguard/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpSessionDetailsApiWrongMethod(t *testing.T) {
	t.Parallel()

	api := makeApi(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost /* should be GET */, "/api/v1/sessions/abc/details", nil)
	r.SetPathValue("id", "abc")
	httpSessionDetailsApi(api, w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	test.AssertApiError(t, w, "PG_UNRECOGNIZED", "Method not allowed")
}

func TestHttpSessionDetailsApiNotFound(t *testing.T) {
	t.Parallel()

	api := makeApi(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc/details", nil)
	r.SetPathValue("id", "abc")
	httpSessionDetailsApi(api, w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	test.AssertApiError(t, w, "PG_NOT_FOUND", "Session not found")
}

func TestHttpSessionDetailsApi(t *testing.T) {
	t.Parallel()

	api := makeApi(t)

	// Run a check through the HTTP API to populate the session
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/check", test.MakeJsonBody(t, map[string]any{
		"text":       "I will kill him",
		"session_id": "session1",
	}))
	httpCheckApi(api, w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/session1/details", nil)
	r.SetPathValue("id", "session1")
	httpSessionDetailsApi(api, w, r)
	require.Equal(t, http.StatusOK, w.Code)

	trace := &pipeline.Trace{}
	require.NoError(t, parseJsonBody(trace, w.Body))
	assert.Equal(t, "Threats", trace.ContentLabel.String())
	assert.Equal(t, "I will **** him", trace.MaskedText)
	assert.Equal(t, []string{"kill"}, trace.MaskedWords)
	assert.Equal(t, []string{"this post may contain threats"}, trace.ReadableWarnings)
	assert.NotEmpty(t, trace.Tokens)
}
