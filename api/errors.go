package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/matrix-org/postguard/metrics"
)

const ErrCodeUnauthorized = "PG_UNAUTHORIZED"
const ErrCodeBadJson = "PG_BAD_JSON"
const ErrCodeNotFound = "PG_NOT_FOUND"
const ErrCodeUnknown = "PG_UNKNOWN"
const ErrCodeUnrecognized = "PG_UNRECOGNIZED"
const ErrCodeLimitExceeded = "PG_LIMIT_EXCEEDED"

func httpError(w http.ResponseWriter, code int, errcode string, msg string) {
	b, err := json.Marshal(map[string]string{
		"errcode": errcode,
		"error":   msg,
	})
	if err != nil {
		b = []byte(`{"errcode":"` + ErrCodeUnknown + `","error":"Error"}`) // "should never happen"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

type errorResponder struct {
	action string
	w      http.ResponseWriter
	r      *http.Request
}

func (e *errorResponder) text(httpCode int, errcode string, error string) {
	defer metrics.RecordHttpResponse(e.r.Method, e.action, httpCode)
	httpError(e.w, httpCode, errcode, error)
}

func (e *errorResponder) err(httpCode int, errcode string, err error) {
	log.Printf("%s error (%d/%s): %v", e.action, httpCode, errcode, err)
	e.text(httpCode, errcode, "Error")
}

func newErrorResponder(action string, w http.ResponseWriter, r *http.Request) *errorResponder {
	return &errorResponder{
		action: action,
		w:      w,
		r:      r,
	}
}
