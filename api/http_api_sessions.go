package api

import (
	"net/http"

	"github.com/matrix-org/postguard/metrics"
)

func httpSessionDetailsApi(api *Api, w http.ResponseWriter, r *http.Request) {
	metrics.RecordHttpRequest(r.Method, "httpSessionDetailsApi")
	t := metrics.StartRequestTimer(r.Method, "httpSessionDetailsApi")
	defer t.ObserveDuration()

	errs := newErrorResponder("httpSessionDetailsApi", w, r)

	if r.Method != http.MethodGet {
		errs.text(http.StatusMethodNotAllowed, ErrCodeUnrecognized, "Method not allowed")
		return
	}

	sessionId := r.PathValue("id")
	if sessionId == "" {
		errs.text(http.StatusNotFound, ErrCodeNotFound, "Session not found")
		return
	}

	trace, err := api.sessions.Get(r.Context(), sessionId)
	if err != nil {
		errs.err(http.StatusInternalServerError, ErrCodeUnknown, err)
		return
	}
	if trace == nil {
		errs.text(http.StatusNotFound, ErrCodeNotFound, "Session not found")
		return
	}

	err = respondJson("httpSessionDetailsApi", r, w, trace)
	if err != nil {
		errs.err(http.StatusInternalServerError, ErrCodeUnknown, err)
	}
}
