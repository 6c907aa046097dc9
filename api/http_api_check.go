package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/storage"
	"github.com/panjf2000/ants/v2"
)

const maxSessionIdLength = 255

type checkRequest struct {
	Text      *string `json:"text"`
	SessionId string  `json:"session_id,omitempty"`
}

type checkResponse struct {
	Text         string   `json:"text"`
	Enhancements []string `json:"enhancements"`
	Warnings     []string `json:"warnings"`
	SessionId    string   `json:"session_id"`
}

func httpCheckApi(api *Api, w http.ResponseWriter, r *http.Request) {
	metrics.RecordHttpRequest(r.Method, "httpCheckApi")
	t := metrics.StartRequestTimer(r.Method, "httpCheckApi")
	defer t.ObserveDuration()

	errs := newErrorResponder("httpCheckApi", w, r)

	if r.Method != http.MethodPost {
		errs.text(http.StatusMethodNotAllowed, ErrCodeUnrecognized, "Method not allowed")
		return
	}

	req := &checkRequest{}
	if err := parseJsonBody(req, r.Body); err != nil {
		errs.err(http.StatusBadRequest, ErrCodeBadJson, err)
		return
	}
	if req.Text == nil {
		errs.text(http.StatusBadRequest, ErrCodeBadJson, "Missing text")
		return
	}
	if len(req.SessionId) > maxSessionIdLength {
		errs.text(http.StatusBadRequest, ErrCodeBadJson, "Session ID too long")
		return
	}
	if req.SessionId == "" {
		req.SessionId = storage.NextSessionId()
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.checkTimeout)
	defer cancel()

	ch := make(chan *queue.PoolResult, 1)
	err := api.pool.Submit(ctx, &queue.Check{
		SessionId: req.SessionId,
		Text:      *req.Text,
		Source:    metrics.CheckSourceHttp,
	}, ch)
	if err != nil {
		if errors.Is(err, queue.ErrTextTooLong) {
			errs.text(http.StatusRequestEntityTooLarge, ErrCodeLimitExceeded, "Text too long")
		} else if errors.Is(err, ants.ErrPoolOverload) {
			errs.text(http.StatusTooManyRequests, ErrCodeLimitExceeded, "Too many requests")
		} else {
			errs.err(http.StatusInternalServerError, ErrCodeUnknown, err)
		}
		return
	}

	var res *queue.PoolResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		errs.err(http.StatusGatewayTimeout, ErrCodeUnknown, ctx.Err())
		return
	}
	if res.Err != nil {
		errs.err(http.StatusInternalServerError, ErrCodeUnknown, res.Err)
		return
	}

	err = respondJson("httpCheckApi", r, w, &checkResponse{
		Text:         res.Result.Text,
		Enhancements: res.Result.Enhancements,
		Warnings:     res.Result.Warnings,
		SessionId:    req.SessionId,
	})
	if err != nil {
		errs.err(http.StatusInternalServerError, ErrCodeUnknown, err)
	}
}
