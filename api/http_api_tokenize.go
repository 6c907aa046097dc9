package api

import (
	"errors"
	"net/http"

	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/tokenizer"
)

type tokenizeRequest struct {
	Text *string `json:"text"`
}

type tokenizeResponse struct {
	Tokens []tokenizer.Token `json:"tokens"`
}

func httpTokenizeApi(api *Api, w http.ResponseWriter, r *http.Request) {
	metrics.RecordHttpRequest(r.Method, "httpTokenizeApi")
	t := metrics.StartRequestTimer(r.Method, "httpTokenizeApi")
	defer t.ObserveDuration()

	errs := newErrorResponder("httpTokenizeApi", w, r)

	if r.Method != http.MethodPost {
		errs.text(http.StatusMethodNotAllowed, ErrCodeUnrecognized, "Method not allowed")
		return
	}

	req := &tokenizeRequest{}
	if err := parseJsonBody(req, r.Body); err != nil {
		errs.err(http.StatusBadRequest, ErrCodeBadJson, err)
		return
	}
	if req.Text == nil {
		errs.text(http.StatusBadRequest, ErrCodeBadJson, "Missing text")
		return
	}

	tok := api.tokenizers.Tokenizer()
	if tok == nil {
		errs.err(http.StatusServiceUnavailable, ErrCodeUnknown, errors.New("no keywords loaded"))
		return
	}

	err := respondJson("httpTokenizeApi", r, w, &tokenizeResponse{
		Tokens: tok.Tokenize(*req.Text),
	})
	if err != nil {
		errs.err(http.StatusInternalServerError, ErrCodeUnknown, err)
	}
}
