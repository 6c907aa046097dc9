package api

import (
	"log"
	"net/http"
	"time"

	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/session"
)

type Config struct {
	// Optional. If set, the check and tokenize APIs require it as a bearer token.
	ApiKey string

	// How long a check may wait for the pool before giving up.
	CheckTimeout time.Duration
}

type Api struct {
	pool         *queue.Pool
	sessions     session.Store
	tokenizers   queue.TokenizerProvider
	apiKey       string
	checkTimeout time.Duration
}

func NewApi(config *Config, pool *queue.Pool, sessions session.Store, tokenizers queue.TokenizerProvider) (*Api, error) {
	checkTimeout := config.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = 10 * time.Second
	}
	return &Api{
		pool:         pool,
		sessions:     sessions,
		tokenizers:   tokenizers,
		apiKey:       config.ApiKey,
		checkTimeout: checkTimeout,
	}, nil
}

func (a *Api) httpRequestHandler(upstream func(api *Api, w http.ResponseWriter, r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream(a, w, r)
	})
}

// httpAuthenticatedRequestHandler - Requires the API key as a bearer token. When no API key is configured, every
// request is let through.
func (a *Api) httpAuthenticatedRequestHandler(upstream func(api *Api, w http.ResponseWriter, r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+a.apiKey {
			defer metrics.RecordHttpResponse(r.Method, "httpAuthenticatedRequestHandler", http.StatusUnauthorized)
			httpError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not allowed")
			return
		}

		upstream(a, w, r)
	})
}

func (a *Api) BindTo(mux *http.ServeMux) error {
	mux.Handle("/", a.httpRequestHandler(httpCatchAll))
	mux.Handle("/health", a.httpRequestHandler(httpHealth))
	mux.Handle("/ready", a.httpRequestHandler(httpReady))

	if a.apiKey == "" {
		log.Println("No API key configured: the check API is open to everyone")
	}
	mux.Handle("/api/v1/check", a.httpAuthenticatedRequestHandler(httpCheckApi))
	mux.Handle("/api/v1/sessions/{id}/details", a.httpAuthenticatedRequestHandler(httpSessionDetailsApi))
	mux.Handle("/api/v1/tokenize", a.httpAuthenticatedRequestHandler(httpTokenizeApi))

	return nil
}
