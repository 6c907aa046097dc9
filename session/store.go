package session

import (
	"context"

	"github.com/matrix-org/postguard/pipeline"
)

// Store - Holds the most recent pipeline trace for each session. Traces expire; a Store is never an archive.
type Store interface {
	Close() error

	// Put - Replaces the session's trace, resetting its expiry.
	Put(ctx context.Context, sessionId string, trace *pipeline.Trace) error
	// Get - Returns nil (and no error) if the session has no trace or it expired.
	Get(ctx context.Context, sessionId string) (*pipeline.Trace, error)
	// PurgeExpired - Drops expired traces. Backends which expire on their own may do nothing.
	PurgeExpired(ctx context.Context) error
}
