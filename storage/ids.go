package storage

import (
	"github.com/segmentio/ksuid"
)

// NextSessionId - A new session ID for checks which didn't bring their own. IDs are KSUIDs: 27 URL-safe
// characters that sort roughly by creation time, so they're safe to use in pubsub topic names.
func NextSessionId() string {
	return ksuid.New().String()
}
