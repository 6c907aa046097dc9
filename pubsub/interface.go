package pubsub

import "context"

// ClosingValue - Sent over a subscribe channel when its closing
const ClosingValue = "<<CLOSING>>"

// TopicKeywordsUpdated - Published (with the keyword source name as the value) after keyword lists change.
// Postgres channel names can't contain dots, so this one uses underscores.
const TopicKeywordsUpdated = "postguard_keywords_updated"

// TopicCheck - Check requests for the moderator worker. Values are JSON CheckRequest objects.
const TopicCheck = "postguard.check"

// TopicResultPrefix - Prefix for per-session check results. See ResultTopic.
const TopicResultPrefix = "postguard.result."

// TopicFlagged - Every flagged verdict, regardless of where the check came from.
const TopicFlagged = "postguard.flagged"

func ResultTopic(sessionId string) string {
	return TopicResultPrefix + sessionId
}

type Client interface {
	Close() error

	Publish(ctx context.Context, topic string, val string) error
	Subscribe(ctx context.Context, topic string) (<-chan string, error)
	Unsubscribe(ctx context.Context, ch <-chan string) error
}
