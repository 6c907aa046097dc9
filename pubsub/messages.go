package pubsub

// CheckRequest - The body of a TopicCheck message.
type CheckRequest struct {
	SessionId string `json:"session_id"`
	Text      string `json:"text"`
}

// CheckResult - The body of a ResultTopic message.
type CheckResult struct {
	SessionId    string   `json:"session_id"`
	Text         string   `json:"text"`
	Enhancements []string `json:"enhancements"`
	Warnings     []string `json:"warnings"`
	Error        string   `json:"error,omitempty"`
}

// FlaggedVerdict - The body of a TopicFlagged message.
type FlaggedVerdict struct {
	SessionId  string   `json:"session_id"`
	Text       string   `json:"text"`
	MaskedText string   `json:"masked_text"`
	Labels     []string `json:"labels"`
	Warnings   []string `json:"warnings"`
}
