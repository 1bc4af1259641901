package domain

import "errors"

var (
	// ErrMissingAPIKey signals that a completion call was attempted without a
	// configured API key. Checked before any network traffic.
	ErrMissingAPIKey = errors.New("llm api key is not configured")

	// ErrBadSelection signals a malformed or out-of-range reply from the
	// article-selection prompt. Treated as a scrape failure, never a crash.
	ErrBadSelection = errors.New("malformed selection reply")
)
