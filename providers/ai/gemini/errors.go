package gemini

import "errors"

// Failure classes for upstream generateContent calls. The HTTP layer maps
// these to response statuses with errors.Is instead of matching on message
// text.
var (
	// ErrRateLimited is returned when the API answers HTTP 429.
	ErrRateLimited = errors.New("gemini: rate limited by upstream API")

	// ErrInvalidRequest is returned when the API answers HTTP 400,
	// i.e. the request payload was rejected by upstream validation.
	ErrInvalidRequest = errors.New("gemini: request rejected by upstream API")

	// ErrBlocked is returned when the prompt was refused by the content
	// filter (promptFeedback.blockReason is set).
	ErrBlocked = errors.New("gemini: prompt blocked by safety filter")

	// ErrEmptyResponse is returned when a successful response carries no
	// candidate text.
	ErrEmptyResponse = errors.New("gemini: empty response from API")
)
