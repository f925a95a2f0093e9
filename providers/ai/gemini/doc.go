// Package gemini implements the ai.Provider interface for Google's Gemini
// generative-language API (generateContent endpoint).
//
// Authentication uses the x-goog-api-key header. Requests carry the composed
// system instruction, the user prompt (optionally with an inline image), a
// fixed safety-filter configuration, and generation parameters. Upstream
// failures are classified into the package error variables (ErrRateLimited,
// ErrInvalidRequest, ErrBlocked, ErrEmptyResponse) so callers can map them to
// HTTP statuses with errors.Is.
package gemini
