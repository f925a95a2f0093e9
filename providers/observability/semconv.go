package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gemini-2.0-flash")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestAction is the dispatched action name (verifyPassword, chat)
	AttrRequestAction = "request.action"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Pipeline Attributes ---

const (
	// AttrPipelineStage is the name of the pipeline stage being executed
	AttrPipelineStage = "pipeline.stage"

	// AttrPipelineStagePolicy is the failure policy of the stage ("fail_fast", "degrade")
	AttrPipelineStagePolicy = "pipeline.stage.policy"
)

// --- Memory Selection Attributes ---

const (
	// AttrMemoryCandidates is the number of memories offered to the selector
	AttrMemoryCandidates = "memory.candidates"

	// AttrMemorySelected is the number of memories packed into the context
	AttrMemorySelected = "memory.selected"

	// AttrMemoryBudgetChars is the configured context budget in characters
	AttrMemoryBudgetChars = "memory.budget_chars"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanChatRequest is the span name for a full chat request
	SpanChatRequest = "chat.request"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventTokensReceived marks when tokens are received from the LLM
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// EventStageDegraded marks a pipeline stage that failed and was skipped
	EventStageDegraded = "pipeline.stage.degraded"
)

// --- Metric Names ---

const (
	// MetricRequestCount is the counter for handled HTTP requests
	MetricRequestCount = "promptrelay.request.count"

	// MetricRequestDuration is the histogram for request duration
	MetricRequestDuration = "promptrelay.request.duration"

	// MetricUpstreamTokensTotal is the counter for total upstream tokens
	MetricUpstreamTokensTotal = "promptrelay.upstream.tokens.total"
)
