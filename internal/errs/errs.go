// Package errs collects the sentinel error kinds shared across the
// retrieval, memory, tool, and reasoning layers so callers can classify
// failures with errors.Is instead of string matching.
package errs

import "errors"

var (
	// ErrConfig signals a missing or invalid configuration value.
	ErrConfig = errors.New("config error")
	// ErrUpstreamUnavailable signals a downstream dependency (vector DB,
	// LLM provider, database) returned a 5xx or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamRejected signals a downstream dependency returned a 4xx;
	// callers should treat the operation as having no result rather than
	// retrying.
	ErrUpstreamRejected = errors.New("upstream rejected request")
	// ErrToolNotFound signals a tool name that is not registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolExecution signals a tool ran but failed; it is swallowed into
	// the ReAct observation rather than aborting the loop.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrRateLimited signals the per-request tool-call budget was
	// exceeded.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidArgs signals a tool call whose arguments failed schema
	// validation.
	ErrInvalidArgs = errors.New("invalid tool arguments")
	// ErrCascadeExhausted signals every LLM tier failed.
	ErrCascadeExhausted = errors.New("llm cascade exhausted")
	// ErrNotAuthorized signals an admin-gated tool called without the
	// required user id.
	ErrNotAuthorized = errors.New("not authorized")
)
