package domain

import "fmt"

// The error kinds below mirror the failure policy of the turn pipeline:
// validation errors reject the request before persistence, store errors are
// non-fatal inside a turn but surfaced for plain CRUD operations, model-call
// errors trigger the fixed fallback reply, and model-parse errors trigger the
// no-risk default inside the LLM adapter. None of them terminate the process.

// ValidationError reports bad input shape or range. Surfaced as a client error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence or read failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ModelCallError means the language model adapter was unreachable
// (network, timeout, quota).
type ModelCallError struct {
	Op  string
	Err error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Op, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// ModelParseError means the model answered but its structured output was
// unusable. Handled inside the adapter; callers never see it as an error.
type ModelParseError struct {
	Raw string
	Err error
}

func (e *ModelParseError) Error() string {
	return fmt.Sprintf("model output unparseable: %v", e.Err)
}

func (e *ModelParseError) Unwrap() error { return e.Err }
