// ABOUTME: Typed provider failures for embedding and completion calls
// ABOUTME: Carries the provider message internally; never leaked to callers
package llm

import "fmt"

// Op identifies which provider operation failed.
type Op string

const (
	OpEmbedding  Op = "embedding"
	OpCompletion Op = "completion"
)

// ProviderError is an upstream service failure or malformed upstream
// response. It is surfaced to end users as a generic 5xx-equivalent; the
// wrapped provider message is for internal logs only.
type ProviderError struct {
	Op  Op
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
