package duallang

import "fmt"

// StructuralError reports unbalanced or truncated markup in a fragment.
type StructuralError struct {
	Message string
	Offset  int // Byte offset in the fragment where the problem was detected
	Depth   int // Scope stack depth at that point
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at offset %d (depth %d): %s", e.Offset, e.Depth, e.Message)
}

// SentinelError reports a sentinel marker found where it must not be: in the
// input markup, or unpaired in a segmented fragment.
type SentinelError struct {
	Message string
	Offset  int
}

func (e *SentinelError) Error() string {
	return fmt.Sprintf("sentinel error at offset %d: %s", e.Offset, e.Message)
}

// FragmentError ties a failure to the fragment it happened in.
type FragmentError struct {
	FragmentID string
	Cause      error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("fragment %s: %v", e.FragmentID, e.Cause)
}

func (e *FragmentError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a gateway failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a document processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the gateway returned a different number of
// results than it was given. Substitution is refused rather than misaligned.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
