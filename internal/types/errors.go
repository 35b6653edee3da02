package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrPaginationNotFound = errors.New("pagination control not found")
	ErrNodeNotFound       = errors.New("expected node not found")
	ErrEmptyResponse      = errors.New("empty response body")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrUnknownCategory    = errors.New("unknown category")
)

// FetchError wraps errors that occur while fetching or navigating to a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// PaginationError reports a category root whose last page index could not be read.
type PaginationError struct {
	URL  string
	Href string
	Err  error
}

func (e *PaginationError) Error() string {
	if e.Href != "" {
		return fmt.Sprintf("pagination error for %s (href=%q): %v", e.URL, e.Href, e.Err)
	}
	return fmt.Sprintf("pagination error for %s: %v", e.URL, e.Err)
}

func (e *PaginationError) Unwrap() error { return e.Err }

// ExtractionError wraps errors that occur while reading a detail page.
type ExtractionError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while writing or reading reports.
type StorageError struct {
	Backend string
	Path    string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage error (%s, %s): %v", e.Backend, e.Path, e.Err)
	}
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the record pipeline.
type PipelineError struct {
	Stage  string
	Record *Record
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a transient fetch failure.
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.IsRetryable()
	}
	return false
}
