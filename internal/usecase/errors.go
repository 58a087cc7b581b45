package usecase

import (
	"fmt"

	"resource-finder/internal/pkg/errs"
)

var (
	ErrSubjectRequired = errs.New("subject is required")
	ErrUpstreamFailed  = errs.New("upstream model call failed")
	ErrParseFailed     = errs.New("model reply could not be parsed")
)

// UpstreamError is returned by ChatCompleter implementations when the upstream API
// answered with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}

// ParseError keeps the cleaned reply next to the decoder error for diagnosis.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return "parse model reply: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
