package amazonads

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/adlumen/amzads/internal/core/domain"
)

// Error types for Amazon Ads API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("amazonads: unauthorised")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("amazonads: rate limited")

	// ErrBadRequest indicates a malformed request or a permission issue.
	ErrBadRequest = errors.New("amazonads: client error")

	// ErrServerError indicates a server-side error from the Ads API.
	ErrServerError = errors.New("amazonads: server error")

	// ErrInvalidRequest indicates a request that could not be constructed,
	// e.g. a malformed URL. Deterministic, never retried.
	ErrInvalidRequest = errors.New("amazonads: invalid request")
)

// maxBodyExcerpt bounds how much response body an error carries.
const maxBodyExcerpt = 512

// APIError carries an HTTP status and a body excerpt for diagnosis.
// It unwraps to the sentinel matching its status class.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return WrapError(e.StatusCode)
}

// newAPIError builds an APIError with the body excerpt truncated.
func newAPIError(statusCode int, body []byte) *APIError {
	excerpt := string(body)
	if len(excerpt) > maxBodyExcerpt {
		excerpt = excerpt[:maxBodyExcerpt]
	}
	return &APIError{StatusCode: statusCode, Body: excerpt}
}

// WrapError converts an HTTP status code to an appropriate sentinel error.
func WrapError(statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorised
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode >= 500:
		return ErrServerError
	case statusCode >= 400:
		return ErrBadRequest
	default:
		return nil
	}
}

// IsRetryable checks if the status code indicates a transient condition.
// 401 is deliberately not retryable: a rejected token will not be accepted
// on a replay of the same request.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// ReportTimeoutError reports a job abandoned after the poll budget ran out.
type ReportTimeoutError struct {
	JobID      string
	LastStatus ReportStatus
	Attempts   int
}

func (e *ReportTimeoutError) Error() string {
	return fmt.Sprintf("report %s still %s after %d polls", e.JobID, e.LastStatus, e.Attempts)
}

func (e *ReportTimeoutError) Unwrap() error {
	return domain.ErrReportTimeout
}

// ReportFailedError reports a job the remote service marked FAILED or
// CANCELLED.
type ReportFailedError struct {
	JobID  string
	Status ReportStatus
	Reason string
}

func (e *ReportFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("report %s ended %s", e.JobID, e.Status)
	}
	return fmt.Sprintf("report %s ended %s: %s", e.JobID, e.Status, e.Reason)
}

func (e *ReportFailedError) Unwrap() error {
	return domain.ErrReportFailed
}
