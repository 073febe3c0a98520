package domain

import "errors"

// Errors shared across the core and its adapters.
var (
	// ErrAuthFailed indicates the token exchange with the identity provider
	// failed. There is no automatic recovery; the next call may retry the
	// exchange from scratch.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrReportTimeout indicates a report job did not reach a terminal state
	// within the poll budget and was abandoned.
	ErrReportTimeout = errors.New("report poll budget exhausted")

	// ErrReportFailed indicates the remote service marked a report job FAILED
	// or CANCELLED. Re-polling the same job cannot change the outcome.
	ErrReportFailed = errors.New("report generation failed")

	// ErrMalformedReport indicates a downloaded report artifact could not be
	// decompressed or parsed.
	ErrMalformedReport = errors.New("malformed report artifact")

	// ErrUnknownStream indicates a stream name that is not in the catalog.
	ErrUnknownStream = errors.New("unknown stream")

	// ErrConnectorClosed indicates an operation on a closed connector.
	ErrConnectorClosed = errors.New("connector is closed")
)
