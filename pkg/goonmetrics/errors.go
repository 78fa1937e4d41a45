package goonmetrics

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher.
var (
	// ErrDuplicateQuote is returned when a market's responses contain
	// more than one quote for the same item id. The API is expected to
	// return exactly one entry per id; duplicates indicate corrupt data.
	ErrDuplicateQuote = errors.New("duplicate quote for item id")
)

// ErrorClass classifies request failures for logging and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents malformed response bodies.
	ErrorClassParse ErrorClass = "parse"
)

// APIError is a failed goonmetrics request with classification context.
type APIError struct {
	StationID  string
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("goonmetrics %s error (station %s, status %d): %s: %v",
			e.Class, e.StationID, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("goonmetrics %s error (station %s, status %d): %s",
		e.Class, e.StationID, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
