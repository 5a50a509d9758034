package domain

import (
	"errors"
	"fmt"
)

// User-facing messages for failures that have a fixed wording.
const (
	MsgNoFoodDetected = "No food detected. Please try again."
	MsgRecipeNotFound = "Recipe not found"
	MsgNetworkError   = "Network error"
)

// Sentinel errors used across layers.
var (
	ErrEmptyDetection = errors.New(MsgNoFoodDetected)
	ErrRecipeNotFound = errors.New(MsgRecipeNotFound)
	ErrNoPushChannel  = errors.New("push channel not connected")
	ErrVoiceInert     = errors.New("speech recognition unavailable")
)

// TransportError means a request could not complete at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a completed request that came back with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", MsgNetworkError, e.StatusCode)
}

// ServerReportedError carries the server's own error text, verbatim.
type ServerReportedError struct {
	Message string
}

func (e *ServerReportedError) Error() string { return e.Message }

// TimeoutError is only produced when a request timeout is configured.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out", e.Op)
}

// UserMessage returns the text shown to the user for err. Server-reported
// and fixed-wording errors are passed through untouched; anything else is
// reduced to its own message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var srv *ServerReportedError
	if errors.As(err, &srv) {
		return srv.Message
	}
	switch {
	case errors.Is(err, ErrEmptyDetection):
		return MsgNoFoodDetected
	case errors.Is(err, ErrRecipeNotFound):
		return MsgRecipeNotFound
	}
	var te *TransportError
	if errors.As(err, &te) {
		return MsgNetworkError
	}
	return err.Error()
}
