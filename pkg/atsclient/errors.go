package atsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-ats-backend/pkg/apperror"
)

// APIError is a failed call, carrying a message suitable for display.
type APIError struct {
	// StatusCode is 0 when no response was received.
	StatusCode    int
	Message       string
	ServerMessage string
	Errors        []apperror.FieldError
	RequestID     string
	Err           error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Timeout reports whether the call ran out of time.
func (e *APIError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func friendlyMessage(status int, serverMessage string) string {
	switch status {
	case http.StatusBadRequest:
		if serverMessage != "" {
			return serverMessage
		}
		return "Invalid candidate data. Please review the information"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "You do not have permission to perform this action"
	case http.StatusNotFound:
		return "The requested resource was not found"
	case http.StatusRequestEntityTooLarge:
		return "The CV file is too large. It must be smaller than 5 MB"
	case http.StatusInternalServerError:
		return "Server error. Please try again later"
	}
	if serverMessage != "" {
		return serverMessage
	}
	return fmt.Sprintf("Unexpected response from the server (%d)", status)
}

func transportError(err error) *APIError {
	msg := "Connection error with the server"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "The server took too long to respond"
	}
	return &APIError{Message: msg, Err: err}
}
