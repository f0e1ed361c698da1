package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/splunk-mcp/pkg/client"
	"github.com/usestring/splunk-mcp/pkg/search"
)

// Error codes for MCP tool responses.
const (
	ErrCodeAuthFailed   = "AUTH_FAILED"
	ErrCodeSearchFailed = "SEARCH_FAILED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeCancelled    = "CANCELLED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeSplunkError  = "SPLUNK_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapSearchError converts a session error to a coded error.
func WrapSearchError(err error) error {
	if err == nil {
		return nil
	}

	coded := &CodedError{Code: ErrCodeSplunkError, Message: err.Error(), Cause: err}

	var netErr net.Error
	switch {
	case errors.Is(err, search.ErrPollTimeout):
		coded.Code, coded.Message = ErrCodeTimeout, "search did not finish before the query timeout"
	case errors.Is(err, search.ErrCancelled):
		coded.Code, coded.Message = ErrCodeCancelled, "search was cancelled"
	case errors.As(err, &netErr) && netErr.Timeout():
		coded.Code, coded.Message = ErrCodeTimeout, "request timed out"
	case errors.Is(err, search.ErrAuthentication):
		coded.Code, coded.Message = ErrCodeAuthFailed, "unable to log into splunk"
	case errors.Is(err, search.ErrSubmission),
		errors.Is(err, search.ErrPoll),
		errors.Is(err, search.ErrDownload),
		errors.Is(err, search.ErrResultParse):
		coded.Code = ErrCodeSearchFailed
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			coded.Message = apiErr.Message
		} else {
			coded.Message = stageMessage(err)
		}
	}

	slog.Warn("splunk search error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

func stageMessage(err error) string {
	for _, stage := range []error{search.ErrSubmission, search.ErrPoll, search.ErrDownload, search.ErrResultParse} {
		if errors.Is(err, stage) {
			return stage.Error()
		}
	}
	return err.Error()
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
