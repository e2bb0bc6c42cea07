// ABOUTME: Structured error type carrying the layer, component and operation of a failure
// ABOUTME: Run failures are wrapped in it before they reach the reporter and heartbeat
package errors

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
)

// Error codes used for fatal run errors.
const (
	CodeFetch        = "FETCH_ERROR"
	CodeParse        = "PARSE_ERROR"
	CodeArticle      = "ARTICLE_ERROR"
	CodeVerification = "VERIFICATION_ERROR"
	CodeOutput       = "OUTPUT_ERROR"
	CodeConfig       = "CONFIG_ERROR"
	CodeTimeout      = "TIMEOUT_ERROR"
	CodeCancelled    = "CANCELLED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppContextError represents an error with context information.
type AppContextError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Layer     string         `json:"layer,omitempty"`     // handler, service, driver, cache
	Component string         `json:"component,omitempty"` // e.g. fetcher, assembler
	Operation string         `json:"operation,omitempty"`
	Cause     error          `json:"-"`
	Context   map[string]any `json:"context,omitempty"`
	ErrorID   string         `json:"error_id"`
}

func (e *AppContextError) Error() string {
	var prefix string
	if e.Layer != "" && e.Component != "" && e.Operation != "" {
		prefix = fmt.Sprintf("[%s:%s:%s] ", e.Layer, e.Component, e.Operation)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

func (e *AppContextError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps error codes to the status served for the failure.
func (e *AppContextError) HTTPStatusCode() int {
	switch e.Code {
	case CodeFetch:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeParse, CodeArticle, CodeVerification:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether a later run can be expected to succeed.
func (e *AppContextError) IsRetryable() bool {
	switch e.Code {
	case CodeFetch, CodeTimeout:
		return true
	default:
		return false
	}
}

// Attributes flattens the error into string pairs for reporting.
func (e *AppContextError) Attributes() map[string]string {
	attrs := map[string]string{
		"error.code":      e.Code,
		"error.id":        e.ErrorID,
		"error.retryable": fmt.Sprint(e.IsRetryable()),
	}
	if e.Layer != "" {
		attrs["error.layer"] = e.Layer
	}
	if e.Component != "" {
		attrs["error.component"] = e.Component
	}
	if e.Operation != "" {
		attrs["error.operation"] = e.Operation
	}
	for k, v := range e.Context {
		attrs["error.context."+k] = fmt.Sprint(v)
	}
	return attrs
}

// generateErrorID generates a short unique error ID for log correlation
func generateErrorID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

func NewAppContextError(
	code, message, layer, component, operation string,
	cause error,
	context map[string]any,
) *AppContextError {
	if context == nil {
		context = make(map[string]any)
	}

	return &AppContextError{
		Code:      code,
		Message:   message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     cause,
		Context:   context,
		ErrorID:   generateErrorID(),
	}
}
