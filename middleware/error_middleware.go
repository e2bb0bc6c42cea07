// ABOUTME: Centralized error handling for the serve mode endpoints
// ABOUTME: Converts errors to JSON responses and hides internal details of 5xx errors
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/TheStalwart/phoronix-rss-augmented/utils/errors"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

const genericMessage = "An unexpected error occurred. Please try again later."

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ErrorID   string `json:"error_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable"`
}

// CustomHTTPErrorHandler creates the HTTP error handler for Echo.
func CustomHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		requestID := logger.RequestID(ctx)

		var (
			status  int
			detail  ErrorDetail
			appErr  *apperrors.AppContextError
			echoErr *echo.HTTPError
		)

		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPStatusCode()
			detail = ErrorDetail{
				Code:      appErr.Code,
				Message:   appErr.Message,
				ErrorID:   appErr.ErrorID,
				Retryable: appErr.IsRetryable(),
			}
			if status >= http.StatusInternalServerError {
				detail.Message = genericMessage
			}
			log.ErrorContext(ctx, "application error",
				"error_id", appErr.ErrorID,
				"code", appErr.Code,
				"layer", appErr.Layer,
				"component", appErr.Component,
				"operation", appErr.Operation,
				"cause", appErr.Cause)

		case errors.As(err, &echoErr):
			status = echoErr.Code
			msg := http.StatusText(status)
			if m, ok := echoErr.Message.(string); ok {
				msg = m
			}
			if status >= http.StatusInternalServerError {
				msg = genericMessage
			}
			detail = ErrorDetail{
				Code:      "HTTP_ERROR",
				Message:   msg,
				Retryable: apperrors.IsRetryableHTTPStatus(status),
			}
			log.WarnContext(ctx, "HTTP error", "status", status, "error", err)

		default:
			status = http.StatusInternalServerError
			detail = ErrorDetail{Code: apperrors.CodeInternal, Message: genericMessage}
			log.ErrorContext(ctx, "unhandled error", "error", err)
		}

		detail.RequestID = requestID

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, ErrorResponse{Error: detail})
		}
		if err != nil {
			log.ErrorContext(ctx, "failed to send error response", "error", err)
		}
	}
}
