package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	apperrors "github.com/TheStalwart/phoronix-rss-augmented/utils/errors"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := map[string]struct {
		header   string
		wantSame bool
	}{
		"incoming ID is kept":      {header: "req-123", wantSame: true},
		"missing ID is generated":  {header: ""},
		"oversized ID is replaced": {header: strings.Repeat("x", 200)},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			var seen string
			e.Use(RequestIDMiddleware())
			e.GET("/health", func(c echo.Context) error {
				seen = logger.RequestID(c.Request().Context())
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderXRequestID, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(echo.HeaderXRequestID)
			require.NotEmpty(t, got)
			assert.Equal(t, got, seen)
			if tc.wantSame {
				assert.Equal(t, tc.header, got)
			} else {
				assert.NotEqual(t, tc.header, got)
			}
		})
	}
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := map[string]struct {
		err            error
		expectedStatus int
		expectedCode   string
		hiddenMessage  string
	}{
		"not found keeps its message": {
			err:            echo.NewHTTPError(http.StatusNotFound, "feed has not been generated yet"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "HTTP_ERROR",
		},
		"fetch error maps to bad gateway": {
			err: apperrors.Classify(&domain.FetchError{URL: "https://www.phoronix.com/rss.php", StatusCode: 503, Attempts: 3},
				"service", "augment", "run"),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   apperrors.CodeFetch,
			hiddenMessage:  "fetch failed",
		},
		"unknown error hides details": {
			err:            errors.New("open /srv/feed.xml: permission denied"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperrors.CodeInternal,
			hiddenMessage:  "permission denied",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = CustomHTTPErrorHandler(testLogger())
			e.GET("/feed.xml", func(echo.Context) error { return tc.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

			assert.Equal(t, tc.expectedStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			if tc.hiddenMessage != "" {
				assert.NotContains(t, body.Error.Message, tc.hiddenMessage)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	e := echo.New()
	e.HTTPErrorHandler = CustomHTTPErrorHandler(testLogger())
	e.Use(LoggingMiddleware(log, "/health"))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/feed.xml", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "feed has not been generated yet")
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len(), "health probes are logged at debug level")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "/feed.xml", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status_code"])
	assert.Equal(t, "access", entry["log_type"])
}
