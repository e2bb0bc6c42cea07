package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse is served on /health.
type HealthResponse struct {
	Status string    `json:"status"`
	Run    RunStatus `json:"run"`
}

// HealthHandler reports the status of the latest run.
type HealthHandler struct {
	jobs JobHandler
}

func NewHealthHandler(jobs JobHandler) *HealthHandler {
	return &HealthHandler{jobs: jobs}
}

// CheckHealth answers 503 until a run has succeeded. A failed run after
// that reports "degraded" with 200 since the last good feed is still served.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	st := h.jobs.Status()

	switch {
	case st.LastSuccess == nil:
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "starting", Run: st})
	case st.LastError != "":
		return c.JSON(http.StatusOK, HealthResponse{Status: "degraded", Run: st})
	default:
		return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Run: st})
	}
}
