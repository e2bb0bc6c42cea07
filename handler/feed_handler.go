package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/TheStalwart/phoronix-rss-augmented/service"
)

// FeedHandler serves the augmented feed written by the latest run.
type FeedHandler struct {
	outputPath string
}

func NewFeedHandler(outputPath string) *FeedHandler {
	return &FeedHandler{outputPath: outputPath}
}

func (h *FeedHandler) ServeFeed(c echo.Context) error {
	data, err := os.ReadFile(h.outputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "feed has not been generated yet")
		}
		return err
	}
	return c.Blob(http.StatusOK, service.RSSMediaType+"; charset=utf-8", data)
}
