package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/media"
)

// MediaHandler serves the stored media files so image sends have a public
// URL to point at.
type MediaHandler struct {
	logger *slog.Logger
	dir    string
}

func NewMediaHandler(log *slog.Logger, store *media.Service) *MediaHandler {
	return &MediaHandler{
		logger: log.With(slog.String("handler", "media")),
		dir:    store.Dir(),
	}
}

func (h *MediaHandler) Register(e *echo.Echo) {
	e.Static("/media", h.dir)
}
