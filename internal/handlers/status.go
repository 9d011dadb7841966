package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusHandler answers the root health check with the bot's identity and
// the active transport mode.
type StatusHandler struct {
	logger *slog.Logger
	mode   string
}

func NewStatusHandler(log *slog.Logger, mode string) *StatusHandler {
	return &StatusHandler{
		logger: log.With(slog.String("handler", "status")),
		mode:   mode,
	}
}

func (h *StatusHandler) Register(e *echo.Echo) {
	e.GET("/", h.Status)
	e.HEAD("/health", h.StatusHead)
}

func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "online",
		"service": "ConectFin WhatsApp Bot",
		"mode":    h.mode,
	})
}

func (h *StatusHandler) StatusHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
