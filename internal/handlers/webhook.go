package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

// processTimeout bounds one message's full pipeline: download, model calls
// with retries, persistence and the reply.
const processTimeout = 2 * time.Minute

// WebhookSource decodes a provider-specific webhook body into the common
// envelope. ok=false means the event carries no inbound message (status
// updates, read receipts).
type WebhookSource interface {
	ParseWebhook(ctx context.Context, body []byte) (wa.Envelope, bool)
}

// Processor runs the message pipeline. Satisfied by the router.
type Processor interface {
	Handle(ctx context.Context, env wa.Envelope)
}

type WhatsAppHandler struct {
	logger      *slog.Logger
	source      WebhookSource
	processor   Processor
	verifyToken string
}

func NewWhatsAppHandler(log *slog.Logger, source WebhookSource, processor Processor, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		logger:      log.With(slog.String("handler", "whatsapp")),
		source:      source,
		processor:   processor,
		verifyToken: verifyToken,
	}
}

func (h *WhatsAppHandler) Register(e *echo.Echo) {
	e.GET("/webhook/whatsapp", h.Verify)
	e.POST("/webhook/whatsapp", h.Receive)
}

// Verify answers Meta's subscription handshake: echo the challenge when the
// token matches, 403 otherwise.
func (h *WhatsAppHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		h.logger.Info("webhook verified")
		return c.String(http.StatusOK, challenge)
	}
	h.logger.Warn("webhook verification rejected", slog.String("mode", mode))
	return c.NoContent(http.StatusForbidden)
}

// Receive acks immediately and processes in the background. The provider
// retries deliveries that do not get a fast 200, which would duplicate
// entries if the pipeline ran inline.
func (h *WhatsAppHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("webhook body read failed", slog.Any("error", err))
		return c.NoContent(http.StatusOK)
	}

	go func() {
		// Recover() only guards the request goroutine; this one outlives it.
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("message processing panicked", slog.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		env, ok := h.source.ParseWebhook(ctx, body)
		if !ok {
			return
		}
		h.processor.Handle(ctx, env)
	}()

	return c.NoContent(http.StatusOK)
}
