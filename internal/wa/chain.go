package wa

import (
	"context"
	"errors"
	"log/slog"
)

// Chain is a Transport that tries an ordered list of transports until one
// delivers, mirroring the provider fallback used for model calls.
type Chain struct {
	log        *slog.Logger
	transports []Transport
}

func NewChain(log *slog.Logger, transports ...Transport) *Chain {
	return &Chain{
		log:        log.With(slog.String("service", "wa")),
		transports: transports,
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) SendText(ctx context.Context, to, body string) error {
	return c.send(ctx, func(t Transport) error {
		return t.SendText(ctx, to, body)
	})
}

func (c *Chain) SendImage(ctx context.Context, to, imageURL, caption string) error {
	return c.send(ctx, func(t Transport) error {
		return t.SendImage(ctx, to, imageURL, caption)
	})
}

func (c *Chain) send(_ context.Context, do func(Transport) error) error {
	if len(c.transports) == 0 {
		return errors.New("no transports configured")
	}
	var lastErr error
	for i, t := range c.transports {
		if err := do(t); err != nil {
			lastErr = err
			if i < len(c.transports)-1 {
				c.log.Warn("transport failed, trying next",
					slog.String("transport", t.Name()),
					slog.String("next", c.transports[i+1].Name()),
					slog.Any("error", err),
				)
			}
			continue
		}
		return nil
	}
	return lastErr
}
