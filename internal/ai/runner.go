package ai

import (
	"context"
	"errors"
	"log/slog"
)

// Runner tries an ordered list of providers until one succeeds. Any failure
// of an earlier provider moves on to the next; the last error wins when the
// whole chain is exhausted.
type Runner struct {
	log       *slog.Logger
	providers []Provider
}

func NewRunner(log *slog.Logger, providers ...Provider) *Runner {
	return &Runner{
		log:       log.With(slog.String("service", "ai")),
		providers: providers,
	}
}

func (r *Runner) Generate(ctx context.Context, system string, parts []Part) (string, error) {
	if len(r.providers) == 0 {
		return "", errors.New("no llm providers configured")
	}

	var lastErr error
	for i, p := range r.providers {
		out, err := p.Generate(ctx, system, parts)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if i < len(r.providers)-1 {
			r.log.Warn("provider failed, trying next",
				slog.String("provider", p.Name()),
				slog.String("next", r.providers[i+1].Name()),
				slog.Any("error", err),
			)
		}
	}
	return "", lastErr
}
