package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
)

const geminiMaxRetries = 2

// Gemini is the primary provider. It retries transient failures internally,
// switching from the primary to the fallback model after the first attempt.
type Gemini struct {
	log      *slog.Logger
	client   *genai.Client
	primary  string
	fallback string
	sleep    func(time.Duration)
}

func NewGemini(ctx context.Context, log *slog.Logger, cfg config.AIConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		log:      log.With(slog.String("service", "ai"), slog.String("provider", "gemini")),
		client:   client,
		primary:  cfg.ModelPrimary,
		fallback: cfg.ModelFallback,
		sleep:    time.Sleep,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, system string, parts []Part) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
		model := g.primary
		if attempt > 0 {
			model = g.fallback
		}

		text, err := g.generate(ctx, model, system, parts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		g.log.Warn("model call failed",
			slog.String("model", model),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)

		if !IsTransient(err) {
			return "", err
		}
		if attempt < geminiMaxRetries {
			g.sleep(time.Second)
		}
	}
	g.log.Error("all model attempts exhausted", slog.Any("error", lastErr))
	return "", ErrUnavailable
}

func (g *Gemini) generate(ctx context.Context, model, system string, parts []Part) (string, error) {
	genParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			genParts = append(genParts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data},
			})
			continue
		}
		genParts = append(genParts, &genai.Part{Text: p.Text})
	}

	contents := []*genai.Content{{Role: "user", Parts: genParts}}
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return StripFences(text), nil
}
