package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
)

// OpenAI is the fallback provider, speaking the chat-completions wire format.
// Images travel as data URLs; inline audio is not supported on this path.
type OpenAI struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewOpenAI(log *slog.Logger, cfg config.AIConfig) *OpenAI {
	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultOpenAIBaseURL
	}
	return &OpenAI{
		log:        log.With(slog.String("service", "ai"), slog.String("provider", "openai")),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
	}
}

func (o *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAI) Generate(ctx context.Context, system string, parts []Part) (string, error) {
	messages := []chatMessage{{Role: "system", Content: system}}
	for _, p := range parts {
		if p.InlineData == nil {
			messages = append(messages, chatMessage{Role: "user", Content: p.Text})
			continue
		}
		mimeType := p.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		if strings.HasPrefix(mimeType, "audio/") {
			return "", fmt.Errorf("inline audio not supported by openai fallback")
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType,
			base64.StdEncoding.EncodeToString(p.InlineData.Data))
		messages = append(messages, chatMessage{
			Role: "user",
			Content: []map[string]any{
				{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
			},
		})
	}

	body, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat completions: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	o.log.Debug("completion ok", slog.String("model", o.model))
	return StripFences(parsed.Choices[0].Message.Content), nil
}
