// Package waha talks to a WAHA (WhatsApp HTTP API) gateway, used as the
// secondary transport behind the Cloud API.
package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

type Client struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	session    string
	apiKey     string
}

func NewClient(log *slog.Logger, cfg config.WAHAConfig) *Client {
	return &Client{
		log:        log.With(slog.String("service", "waha")),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		session:    cfg.Session,
		apiKey:     cfg.APIKey,
	}
}

func (c *Client) Name() string { return "waha" }

func chatID(to string) string {
	return wa.DigitsOnly(to) + "@c.us"
}

func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, "/api/sendText", map[string]any{
		"session": c.session,
		"chatId":  chatID(to),
		"text":    body,
	})
}

func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) error {
	return c.post(ctx, "/api/sendImage", map[string]any{
		"session": c.session,
		"chatId":  chatID(to),
		"file":    map[string]string{"url": imageURL},
		"caption": caption,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post %s status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		From     string `json:"from"`
		Body     string `json:"body"`
		HasMedia bool   `json:"hasMedia"`
		Media    *struct {
			URL      string `json:"url"`
			Mimetype string `json:"mimetype"`
			Filename string `json:"filename"`
		} `json:"media"`
		Timestamp int64 `json:"timestamp"`
	} `json:"payload"`
}

// ParseWebhook normalizes a WAHA message event into an Envelope. Non-message
// events yield ok=false.
func (c *Client) ParseWebhook(ctx context.Context, body []byte) (wa.Envelope, bool) {
	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.Warn("webhook payload not parseable", slog.Any("error", err))
		return wa.Envelope{}, false
	}
	if event.Event != "message" || event.Payload.From == "" {
		return wa.Envelope{}, false
	}

	sender := "+" + wa.DigitsOnly(strings.TrimSuffix(event.Payload.From, "@c.us"))
	env := wa.Envelope{
		Sender:    sender,
		Kind:      wa.KindText,
		Text:      event.Payload.Body,
		Timestamp: time.Unix(event.Payload.Timestamp, 0),
	}

	if event.Payload.HasMedia && event.Payload.Media != nil {
		env.Kind = kindFromMIME(event.Payload.Media.Mimetype)
		env.Caption = event.Payload.Body
		data, err := c.download(ctx, event.Payload.Media.URL)
		if err != nil {
			c.log.Warn("media download failed", slog.Any("error", err))
		} else {
			env.Media = &wa.Media{
				Data:     data,
				MIMEType: event.Payload.Media.Mimetype,
				Filename: event.Payload.Media.Filename,
			}
		}
	}

	return env, true
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func kindFromMIME(mimeType string) wa.Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return wa.KindImage
	case strings.HasPrefix(mimeType, "audio/"):
		return wa.KindAudio
	case strings.HasPrefix(mimeType, "video/"):
		return wa.KindVideo
	case mimeType != "":
		return wa.KindDocument
	}
	return wa.KindUnknown
}
