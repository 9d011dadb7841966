package waba

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []webhookMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image    *mediaRef `json:"image"`
	Audio    *mediaRef `json:"audio"`
	Document *mediaRef `json:"document"`
	Video    *mediaRef `json:"video"`
}

type mediaRef struct {
	ID       string `json:"id"`
	MIMEType string `json:"mime_type"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

// ParseWebhook normalizes a Cloud API event into an Envelope. Status-only
// events yield ok=false. For media kinds the bytes are downloaded here; a
// failed download leaves Media nil so the pipeline can degrade to text.
func (c *Client) ParseWebhook(ctx context.Context, body []byte) (wa.Envelope, bool) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.log.Warn("webhook payload not parseable", slog.Any("error", err))
		return wa.Envelope{}, false
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return wa.Envelope{}, false
	}
	messages := payload.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return wa.Envelope{}, false
	}
	msg := messages[0]

	env := wa.Envelope{
		Sender:    "+" + msg.From,
		Kind:      kindOf(msg.Type),
		Timestamp: parseTimestamp(msg.Timestamp),
	}
	if msg.Text != nil {
		env.Text = msg.Text.Body
	}

	if ref := msg.mediaRef(); ref != nil {
		env.Caption = ref.Caption
		if env.Text == "" {
			env.Text = ref.Caption
		}
		data, mimeType, err := c.DownloadMedia(ctx, ref.ID)
		if err != nil {
			c.log.Warn("media download failed",
				slog.String("media_id", ref.ID),
				slog.Any("error", err),
			)
		} else {
			if mimeType == "" {
				mimeType = ref.MIMEType
			}
			env.Media = &wa.Media{Data: data, MIMEType: mimeType, Filename: ref.Filename}
		}
	}

	return env, true
}

func (m webhookMessage) mediaRef() *mediaRef {
	switch {
	case m.Image != nil:
		return m.Image
	case m.Audio != nil:
		return m.Audio
	case m.Document != nil:
		return m.Document
	case m.Video != nil:
		return m.Video
	}
	return nil
}

func kindOf(t string) wa.Kind {
	switch t {
	case "text":
		return wa.KindText
	case "image":
		return wa.KindImage
	case "audio":
		return wa.KindAudio
	case "document":
		return wa.KindDocument
	case "video":
		return wa.KindVideo
	}
	return wa.KindUnknown
}

func parseTimestamp(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(secs, 0)
}
