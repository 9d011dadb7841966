package ai

import (
	"context"
	"errors"
	"strings"
)

// Part is one piece of a model request: plain text or inline media bytes.
type Part struct {
	Text       string
	InlineData *Blob
}

type Blob struct {
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func DataPart(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// Provider generates a text completion for a system prompt plus user parts.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system string, parts []Part) (string, error)
}

// ErrUnavailable is surfaced when every model attempt failed on a transient
// condition. Its text reaches the user verbatim.
var ErrUnavailable = errors.New("Serviço de IA temporariamente indisponível. Tente novamente em alguns minutos.")

// IsTransient reports whether an error looks like a retryable provider
// condition. Matching is by substring because provider SDKs flatten HTTP
// status into the message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"503", "429", "overloaded", "UNAVAILABLE", "temporariamente indisponível"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// StripFences removes Markdown code-fence wrappers the model may add
// despite instructions to return raw JSON.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
