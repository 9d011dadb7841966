// Package wa holds the transport-independent message model and the outbound
// transport abstraction. Concrete clients live in the waba and waha
// subpackages.
package wa

import (
	"context"
	"time"
)

type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindUnknown  Kind = "unknown"
)

type Media struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Envelope is the canonical inbound message, independent of which transport
// delivered it. Media is set only for media kinds, and may be nil even then
// when the download failed; downstream falls back to text-only handling.
type Envelope struct {
	Sender    string
	Kind      Kind
	Text      string
	Caption   string
	Media     *Media
	Timestamp time.Time
}

func (e Envelope) HasMedia() bool {
	return e.Media != nil && len(e.Media.Data) > 0
}

// Transport sends outbound messages. Image sends take a publicly reachable
// URL; hosting the bytes is the media store's job.
type Transport interface {
	Name() string
	SendText(ctx context.Context, to, body string) error
	SendImage(ctx context.Context, to, imageURL, caption string) error
}
