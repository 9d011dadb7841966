// Package media hosts outbound media bytes at a publicly reachable URL.
// The Cloud API only accepts image sends by link, so anything generated
// locally has to be written somewhere a provider can fetch it from.
package media

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
)

type Service struct {
	log     *slog.Logger
	dir     string
	baseURL string
	clk     clock.Clock
}

func NewService(log *slog.Logger, cfg config.MediaConfig, clk clock.Clock) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Service{
		log:     log.With(slog.String("service", "media")),
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		clk:     clk,
	}, nil
}

// Dir is the on-disk directory the HTTP server exposes under /media.
func (s *Service) Dir() string { return s.dir }

// Save writes the bytes under a timestamped name and returns the public URL.
func (s *Service) Save(data []byte, name, mimeType string) (string, error) {
	ext := extensionFor(mimeType)
	filename := fmt.Sprintf("%d_%s%s", s.clk.Now().UnixMilli(), sanitize(name), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	url := s.baseURL + "/" + filename
	s.log.Info("media stored", slog.String("path", path), slog.String("url", url))
	return url, nil
}

func extensionFor(mimeType string) string {
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[len(exts)-1]
	}
	if idx := strings.Index(mimeType, "/"); idx >= 0 && idx+1 < len(mimeType) {
		return "." + mimeType[idx+1:]
	}
	return ".bin"
}

func sanitize(name string) string {
	if name == "" {
		return "media"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
