package waba_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa/waba"
)

func newTestClient(baseURL string) *waba.Client {
	return waba.NewClient(slog.Default(), config.WABAConfig{
		BaseURL:       baseURL,
		PhoneNumberID: "123456",
		AccessToken:   "token-abc",
		VerifyToken:   "verify-xyz",
	})
}

func TestSendText_PayloadShape(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/123456/messages", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	require.NoError(t, client.SendText(context.Background(), "+55 (32) 99147-3412", "Lançamento criado!"))

	assert.Equal(t, "Bearer token-abc", auth)
	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "5532991473412", got["to"])
	assert.Equal(t, "text", got["type"])
	text := got["text"].(map[string]any)
	assert.Equal(t, "Lançamento criado!", text["body"])
}

func TestSendImage_PayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	require.NoError(t, client.SendImage(context.Background(), "5511999990000",
		"https://example.com/media/grafico.png", "Fluxo de caixa"))

	assert.Equal(t, "image", got["type"])
	image := got["image"].(map[string]any)
	assert.Equal(t, "https://example.com/media/grafico.png", image["link"])
	assert.Equal(t, "Fluxo de caixa", image["caption"])
}

func TestSendText_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SendText(context.Background(), "+55", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestParseWebhook_TextMessage(t *testing.T) {
	client := newTestClient("http://unused")
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"from": "5532991473412",
			"id": "wamid.x",
			"timestamp": "1756400000",
			"type": "text",
			"text": {"body": "Paguei R$ 50 de mercado hoje"}
		}]}}]}]
	}`)

	env, ok := client.ParseWebhook(context.Background(), body)
	require.True(t, ok)
	assert.Equal(t, "+5532991473412", env.Sender)
	assert.Equal(t, wa.KindText, env.Kind)
	assert.Equal(t, "Paguei R$ 50 de mercado hoje", env.Text)
	assert.False(t, env.HasMedia())
}

func TestParseWebhook_StatusEventIgnored(t *testing.T) {
	client := newTestClient("http://unused")
	_, ok := client.ParseWebhook(context.Background(),
		[]byte(`{"entry":[{"changes":[{"value":{"statuses":[{"status":"delivered"}]}}]}]}`))
	assert.False(t, ok)
}

func TestParseWebhook_ImageDownloadsMedia(t *testing.T) {
	imageBytes := []byte("fake-jpeg-bytes")
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media-1":
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url":       srv.URL + "/binary",
				"mime_type": "image/jpeg",
			})
		case "/binary":
			_, _ = w.Write(imageBytes)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"from": "5532991473412",
			"timestamp": "1756400000",
			"type": "image",
			"image": {"id": "media-1", "mime_type": "image/jpeg", "caption": "nota do mercado"}
		}]}}]}]
	}`)

	env, ok := client.ParseWebhook(context.Background(), body)
	require.True(t, ok)
	assert.Equal(t, wa.KindImage, env.Kind)
	assert.Equal(t, "nota do mercado", env.Caption)
	require.True(t, env.HasMedia())
	assert.Equal(t, imageBytes, env.Media.Data)
	assert.Equal(t, "image/jpeg", env.Media.MIMEType)
}

func TestParseWebhook_MediaDownloadFailureLeavesMediaNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"from": "5532991473412",
			"timestamp": "1756400000",
			"type": "document",
			"document": {"id": "media-2", "mime_type": "application/pdf", "caption": "boleto"}
		}]}}]}]
	}`)

	env, ok := client.ParseWebhook(context.Background(), body)
	require.True(t, ok)
	assert.Equal(t, wa.KindDocument, env.Kind)
	assert.False(t, env.HasMedia())
	assert.Equal(t, "boleto", env.Caption)
}
