package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/ai"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
)

const pdfTextWindow = 2000

// Extractor produces transaction candidates from the four message kinds.
type Extractor struct {
	log *slog.Logger
	ai  *ai.Service
	clk clock.Clock
}

func NewExtractor(log *slog.Logger, aiService *ai.Service, clk clock.Clock) *Extractor {
	return &Extractor{
		log: log.With(slog.String("service", "extract")),
		ai:  aiService,
		clk: clk,
	}
}

func (e *Extractor) today() string {
	return e.clk.Now().Format(dateLayout)
}

func (e *Extractor) AnalyzeText(ctx context.Context, text string) (Candidate, error) {
	prompt := fmt.Sprintf("NOW_ISO=%q, text=%q", e.today(), text)
	out, err := e.ai.Extract(ctx, []ai.Part{ai.TextPart(prompt)})
	if err != nil {
		return Candidate{}, fmt.Errorf("analyze text: %w", err)
	}
	return ParseCandidate(out)
}

func (e *Extractor) AnalyzeImage(ctx context.Context, data []byte, mimeType, caption string) (Candidate, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if caption == "" {
		caption = "(sem)"
	}
	prompt := fmt.Sprintf("NOW_ISO=%q\nLegenda: %s\nA imagem pode ser nota fiscal, comprovante, fatura ou foto de quadro. Extraia os campos.",
		e.today(), caption)
	out, err := e.ai.Extract(ctx, []ai.Part{
		ai.DataPart(mimeType, data),
		ai.TextPart(prompt),
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("analyze image: %w", err)
	}
	return ParseCandidate(out)
}

func (e *Extractor) AnalyzeAudio(ctx context.Context, data []byte, mimeType string) (Candidate, error) {
	if mimeType == "" {
		mimeType = "audio/ogg"
	}
	prompt := fmt.Sprintf("NOW_ISO=%q\nExtraia os campos do áudio acima.", e.today())
	out, err := e.ai.Extract(ctx, []ai.Part{
		ai.DataPart(mimeType, data),
		ai.TextPart(prompt),
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("analyze audio: %w", err)
	}
	return ParseCandidate(out)
}

// AnalyzePDF runs the two-pass document flow: extract the text, summarize it
// once, then do the final structured extraction with the summary plus a
// window of the original text. Any failure degrades into a needs_fix
// candidate asking for manual entry instead of an error.
func (e *Extractor) AnalyzePDF(ctx context.Context, data []byte) Candidate {
	text, err := extractPDFText(data)
	if err != nil {
		e.log.Warn("pdf text extraction failed", slog.Any("error", err))
		return e.manualEntryFallback()
	}
	e.log.Info("pdf text extracted", slog.Int("chars", len(text)))

	analysis := e.ai.AnalyzeDocument(ctx, text)

	window := text
	if len(window) > pdfTextWindow {
		window = window[:pdfTextWindow]
	}
	prompt := fmt.Sprintf(`NOW_ISO=%q

ANÁLISE DO DOCUMENTO:
%s

TEXTO ORIGINAL:
%s

Com base na análise acima, extraia os dados financeiros e retorne APENAS o JSON no formato especificado.`,
		e.today(), analysis, window)

	out, err := e.ai.Extract(ctx, []ai.Part{ai.TextPart(prompt)})
	if err != nil {
		e.log.Warn("pdf structured extraction failed", slog.Any("error", err))
		return e.manualEntryFallback()
	}
	candidate, err := ParseCandidate(out)
	if err != nil {
		e.log.Warn("pdf candidate unparseable", slog.Any("error", err))
		return e.manualEntryFallback()
	}
	return candidate
}

// AnalyzeDocument dispatches by MIME: PDFs go through the two-pass flow,
// anything else degrades to text extraction over the caption.
func (e *Extractor) AnalyzeDocument(ctx context.Context, data []byte, mimeType, text, caption string) (Candidate, error) {
	if strings.Contains(mimeType, "pdf") {
		return e.AnalyzePDF(ctx, data), nil
	}
	fallback := caption
	if fallback == "" {
		fallback = text
	}
	if fallback == "" {
		fallback = "Documento enviado"
	}
	return e.AnalyzeText(ctx, fallback)
}

func (e *Extractor) manualEntryFallback() Candidate {
	return Candidate{
		Descricao:       "Documento não processado",
		DataCompetencia: e.today(),
		NeedsFix:        true,
		Missing:         []string{"valor", "tipo_lancamento", "descricao"},
		Confidence:      0,
		Suggestions: []string{
			"Não foi possível processar o documento automaticamente. Por favor, digite as informações manualmente: 'Paguei R$ [valor] de [descrição] em [data]'",
		},
	}
}
