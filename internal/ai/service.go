package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	IntentGreeting          = "greeting"
	IntentCreateTransaction = "create_transaction"
	IntentViewPayables      = "view_payables"
	IntentViewReceivables   = "view_receivables"
	IntentViewCashflow      = "view_cashflow"
	IntentViewDRE           = "view_dre"
	IntentUnknown           = "unknown"
)

type IntentResult struct {
	Intent        string  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	ExtractedInfo string  `json:"extracted_info"`
}

// Generator is the subset of Runner the service needs; tests substitute it.
type Generator interface {
	Generate(ctx context.Context, system string, parts []Part) (string, error)
}

// Service exposes the prompt-specific model calls: intent classification,
// structured extraction, document analysis and category matching.
type Service struct {
	log    *slog.Logger
	runner Generator
}

func NewService(log *slog.Logger, runner Generator) *Service {
	return &Service{
		log:    log.With(slog.String("service", "ai")),
		runner: runner,
	}
}

// Extract runs the parser prompt over the given parts and returns the raw
// JSON text. Callers parse and validate the candidate themselves.
func (s *Service) Extract(ctx context.Context, parts []Part) (string, error) {
	return s.runner.Generate(ctx, promptParser, parts)
}

// ClassifyIntent never fails: any provider or parse error degrades to the
// unknown intent so the router can still answer something.
func (s *Service) ClassifyIntent(ctx context.Context, message string) IntentResult {
	out, err := s.runner.Generate(ctx, promptIntentClassifier, []Part{
		TextPart(fmt.Sprintf("Mensagem do usuário: %q", message)),
	})
	if err != nil {
		s.log.Error("intent classification failed", slog.Any("error", err))
		return IntentResult{Intent: IntentUnknown, Confidence: 0}
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(StripFences(out)), &result); err != nil {
		s.log.Error("intent response not parseable", slog.Any("error", err))
		return IntentResult{Intent: IntentUnknown, Confidence: 0}
	}
	if result.Intent == "" {
		result.Intent = IntentUnknown
	}
	s.log.Info("intent classified",
		slog.String("intent", result.Intent),
		slog.Float64("confidence", result.Confidence),
	)
	return result
}

// AnalyzeDocument summarizes extracted document text. Failures degrade to a
// fixed notice instead of an error so the extraction pass can continue.
func (s *Service) AnalyzeDocument(ctx context.Context, documentText string) string {
	prompt := fmt.Sprintf(`O documento está em PT-BR. Faça uma análise do que está contido nele e dê um resumo levando em conta que as informações serão inseridas em um sistema financeiro.

DOCUMENTO:
%s

Identifique e resuma:
1. Tipo de documento
2. Valores encontrados
3. Datas relevantes
4. Descrição do produto/serviço
5. Se é receita ou despesa
6. Qualquer informação financeira relevante

Seja objetivo e foque em dados que podem virar lançamentos financeiros.`, documentText)

	analysis, err := s.runner.Generate(ctx, promptDocumentAnalyzer, []Part{TextPart(prompt)})
	if err != nil {
		s.log.Error("document analysis failed", slog.Any("error", err))
		return "Não foi possível analisar o documento automaticamente."
	}
	return analysis
}

// ChooseCategory asks the model to pick one of the existing category names
// for the suggested one. The returned name is untrusted; the resolution
// layer still matches it against the real list.
func (s *Service) ChooseCategory(ctx context.Context, suggested string, existing []string) (string, error) {
	prompt := fmt.Sprintf("categoria_sugerida: %s\n\ncategorias_existentes: %s",
		suggested, strings.Join(existing, ", "))
	out, err := s.runner.Generate(ctx, promptCategoryClassifier, []Part{TextPart(prompt)})
	if err != nil {
		return "", fmt.Errorf("choose category: %w", err)
	}
	return strings.TrimSpace(out), nil
}
