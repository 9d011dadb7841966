package router_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/ai"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/extract"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/router"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

var fixedNow = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

type fakeStore struct {
	user         store.User
	userErr      error
	bank         store.Bank
	bankErr      error
	gotBankID    string
	created      []store.CreateEntryInput
	createdEntry store.Entry
	createErr    error
	openEntries  []store.Entry
	openTipo     string
	cashflow     []store.Entry
}

func (f *fakeStore) GetUserByPhone(_ context.Context, _ string) (store.User, error) {
	return f.user, f.userErr
}

func (f *fakeStore) GetBank(_ context.Context, bankID string) (store.Bank, error) {
	f.gotBankID = bankID
	return f.bank, f.bankErr
}

func (f *fakeStore) CreateEntry(_ context.Context, in store.CreateEntryInput) (store.Entry, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return store.Entry{}, f.createErr
	}
	return f.createdEntry, nil
}

func (f *fakeStore) ListOpenEntries(_ context.Context, _, tipo string) ([]store.Entry, error) {
	f.openTipo = tipo
	return f.openEntries, nil
}

func (f *fakeStore) ListEntriesForCashflow(_ context.Context, _ string, _ time.Time) ([]store.Entry, error) {
	return f.cashflow, nil
}

type fakeClassifier struct {
	intent string
	calls  int
}

func (f *fakeClassifier) ClassifyIntent(_ context.Context, _ string) ai.IntentResult {
	f.calls++
	return ai.IntentResult{Intent: f.intent, Confidence: 0.9}
}

type fakeExtractor struct {
	candidate extract.Candidate
	err       error
	lastKind  string
}

func (f *fakeExtractor) AnalyzeText(_ context.Context, _ string) (extract.Candidate, error) {
	f.lastKind = "text"
	return f.candidate, f.err
}

func (f *fakeExtractor) AnalyzeImage(_ context.Context, _ []byte, _, _ string) (extract.Candidate, error) {
	f.lastKind = "image"
	return f.candidate, f.err
}

func (f *fakeExtractor) AnalyzeAudio(_ context.Context, _ []byte, _ string) (extract.Candidate, error) {
	f.lastKind = "audio"
	return f.candidate, f.err
}

func (f *fakeExtractor) AnalyzeDocument(_ context.Context, _ []byte, _, _, _ string) (extract.Candidate, error) {
	f.lastKind = "document"
	return f.candidate, f.err
}

type fakeResolver struct {
	bank     store.Bank
	bankErr  error
	category *store.Category
}

func (f *fakeResolver) Bank(_ context.Context, _ string) (store.Bank, error) {
	return f.bank, f.bankErr
}

func (f *fakeResolver) Category(_ context.Context, _, _, _ string) (*store.Category, error) {
	return f.category, nil
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) Name() string { return "fake" }

func (r *recordingSender) SendText(_ context.Context, _, body string) error {
	r.sent = append(r.sent, body)
	return nil
}

func (r *recordingSender) SendImage(_ context.Context, _, url, _ string) error {
	r.sent = append(r.sent, url)
	return nil
}

type deps struct {
	store      *fakeStore
	classifier *fakeClassifier
	extractor  *fakeExtractor
	resolver   *fakeResolver
	sender     *recordingSender
}

func newRouter(t *testing.T, allowedPhone string, d deps) *router.Router {
	t.Helper()
	if d.store == nil {
		d.store = &fakeStore{user: store.User{ID: "user-1", Phone: "+5532991473412", Nome: "Eduardo Simas"}}
	}
	if d.classifier == nil {
		d.classifier = &fakeClassifier{intent: ai.IntentUnknown}
	}
	if d.extractor == nil {
		d.extractor = &fakeExtractor{}
	}
	if d.resolver == nil {
		d.resolver = &fakeResolver{bank: store.Bank{ID: "bank-1", Nome: "Nubank", IsPrincipal: true}}
	}
	if d.sender == nil {
		d.sender = &recordingSender{}
	}
	return router.New(slog.Default(),
		config.WhatsAppConfig{AllowedPhone: allowedPhone},
		d.store, d.classifier, d.extractor, d.resolver, d.sender,
		clock.Fixed{T: fixedNow})
}

func textEnvelope(text string) wa.Envelope {
	return wa.Envelope{Sender: "+5532991473412", Kind: wa.KindText, Text: text}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestHandle_UnauthorizedSenderIsSilentlyDropped(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{}
	r := newRouter(t, "+5511000000000", deps{sender: sender, store: st})

	r.Handle(context.Background(), textEnvelope("Paguei R$ 50 de mercado"))

	assert.Empty(t, sender.sent)
	assert.Empty(t, st.created)
}

func TestHandle_UnknownUserGetsRegistrationNotice(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{userErr: store.ErrUserNotFound}
	r := newRouter(t, "", deps{sender: sender, store: st})

	r.Handle(context.Background(), textEnvelope("oi"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Usuário não encontrado")
	assert.Contains(t, sender.sent[0], "cadastre seu número")
}

func TestHandle_TextTransactionHappyPath(t *testing.T) {
	competencia := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	st := &fakeStore{
		user: store.User{ID: "user-1", Phone: "+5532991473412"},
		bank: store.Bank{ID: "bank-1", Nome: "Nubank", IsPrincipal: true},
		createdEntry: store.Entry{
			ID:              "lanc-42",
			BancoID:         "bank-1",
			Descricao:       "Compras do mês no supermercado",
			Valor:           decimal.RequireFromString("50"),
			TipoLancamento:  store.TipoDespesa,
			DataCompetencia: competencia,
		},
	}
	sender := &recordingSender{}
	classifier := &fakeClassifier{intent: ai.IntentCreateTransaction}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		Descricao:         "Compras do mês no supermercado",
		Valor:             decimalPtr("50"),
		TipoLancamento:    store.TipoDespesa,
		DataCompetencia:   "2026-08-28",
		CategoriaSugerida: "Alimentação",
		Confidence:        0.95,
	}}
	resolver := &fakeResolver{
		bank:     store.Bank{ID: "bank-1", Nome: "Nubank", IsPrincipal: true},
		category: &store.Category{ID: "cat-1", Nome: "Alimentação", Tipo: store.TipoDespesa},
	}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor, resolver: resolver, sender: sender})

	r.Handle(context.Background(), textEnvelope("Paguei R$ 50 de mercado hoje"))

	require.Len(t, st.created, 1)
	in := st.created[0]
	assert.Equal(t, "user-1", in.UserID)
	assert.Equal(t, "bank-1", in.BancoID)
	require.NotNil(t, in.CategoriaID)
	assert.Equal(t, "cat-1", *in.CategoriaID)
	assert.Equal(t, store.TipoDespesa, in.Tipo)
	require.NotNil(t, in.Valor)
	assert.True(t, in.Valor.Equal(decimal.RequireFromString("50")))

	require.Len(t, sender.sent, 1)
	confirm := sender.sent[0]
	assert.Contains(t, confirm, "✅ Lançamento criado!")
	assert.Contains(t, confirm, "*Tipo:* 💸 Despesa")
	assert.Contains(t, confirm, "*Valor:* R$ 50,00")
	assert.Contains(t, confirm, "*Data:* 28/08/2026")
	assert.Contains(t, confirm, "*Categoria:* Alimentação")
	assert.Contains(t, confirm, "*Banco:* Nubank ⭐")
	assert.Contains(t, confirm, "_ID: lanc-42_")
	assert.Equal(t, "bank-1", st.gotBankID)
}

func TestHandle_ConfirmationShowsPersistedBank(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{
		user: store.User{ID: "user-1"},
		bank: store.Bank{ID: "bank-1", Nome: "Nubank", IsPrincipal: true},
		createdEntry: store.Entry{
			ID:              "lanc-7",
			BancoID:         "bank-1",
			Valor:           decimal.RequireFromString("80"),
			TipoLancamento:  store.TipoDespesa,
			DataCompetencia: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		},
	}
	classifier := &fakeClassifier{intent: ai.IntentCreateTransaction}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		Descricao:       "Farmácia",
		Valor:           decimalPtr("80"),
		DataCompetencia: "2026-08-28",
	}}
	// The resolver still holds the name the bank had before the insert.
	resolver := &fakeResolver{bank: store.Bank{ID: "bank-1", Nome: "Conta antiga"}}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor, resolver: resolver, sender: sender})

	r.Handle(context.Background(), textEnvelope("Paguei R$ 80 na farmácia"))

	assert.Equal(t, "bank-1", st.gotBankID)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "*Banco:* Nubank ⭐")
	assert.NotContains(t, sender.sent[0], "Conta antiga")
}

func TestHandle_MediaSkipsIntentClassification(t *testing.T) {
	classifier := &fakeClassifier{intent: ai.IntentGreeting}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		Descricao:       "Nota fiscal",
		Valor:           decimalPtr("120.50"),
		TipoLancamento:  store.TipoDespesa,
		DataCompetencia: "2026-08-28",
	}}
	st := &fakeStore{
		user:         store.User{ID: "user-1"},
		createdEntry: store.Entry{ID: "lanc-1", Valor: decimal.RequireFromString("120.50")},
	}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor})

	r.Handle(context.Background(), wa.Envelope{
		Sender:  "+5532991473412",
		Kind:    wa.KindImage,
		Caption: "nota do mercado",
		Media:   &wa.Media{Data: []byte("jpeg"), MIMEType: "image/jpeg"},
	})

	assert.Zero(t, classifier.calls)
	assert.Equal(t, "image", extractor.lastKind)
	require.Len(t, st.created, 1)
}

func TestHandle_NeedsFixDoesNotPersist(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		NeedsFix:    true,
		Missing:     []string{"valor"},
		Suggestions: []string{"Informe o valor, ex: 'R$ 50'"},
	}}
	classifier := &fakeClassifier{intent: ai.IntentCreateTransaction}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor, sender: sender})

	r.Handle(context.Background(), textEnvelope("paguei o mercado"))

	assert.Empty(t, st.created)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "❌ Informações incompletas!")
	assert.Contains(t, sender.sent[0], "Faltando: valor")
	assert.Contains(t, sender.sent[0], "Informe o valor")
}

func TestHandle_DocumentNeedsFixVariant(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		Descricao:       "Documento não processado",
		DataCompetencia: "2026-08-28",
		NeedsFix:        true,
		Missing:         []string{"valor", "tipo_lancamento", "descricao"},
		Suggestions:     []string{"Não foi possível processar o documento automaticamente."},
	}}
	r := newRouter(t, "", deps{store: st, extractor: extractor, sender: sender})

	r.Handle(context.Background(), wa.Envelope{
		Sender:  "+5532991473412",
		Kind:    wa.KindDocument,
		Caption: "boleto",
		Media:   &wa.Media{Data: []byte("%PDF"), MIMEType: "application/pdf"},
	})

	assert.Empty(t, st.created)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "📄 Documento processado, mas faltam informações")
	assert.Contains(t, sender.sent[0], "Reenviar um documento mais claro")
}

func TestHandle_NoBankRepliesSetupInstructions(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	extractor := &fakeExtractor{candidate: extract.Candidate{
		Descricao:       "Mercado",
		Valor:           decimalPtr("50"),
		DataCompetencia: "2026-08-28",
	}}
	classifier := &fakeClassifier{intent: ai.IntentCreateTransaction}
	resolver := &fakeResolver{bankErr: store.ErrBankNotFound}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor, resolver: resolver, sender: sender})

	r.Handle(context.Background(), textEnvelope("Paguei R$ 50 de mercado"))

	assert.Empty(t, st.created)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "não tem nenhum banco configurado")
	assert.Contains(t, sender.sent[0], "Cadastre pelo menos um banco")
}

func TestHandle_UnsupportedKind(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	r := newRouter(t, "", deps{store: st, sender: sender})

	r.Handle(context.Background(), wa.Envelope{
		Sender: "+5532991473412",
		Kind:   wa.KindVideo,
		Media:  &wa.Media{Data: []byte("mp4"), MIMEType: "video/mp4"},
	})

	assert.Empty(t, st.created)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Tipo de mensagem não suportado")
}

func TestHandle_GreetingUsesFirstName(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1", Nome: "Eduardo Simas"}}
	classifier := &fakeClassifier{intent: ai.IntentGreeting}
	r := newRouter(t, "", deps{store: st, classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("bom dia"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Olá, Eduardo! 👋")
	assert.Contains(t, sender.sent[0], "assistente do ConectFin")
}

func TestHandle_UnknownIntentHelpMessage(t *testing.T) {
	sender := &recordingSender{}
	classifier := &fakeClassifier{intent: ai.IntentUnknown}
	r := newRouter(t, "", deps{classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("xyzzy"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "não entendi sua solicitação")
}

func TestHandle_DREPlaceholder(t *testing.T) {
	sender := &recordingSender{}
	classifier := &fakeClassifier{intent: ai.IntentViewDRE}
	r := newRouter(t, "", deps{classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("ver dre"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "será implementada em breve")
}

func TestHandle_ExtractionFailureRepliesOverloadNotice(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	classifier := &fakeClassifier{intent: ai.IntentCreateTransaction}
	extractor := &fakeExtractor{err: ai.ErrUnavailable}
	r := newRouter(t, "", deps{store: st, classifier: classifier, extractor: extractor, sender: sender})

	r.Handle(context.Background(), textEnvelope("Paguei R$ 50 de mercado"))

	assert.Empty(t, st.created)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "temporariamente sobrecarregada")
}

func TestHandle_PayablesReport(t *testing.T) {
	venc := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	sender := &recordingSender{}
	st := &fakeStore{
		user: store.User{ID: "user-1"},
		openEntries: []store.Entry{
			{
				Descricao:      "Aluguel",
				Valor:          decimal.RequireFromString("1500"),
				TipoLancamento: store.TipoDespesa,
				DataVencimento: &venc,
				CategoriaNome:  "Moradia",
				BancoNome:      "Nubank",
			},
			{
				Descricao:      "Internet",
				Valor:          decimal.RequireFromString("99.90"),
				TipoLancamento: store.TipoDespesa,
				BancoNome:      "Nubank",
			},
		},
	}
	classifier := &fakeClassifier{intent: ai.IntentViewPayables}
	r := newRouter(t, "", deps{store: st, classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("contas a pagar"))

	assert.Equal(t, store.TipoDespesa, st.openTipo)
	require.Len(t, sender.sent, 1)
	report := sender.sent[0]
	assert.Contains(t, report, "💸 *Contas a Pagar* (2)")
	assert.Contains(t, report, "1. Aluguel")
	assert.Contains(t, report, "R$ 1.500,00 • Venc: 10/09/2026")
	assert.Contains(t, report, "📂 Moradia • 🏦 Nubank")
	assert.Contains(t, report, "2. Internet")
	assert.Contains(t, report, "R$ 99,90 • Sem vencimento")
	assert.Contains(t, report, "📂 Sem categoria")
	assert.Contains(t, report, "💰 *Total:* R$ 1.599,90")
}

func TestHandle_ReceivablesEmpty(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	classifier := &fakeClassifier{intent: ai.IntentViewReceivables}
	r := newRouter(t, "", deps{store: st, classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("contas a receber"))

	assert.Equal(t, store.TipoReceita, st.openTipo)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "não tem receitas pendentes")
}

func TestHandle_CashflowSummary(t *testing.T) {
	pago := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	sender := &recordingSender{}
	st := &fakeStore{
		user: store.User{ID: "user-1"},
		cashflow: []store.Entry{
			{
				Descricao:       "Cliente X",
				Valor:           decimal.RequireFromString("3000"),
				TipoLancamento:  store.TipoReceita,
				DataCompetencia: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				Descricao:       "Aluguel",
				Valor:           decimal.RequireFromString("1500"),
				TipoLancamento:  store.TipoDespesa,
				DataCompetencia: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
				DataPagamento:   &pago,
			},
			// Out of the requested month, must not count toward totals.
			{
				Descricao:       "Compra antiga",
				Valor:           decimal.RequireFromString("900"),
				TipoLancamento:  store.TipoDespesa,
				DataCompetencia: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	classifier := &fakeClassifier{intent: ai.IntentViewCashflow}
	r := newRouter(t, "", deps{store: st, classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("fluxo de caixa de agosto"))

	require.Len(t, sender.sent, 1)
	summary := sender.sent[0]
	assert.Contains(t, summary, "📊 *Fluxo de Caixa - agosto/2026*")
	assert.Contains(t, summary, "Receitas: R$ 3.000,00")
	assert.Contains(t, summary, "Despesas: R$ 1.500,00")
	assert.Contains(t, summary, "✅ Saldo: R$ 1.500,00 (Positivo)")
	assert.Contains(t, summary, "Total de lançamentos: 2")
}

func TestHandle_CashflowEmptyPeriod(t *testing.T) {
	sender := &recordingSender{}
	st := &fakeStore{user: store.User{ID: "user-1"}}
	classifier := &fakeClassifier{intent: ai.IntentViewCashflow}
	r := newRouter(t, "", deps{store: st, classifier: classifier, sender: sender})

	r.Handle(context.Background(), textEnvelope("fluxo de caixa de janeiro de 2020"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Fluxo de Caixa - janeiro/2020")
	assert.Contains(t, sender.sent[0], "Não foram encontrados lançamentos")
}
