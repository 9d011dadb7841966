// Package router turns an inbound envelope into a reply: it gates the
// sender, resolves the user, classifies the intent and dispatches to the
// matching handler.
package router

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/ai"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/extract"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

type Store interface {
	GetUserByPhone(ctx context.Context, phone string) (store.User, error)
	GetBank(ctx context.Context, bankID string) (store.Bank, error)
	CreateEntry(ctx context.Context, in store.CreateEntryInput) (store.Entry, error)
	ListOpenEntries(ctx context.Context, userID, tipo string) ([]store.Entry, error)
	ListEntriesForCashflow(ctx context.Context, userID string, until time.Time) ([]store.Entry, error)
}

type Classifier interface {
	ClassifyIntent(ctx context.Context, message string) ai.IntentResult
}

type Extractor interface {
	AnalyzeText(ctx context.Context, text string) (extract.Candidate, error)
	AnalyzeImage(ctx context.Context, data []byte, mimeType, caption string) (extract.Candidate, error)
	AnalyzeAudio(ctx context.Context, data []byte, mimeType string) (extract.Candidate, error)
	AnalyzeDocument(ctx context.Context, data []byte, mimeType, text, caption string) (extract.Candidate, error)
}

type Resolver interface {
	Bank(ctx context.Context, userID string) (store.Bank, error)
	Category(ctx context.Context, userID, tipo, suggested string) (*store.Category, error)
}

type Router struct {
	log          *slog.Logger
	allowedPhone string
	store        Store
	classifier   Classifier
	extractor    Extractor
	resolver     Resolver
	sender       wa.Transport
	clk          clock.Clock
}

func New(
	log *slog.Logger,
	cfg config.WhatsAppConfig,
	st Store,
	classifier Classifier,
	extractor Extractor,
	resolver Resolver,
	sender wa.Transport,
	clk clock.Clock,
) *Router {
	return &Router{
		log:          log.With(slog.String("service", "router")),
		allowedPhone: cfg.AllowedPhone,
		store:        st,
		classifier:   classifier,
		extractor:    extractor,
		resolver:     resolver,
		sender:       sender,
		clk:          clk,
	}
}

// Handle processes one inbound message end to end. It never returns an
// error: failures are logged and, when a sender is known, answered with a
// user-facing error message.
func (r *Router) Handle(ctx context.Context, env wa.Envelope) {
	if r.allowedPhone != "" && wa.DigitsOnly(env.Sender) != wa.DigitsOnly(r.allowedPhone) {
		r.log.Warn("sender not allowed, ignoring", slog.String("sender", env.Sender))
		return
	}

	user, err := r.store.GetUserByPhone(ctx, env.Sender)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			r.reply(ctx, env.Sender,
				"❌ Usuário não encontrado.\n\nPor favor, cadastre seu número no ConectFin primeiro.")
			return
		}
		r.log.Error("user lookup failed", slog.Any("error", err))
		r.reply(ctx, env.Sender, FormatErrorReply(err))
		return
	}

	// Media messages always mean a new transaction; only plain text gets
	// classified.
	intent := ai.IntentCreateTransaction
	if env.Kind == wa.KindText && env.Text != "" {
		result := r.classifier.ClassifyIntent(ctx, env.Text)
		intent = result.Intent
	}
	r.log.Info("dispatching",
		slog.String("sender", env.Sender),
		slog.String("kind", string(env.Kind)),
		slog.String("intent", intent),
	)

	switch intent {
	case ai.IntentGreeting:
		err = r.handleGreeting(ctx, env.Sender, user)
	case ai.IntentCreateTransaction:
		err = r.handleTransaction(ctx, env.Sender, user, env)
	case ai.IntentViewPayables:
		err = r.handlePayables(ctx, env.Sender, user)
	case ai.IntentViewReceivables:
		err = r.handleReceivables(ctx, env.Sender, user)
	case ai.IntentViewCashflow:
		err = r.handleCashflow(ctx, env.Sender, user, env.Text)
	case ai.IntentViewDRE:
		err = r.reply(ctx, env.Sender,
			"📈 *DRE (Demonstração do Resultado)*\n\nEsta funcionalidade será implementada em breve! 🚧\n\nPor enquanto, você pode:\n• Criar lançamentos\n• Ver contas a pagar/receber")
	default:
		err = r.reply(ctx, env.Sender,
			"🤔 Desculpe, não entendi sua solicitação.\n\nPosso ajudar você a:\n• Registrar despesas e receitas\n• Ver contas a pagar\n• Ver contas a receber\n\nTente reformular ou digite 'ajuda' para mais informações.")
	}
	if err != nil {
		r.log.Error("handler failed", slog.String("intent", intent), slog.Any("error", err))
		r.reply(ctx, env.Sender, FormatErrorReply(err))
	}
}

func (r *Router) reply(ctx context.Context, to, body string) error {
	if err := r.sender.SendText(ctx, to, body); err != nil {
		r.log.Error("reply failed", slog.String("to", to), slog.Any("error", err))
		return err
	}
	return nil
}
