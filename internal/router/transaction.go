package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/extract"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
)

func (r *Router) handleTransaction(ctx context.Context, to string, user store.User, env wa.Envelope) error {
	candidate, supported, err := r.extractCandidate(ctx, env)
	if err != nil {
		return err
	}
	if !supported {
		return r.reply(ctx, to,
			"❌ Tipo de mensagem não suportado. Envie texto, imagem, áudio ou PDF com informações do lançamento.")
	}

	rec := extract.Normalize(candidate, env.Text, env.Caption, r.clk)
	if rec.NeedsFix {
		r.log.Info("candidate needs fix", slog.Any("missing", rec.Missing))
		return r.reply(ctx, to, needsFixMessage(rec, env.Kind))
	}

	bank, err := r.resolver.Bank(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrBankNotFound) {
			return r.reply(ctx, to,
				"❌ Você ainda não tem nenhum banco configurado no ConectFin.\n\nPor favor:\n1. Acesse o sistema\n2. Cadastre pelo menos um banco\n3. Defina um como principal (opcional)\n\nApós isso, pode usar o WhatsApp normalmente! 🙂")
		}
		return err
	}

	category, err := r.resolver.Category(ctx, user.ID, rec.Tipo, rec.CategoriaSugerida)
	if err != nil {
		return err
	}

	in := store.CreateEntryInput{
		UserID:          user.ID,
		BancoID:         bank.ID,
		Descricao:       rec.Descricao,
		Valor:           rec.Valor,
		Tipo:            rec.Tipo,
		DataCompetencia: &rec.DataCompetencia,
		DataPagamento:   rec.DataPagamento,
		DataVencimento:  rec.DataVencimento,
	}
	var categoryName string
	if category != nil {
		in.CategoriaID = &category.ID
		categoryName = category.Nome
	}

	entry, err := r.store.CreateEntry(ctx, in)
	if err != nil {
		return err
	}

	// The confirmation shows the bank as persisted, not the resolver's
	// snapshot.
	bank, err = r.store.GetBank(ctx, entry.BancoID)
	if err != nil {
		return err
	}
	return r.reply(ctx, to, confirmationMessage(entry, categoryName, bank))
}

// extractCandidate dispatches on the message kind. supported=false means
// the kind cannot carry a transaction at all (video, unknown, media kinds
// whose download failed).
func (r *Router) extractCandidate(ctx context.Context, env wa.Envelope) (extract.Candidate, bool, error) {
	switch {
	case env.Kind == wa.KindText && env.Text != "":
		c, err := r.extractor.AnalyzeText(ctx, env.Text)
		return c, true, err
	case env.Kind == wa.KindImage && env.HasMedia():
		caption := env.Caption
		if caption == "" {
			caption = env.Text
		}
		c, err := r.extractor.AnalyzeImage(ctx, env.Media.Data, env.Media.MIMEType, caption)
		return c, true, err
	case env.Kind == wa.KindAudio && env.HasMedia():
		c, err := r.extractor.AnalyzeAudio(ctx, env.Media.Data, env.Media.MIMEType)
		return c, true, err
	case env.Kind == wa.KindDocument && env.HasMedia():
		c, err := r.extractor.AnalyzeDocument(ctx, env.Media.Data, env.Media.MIMEType, env.Text, env.Caption)
		return c, true, err
	default:
		return extract.Candidate{}, false, nil
	}
}

func needsFixMessage(rec extract.Record, kind wa.Kind) string {
	missing := strings.Join(rec.Missing, ", ")
	suggestions := strings.Join(rec.Suggestions, " ")
	if kind == wa.KindDocument {
		return fmt.Sprintf("📄 Documento processado, mas faltam informações:\n\n❌ Faltando: %s\n\n💡 %s\n\nVocê pode:\n• Reenviar um documento mais claro\n• Digitar as informações manualmente",
			missing, suggestions)
	}
	return fmt.Sprintf("❌ Informações incompletas!\n\nFaltando: %s\n\nSugestão: %s\n\nTente novamente com mais detalhes.",
		missing, suggestions)
}

func confirmationMessage(entry store.Entry, categoryName string, bank store.Bank) string {
	tipo := "💸 Despesa"
	if entry.TipoLancamento == store.TipoReceita {
		tipo = "💰 Receita"
	}
	descricao := entry.Descricao
	if descricao == "" {
		descricao = "-"
	}

	lines := []string{
		"✅ Lançamento criado!",
		"",
		"• *Tipo:* " + tipo,
		"• *Descrição:* " + descricao,
		"• *Valor:* " + FormatCurrency(entry.Valor),
		"• *Data:* " + FormatDate(entry.DataCompetencia),
	}
	if entry.DataPagamento != nil {
		lines = append(lines, "• *Data pagamento:* "+FormatDate(*entry.DataPagamento))
	}
	if entry.DataVencimento != nil {
		lines = append(lines, "• *Data vencimento:* "+FormatDate(*entry.DataVencimento))
	}

	if categoryName == "" {
		categoryName = "Sem categoria"
	}
	bankLabel := bank.Nome
	if bank.IsPrincipal {
		bankLabel += " ⭐"
	}
	lines = append(lines,
		"• *Categoria:* "+categoryName,
		"• *Banco:* "+bankLabel,
		"",
		"_ID: "+entry.ID+"_",
	)
	return strings.Join(lines, "\n")
}
