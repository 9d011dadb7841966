package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

func (r *Router) handlePayables(ctx context.Context, to string, user store.User) error {
	entries, err := r.store.ListOpenEntries(ctx, user.ID, store.TipoDespesa)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return r.reply(ctx, to,
			"✅ *Contas a Pagar*\n\nParabéns! Você não tem despesas pendentes no momento. 🎉")
	}
	return r.reply(ctx, to, openEntriesReport("💸 *Contas a Pagar*", entries))
}

func (r *Router) handleReceivables(ctx context.Context, to string, user store.User) error {
	entries, err := r.store.ListOpenEntries(ctx, user.ID, store.TipoReceita)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return r.reply(ctx, to,
			"📊 *Contas a Receber*\n\nVocê não tem receitas pendentes no momento.")
	}
	return r.reply(ctx, to, openEntriesReport("💰 *Contas a Receber*", entries))
}

func openEntriesReport(header string, entries []store.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n\n", header, len(entries))

	total := decimal.Zero
	for i, e := range entries {
		total = total.Add(e.Valor)

		vencimento := "Sem vencimento"
		if e.DataVencimento != nil {
			vencimento = "Venc: " + FormatDate(*e.DataVencimento)
		}
		categoria := e.CategoriaNome
		if categoria == "" {
			categoria = "Sem categoria"
		}
		banco := e.BancoNome
		if banco == "" {
			banco = "N/A"
		}

		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Descricao)
		fmt.Fprintf(&b, "   %s • %s\n", FormatCurrency(e.Valor), vencimento)
		fmt.Fprintf(&b, "   📂 %s • 🏦 %s\n\n", categoria, banco)
	}

	b.WriteString("━━━━━━━━━━━━━━━━\n")
	b.WriteString("💰 *Total:* " + FormatCurrency(total))
	return b.String()
}
