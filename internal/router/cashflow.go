package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/period"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

func (r *Router) handleCashflow(ctx context.Context, to string, user store.User, message string) error {
	now := r.clk.Now()
	p := period.Parse(message, now)
	r.log.Info("cashflow period",
		slog.String("start", p.Start.Format("2006-01-02")),
		slog.String("end", p.End.Format("2006-01-02")),
	)

	entries, err := r.store.ListEntriesForCashflow(ctx, user.ID, p.End)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return r.reply(ctx, to, fmt.Sprintf(
			"📊 *Fluxo de Caixa - %s*\n\nNão foram encontrados lançamentos neste período.", p.Label()))
	}

	// The query brings everything up to the period end so carry-over could
	// be computed; the summary itself only counts the requested month. An
	// entry's effective date is its payment date when settled, else the
	// accrual date.
	receitas := decimal.Zero
	despesas := decimal.Zero
	count := 0
	for _, e := range entries {
		effective := e.DataCompetencia
		if e.DataPagamento != nil {
			effective = *e.DataPagamento
		}
		if effective.Year() != p.Start.Year() || effective.Month() != p.Start.Month() {
			continue
		}
		count++
		switch e.TipoLancamento {
		case store.TipoReceita:
			receitas = receitas.Add(e.Valor)
		case store.TipoDespesa:
			despesas = despesas.Add(e.Valor)
		}
	}

	saldo := receitas.Sub(despesas)
	saldoEmoji, saldoTexto := "✅", "Positivo"
	if saldo.IsNegative() {
		saldoEmoji, saldoTexto = "❌", "Negativo"
	}

	summary := fmt.Sprintf(`📊 *Fluxo de Caixa - %s*

💰 *Resumo Financeiro:*
├─ 💚 Receitas: %s
├─ 💸 Despesas: %s
└─ %s Saldo: %s (%s)

📈 Total de lançamentos: %d

_Gerado em %s_`,
		p.Label(),
		FormatCurrency(receitas),
		FormatCurrency(despesas),
		saldoEmoji, FormatCurrency(saldo.Abs()), saldoTexto,
		count,
		now.Format("02/01/2006 15:04"),
	)
	return r.reply(ctx, to, summary)
}
