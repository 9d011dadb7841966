package extract

import (
	"time"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

const dateLayout = "2006-01-02"
const maxDescricao = 140

// Normalize fills a candidate's gaps with the documented defaults. It is
// pure: "today" comes from the injected clock, never from the ambient time.
func Normalize(c Candidate, text, caption string, clk clock.Clock) Record {
	tipo := c.TipoLancamento
	if tipo == "" {
		tipo = store.TipoDespesa
	}

	descricao := c.Descricao
	if descricao == "" {
		fallback := caption
		if fallback == "" {
			fallback = text
		}
		descricao = truncate(fallback, maxDescricao)
	}

	competencia := parseDate(c.DataCompetencia)
	if competencia == nil {
		today := clk.Now()
		today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		competencia = &today
	}

	return Record{
		Tipo:              tipo,
		Descricao:         descricao,
		Valor:             c.Valor,
		DataCompetencia:   *competencia,
		DataPagamento:     parseDate(c.DataPagamento),
		DataVencimento:    parseDate(c.DataVencimento),
		CategoriaSugerida: c.CategoriaSugerida,
		NeedsFix:          c.NeedsFix,
		Missing:           c.Missing,
		Confidence:        c.Confidence,
		Suggestions:       c.Suggestions,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
