package router

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders a value the way pt-BR users read money,
// e.g. "R$ 1.234,56".
func FormatCurrency(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatErrorReply maps an internal error onto the message the user sees.
// Classification is by substring because errors cross several layers
// (provider responses, transport statuses, validation) without a shared
// type. Bank setup errors pass through verbatim since their text is
// already instructional.
func FormatErrorReply(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "banco"):
		return msg
	case strings.Contains(msg, "503"),
		strings.Contains(msg, "overloaded"),
		strings.Contains(msg, "temporariamente indisponível"):
		return "🤖 A IA está temporariamente sobrecarregada.\n\n⏱️ Tente novamente em alguns minutos.\n\nObrigado pela paciência! 😊"
	case strings.Contains(msg, "401"):
		return "❌ Erro de configuração do WhatsApp. Entre em contato com o suporte."
	default:
		return "❌ Não consegui processar sua mensagem agora. Pode tentar novamente?"
	}
}
