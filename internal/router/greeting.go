package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

func (r *Router) handleGreeting(ctx context.Context, to string, user store.User) error {
	salutation := "Olá"
	if fields := strings.Fields(user.Nome); len(fields) > 0 {
		salutation = "Olá, " + fields[0]
	}

	return r.reply(ctx, to, fmt.Sprintf(`%s! 👋

Sou o assistente do ConectFin. Posso ajudar você a:

💰 *Registrar lançamentos*
• "Paguei R$ 50 de mercado"
• "Recebi R$ 1000 do cliente X"
• Envie foto de nota fiscal
• Envie áudio descrevendo a despesa

📊 *Visualizar relatórios*
• "Mostra o fluxo de caixa"
• "Ver DRE"
• "Contas a pagar"
• "Contas a receber"

Como posso ajudar você hoje? 😊`, salutation))
}
