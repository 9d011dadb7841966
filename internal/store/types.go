package store

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TipoReceita = "receita"
	TipoDespesa = "despesa"
)

type User struct {
	ID    string
	Phone string
	Nome  string
}

type Bank struct {
	ID          string
	UserID      string
	Nome        string
	IsPrincipal bool
	CreatedAt   time.Time
}

type Category struct {
	ID     string
	UserID string
	Nome   string
	Tipo   string
}

type Entry struct {
	ID              string
	UserID          string
	BancoID         string
	BancoNome       string
	CategoriaID     *string
	CategoriaNome   string
	Descricao       string
	Valor           decimal.Decimal
	TipoLancamento  string
	DataCompetencia time.Time
	DataPagamento   *time.Time
	DataVencimento  *time.Time
	CreatedAt       time.Time
}

type CreateEntryInput struct {
	UserID          string
	BancoID         string
	CategoriaID     *string
	Descricao       string
	Valor           *decimal.Decimal
	Tipo            string
	DataCompetencia *time.Time
	DataPagamento   *time.Time
	DataVencimento  *time.Time
}
