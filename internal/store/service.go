package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	dbpkg "github.com/eduardossimas/conectfin-whatsapp-bot/internal/db"
)

var (
	ErrUserNotFound = errors.New("usuário não encontrado")
	ErrBankNotFound = errors.New("nenhum banco encontrado para o usuário")

	// Field validation errors raised before any write. The bank message is
	// instructional because it reaches the user verbatim.
	ErrMissingBank = errors.New("Nenhum banco encontrado para este usuário.\n\nPor favor:\n1. Acesse o sistema\n2. Cadastre pelo menos um banco\n3. Defina um como principal (opcional)\n\nApós isso, pode usar o WhatsApp normalmente! 🙂")

	ErrMissingValor       = errors.New("valor é obrigatório neste schema")
	ErrMissingDescricao   = errors.New("descricao é obrigatória")
	ErrMissingCompetencia = errors.New("data_competencia é obrigatória")
)

type Service struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	return &Service{
		log:  log.With(slog.String("service", "store")),
		pool: pool,
	}
}

func (s *Service) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	var (
		id   pgtype.UUID
		u    User
		nome pgtype.Text
	)
	row := s.pool.QueryRow(ctx,
		`SELECT id, phone, nome FROM users WHERE phone = $1`, phone)
	if err := row.Scan(&id, &u.Phone, &nome); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user by phone: %w", err)
	}
	u.ID = dbpkg.UUIDToString(id)
	u.Nome = dbpkg.TextToString(nome)
	return u, nil
}

// DefaultBank returns the user's principal bank, or the most recently
// created one when no principal is flagged.
func (s *Service) DefaultBank(ctx context.Context, userID string) (Bank, error) {
	uid, err := dbpkg.ParseUUID(userID)
	if err != nil {
		return Bank{}, err
	}

	bank, err := s.scanBank(s.pool.QueryRow(ctx,
		`SELECT id, user_id, nome, is_principal, created_at
		 FROM bancos WHERE user_id = $1 AND is_principal = TRUE
		 ORDER BY created_at DESC LIMIT 1`, uid))
	if err == nil {
		return bank, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Bank{}, fmt.Errorf("query principal bank: %w", err)
	}

	s.log.Debug("no principal bank, falling back to most recent", slog.String("user_id", userID))
	bank, err = s.scanBank(s.pool.QueryRow(ctx,
		`SELECT id, user_id, nome, is_principal, created_at
		 FROM bancos WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT 1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bank{}, ErrBankNotFound
		}
		return Bank{}, fmt.Errorf("query latest bank: %w", err)
	}
	return bank, nil
}

func (s *Service) GetBank(ctx context.Context, bankID string) (Bank, error) {
	bid, err := dbpkg.ParseUUID(bankID)
	if err != nil {
		return Bank{}, err
	}
	bank, err := s.scanBank(s.pool.QueryRow(ctx,
		`SELECT id, user_id, nome, is_principal, created_at
		 FROM bancos WHERE id = $1`, bid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bank{}, ErrBankNotFound
		}
		return Bank{}, fmt.Errorf("query bank: %w", err)
	}
	return bank, nil
}

func (s *Service) scanBank(row pgx.Row) (Bank, error) {
	var (
		b      Bank
		id, ui pgtype.UUID
	)
	if err := row.Scan(&id, &ui, &b.Nome, &b.IsPrincipal, &b.CreatedAt); err != nil {
		return Bank{}, err
	}
	b.ID = dbpkg.UUIDToString(id)
	b.UserID = dbpkg.UUIDToString(ui)
	return b, nil
}

func (s *Service) ListCategories(ctx context.Context, userID, tipo string) ([]Category, error) {
	uid, err := dbpkg.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	if tipo == "" {
		tipo = TipoDespesa
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, nome, tipo FROM categorias
		 WHERE user_id = $1 AND tipo = $2 ORDER BY created_at`, uid, tipo)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var (
			c      Category
			id, ui pgtype.UUID
		)
		if err := rows.Scan(&id, &ui, &c.Nome, &c.Tipo); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID = dbpkg.UUIDToString(id)
		c.UserID = dbpkg.UUIDToString(ui)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateEntry validates required fields, each with its own error, and only
// then inserts. Zero is a legal valor; nil is not.
func (s *Service) CreateEntry(ctx context.Context, in CreateEntryInput) (Entry, error) {
	if in.BancoID == "" {
		return Entry{}, ErrMissingBank
	}
	if in.Valor == nil {
		return Entry{}, ErrMissingValor
	}
	if in.Descricao == "" {
		return Entry{}, ErrMissingDescricao
	}
	if in.DataCompetencia == nil {
		return Entry{}, ErrMissingCompetencia
	}

	uid, err := dbpkg.ParseUUID(in.UserID)
	if err != nil {
		return Entry{}, err
	}
	bid, err := dbpkg.ParseUUID(in.BancoID)
	if err != nil {
		return Entry{}, err
	}
	var cid pgtype.UUID
	if in.CategoriaID != nil {
		cid, err = dbpkg.ParseUUID(*in.CategoriaID)
		if err != nil {
			return Entry{}, err
		}
	}

	tipo := in.Tipo
	if tipo == "" {
		tipo = TipoDespesa
	}

	s.log.Info("creating entry",
		slog.String("user_id", in.UserID),
		slog.String("tipo", tipo),
		slog.String("valor", in.Valor.String()),
	)

	var (
		id        pgtype.UUID
		createdAt time.Time
	)
	row := s.pool.QueryRow(ctx,
		`INSERT INTO lancamentos
		   (user_id, banco_id, categoria_id, descricao, valor, tipo_lancamento,
		    data_competencia, data_pagamento, data_vencimento)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		uid, bid, cid, in.Descricao, dbpkg.ToNumeric(*in.Valor), tipo,
		dbpkg.ToDate(in.DataCompetencia), dbpkg.ToDate(in.DataPagamento), dbpkg.ToDate(in.DataVencimento))
	if err := row.Scan(&id, &createdAt); err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	entry := Entry{
		ID:              dbpkg.UUIDToString(id),
		UserID:          in.UserID,
		BancoID:         in.BancoID,
		CategoriaID:     in.CategoriaID,
		Descricao:       in.Descricao,
		Valor:           *in.Valor,
		TipoLancamento:  tipo,
		DataCompetencia: *in.DataCompetencia,
		DataPagamento:   in.DataPagamento,
		DataVencimento:  in.DataVencimento,
		CreatedAt:       createdAt,
	}
	s.log.Info("entry created", slog.String("id", entry.ID))
	return entry, nil
}

// ListOpenEntries returns unpaid entries of the given tipo ordered by due
// date. Backs the payables/receivables views.
func (s *Service) ListOpenEntries(ctx context.Context, userID, tipo string) ([]Entry, error) {
	uid, err := dbpkg.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT l.id, l.user_id, l.banco_id, b.nome, l.categoria_id,
		        COALESCE(c.nome, ''), l.descricao, l.valor, l.tipo_lancamento,
		        l.data_competencia, l.data_pagamento, l.data_vencimento, l.created_at
		 FROM lancamentos l
		 JOIN bancos b ON b.id = l.banco_id
		 LEFT JOIN categorias c ON c.id = l.categoria_id
		 WHERE l.user_id = $1 AND l.tipo_lancamento = $2 AND l.data_pagamento IS NULL
		 ORDER BY l.data_vencimento ASC NULLS LAST`, uid, tipo)
	if err != nil {
		return nil, fmt.Errorf("query open entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListEntriesForCashflow returns all entries settled or accrued up to the
// period end, so the caller can compute carry-over balances.
func (s *Service) ListEntriesForCashflow(ctx context.Context, userID string, until time.Time) ([]Entry, error) {
	uid, err := dbpkg.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT l.id, l.user_id, l.banco_id, b.nome, l.categoria_id,
		        COALESCE(c.nome, ''), l.descricao, l.valor, l.tipo_lancamento,
		        l.data_competencia, l.data_pagamento, l.data_vencimento, l.created_at
		 FROM lancamentos l
		 JOIN bancos b ON b.id = l.banco_id
		 LEFT JOIN categorias c ON c.id = l.categoria_id
		 WHERE l.user_id = $1
		   AND (l.data_pagamento <= $2
		        OR (l.data_pagamento IS NULL AND l.data_competencia <= $2))
		 ORDER BY COALESCE(l.data_pagamento, l.data_competencia) ASC`,
		uid, pgtype.Date{Time: until, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("query cashflow entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			id, uid, bid          pgtype.UUID
			cid                   pgtype.UUID
			valor                 pgtype.Numeric
			competencia, pag, ven pgtype.Date
		)
		if err := rows.Scan(&id, &uid, &bid, &e.BancoNome, &cid, &e.CategoriaNome,
			&e.Descricao, &valor, &e.TipoLancamento, &competencia, &pag, &ven, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.ID = dbpkg.UUIDToString(id)
		e.UserID = dbpkg.UUIDToString(uid)
		e.BancoID = dbpkg.UUIDToString(bid)
		if cid.Valid {
			s := dbpkg.UUIDToString(cid)
			e.CategoriaID = &s
		}
		e.Valor = dbpkg.NumericToDecimal(valor)
		if t := dbpkg.DateToTime(competencia); t != nil {
			e.DataCompetencia = *t
		}
		e.DataPagamento = dbpkg.DateToTime(pag)
		e.DataVencimento = dbpkg.DateToTime(ven)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
