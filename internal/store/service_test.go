package store_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

// Validation runs before any database access, so a nil pool is fine here.

func TestCreateEntry_Validation(t *testing.T) {
	svc := store.NewService(slog.Default(), nil)
	valor := decimal.NewFromInt(50)
	hoje := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      store.CreateEntryInput
		wantErr error
	}{
		{
			name: "missing bank",
			in: store.CreateEntryInput{
				Valor:           &valor,
				Descricao:       "mercado",
				DataCompetencia: &hoje,
			},
			wantErr: store.ErrMissingBank,
		},
		{
			name: "missing valor",
			in: store.CreateEntryInput{
				BancoID:         "11111111-1111-1111-1111-111111111111",
				Descricao:       "mercado",
				DataCompetencia: &hoje,
			},
			wantErr: store.ErrMissingValor,
		},
		{
			name: "missing descricao",
			in: store.CreateEntryInput{
				BancoID:         "11111111-1111-1111-1111-111111111111",
				Valor:           &valor,
				DataCompetencia: &hoje,
			},
			wantErr: store.ErrMissingDescricao,
		},
		{
			name: "missing data_competencia",
			in: store.CreateEntryInput{
				BancoID:   "11111111-1111-1111-1111-111111111111",
				Valor:     &valor,
				Descricao: "mercado",
			},
			wantErr: store.ErrMissingCompetencia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(context.Background(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateEntry_ZeroValorPassesValidation(t *testing.T) {
	svc := store.NewService(slog.Default(), nil)
	zero := decimal.Zero
	hoje := time.Now()

	// Zero is a legal amount; validation must not reject it. The insert
	// itself then fails on the nil pool, but not with a field error.
	defer func() { _ = recover() }()
	_, err := svc.CreateEntry(context.Background(), store.CreateEntryInput{
		UserID:          "22222222-2222-2222-2222-222222222222",
		BancoID:         "11111111-1111-1111-1111-111111111111",
		Valor:           &zero,
		Descricao:       "ajuste",
		DataCompetencia: &hoje,
	})
	if err != nil {
		assert.NotErrorIs(t, err, store.ErrMissingValor)
	}
}
