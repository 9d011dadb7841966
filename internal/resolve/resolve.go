// Package resolve maps extracted hints onto the user's real reference data:
// the default bank account and an existing category id.
package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
)

type Store interface {
	DefaultBank(ctx context.Context, userID string) (store.Bank, error)
	ListCategories(ctx context.Context, userID, tipo string) ([]store.Category, error)
}

type CategoryChooser interface {
	ChooseCategory(ctx context.Context, suggested string, existing []string) (string, error)
}

type Service struct {
	log   *slog.Logger
	store Store
	ai    CategoryChooser
}

func NewService(log *slog.Logger, st Store, chooser CategoryChooser) *Service {
	return &Service{
		log:   log.With(slog.String("service", "resolve")),
		store: st,
		ai:    chooser,
	}
}

// Bank returns the user's default account: principal-flagged first, else the
// most recently created. store.ErrBankNotFound propagates when there is none;
// persistence must not proceed past it.
func (s *Service) Bank(ctx context.Context, userID string) (store.Bank, error) {
	return s.store.DefaultBank(ctx, userID)
}

// Category resolves a suggested name to one of the user's existing
// categories. The model only ever picks a NAME from the provided list, and
// the pick is re-matched case-insensitively against that list, so the
// returned category is always one that was fetched for this user and tipo.
// Any miss, including accent mismatches, falls back to the first category.
func (s *Service) Category(ctx context.Context, userID, tipo, suggested string) (*store.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID, tipo)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		s.log.Debug("no categories available", slog.String("user_id", userID), slog.String("tipo", tipo))
		return nil, nil
	}
	if suggested == "" {
		return &categories[0], nil
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Nome
	}

	chosen, err := s.ai.ChooseCategory(ctx, suggested, names)
	if err != nil {
		s.log.Warn("category chooser failed, using first", slog.Any("error", err))
		return &categories[0], nil
	}

	for i := range categories {
		if strings.EqualFold(categories[i].Nome, chosen) {
			return &categories[i], nil
		}
	}

	s.log.Warn("chosen category not in list, using first",
		slog.String("suggested", suggested),
		slog.String("chosen", chosen),
	)
	return &categories[0], nil
}
