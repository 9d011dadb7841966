package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/ai"
)

// Candidate is the unvalidated transaction shape parsed straight from the
// model's JSON. Dates stay as strings here; Normalize turns them into times.
type Candidate struct {
	Descricao         string           `json:"descricao"`
	Valor             *decimal.Decimal `json:"valor"`
	TipoLancamento    string           `json:"tipo_lancamento" validate:"omitempty,oneof=receita despesa"`
	DataCompetencia   string           `json:"data_competencia" validate:"omitempty,datetime=2006-01-02"`
	DataPagamento     string           `json:"data_pagamento" validate:"omitempty,datetime=2006-01-02"`
	DataVencimento    string           `json:"data_vencimento" validate:"omitempty,datetime=2006-01-02"`
	CategoriaSugerida string           `json:"categoria_sugerida"`
	NeedsFix          bool             `json:"needs_fix"`
	Missing           []string         `json:"missing"`
	Confidence        float64          `json:"confidence" validate:"gte=0,lte=1"`
	Suggestions       []string         `json:"suggestions"`
}

// UnmarshalJSON coerces valor: models occasionally quote the number or emit
// text like "R$ 50,00". Anything unparseable becomes null and surfaces later
// as a missing field instead of failing the whole reply.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type candidate Candidate
	aux := struct {
		Valor json.RawMessage `json:"valor"`
		*candidate
	}{candidate: (*candidate)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Valor = nil
	if len(aux.Valor) > 0 && !bytes.Equal(aux.Valor, []byte("null")) {
		var d decimal.Decimal
		if json.Unmarshal(aux.Valor, &d) == nil {
			c.Valor = &d
		}
	}
	return nil
}

// Record is the fully defaulted candidate every downstream step assumes.
type Record struct {
	Tipo              string
	Descricao         string
	Valor             *decimal.Decimal
	DataCompetencia   time.Time
	DataPagamento     *time.Time
	DataVencimento    *time.Time
	CategoriaSugerida string
	NeedsFix          bool
	Missing           []string
	Confidence        float64
	Suggestions       []string
}

var validate = validator.New()

// ParseCandidate decodes and schema-checks a model response. A reply that
// parses as JSON but breaks the contract fails here, not deeper in the
// pipeline.
func ParseCandidate(raw string) (Candidate, error) {
	var c Candidate
	if err := json.Unmarshal([]byte(ai.StripFences(raw)), &c); err != nil {
		return Candidate{}, fmt.Errorf("parse candidate json: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return Candidate{}, fmt.Errorf("candidate schema: %w", err)
	}
	// needs_fix without named fields would render an empty "Faltando:" reply.
	if c.NeedsFix && len(c.Missing) == 0 {
		return Candidate{}, fmt.Errorf("candidate schema: needs_fix set without missing fields")
	}
	return c, nil
}
