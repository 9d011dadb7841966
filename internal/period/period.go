// Package period parses PT-BR month references out of free text, for report
// requests like "fluxo de caixa de setembro de 2024".
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var numericPattern = regexp.MustCompile(`(\d{1,2})[/-](\d{4})`)

type Period struct {
	Start time.Time
	End   time.Time
}

// Label renders the period as "mês/ano", e.g. "setembro/2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s/%d", monthNames[p.Start.Month()-1], p.Start.Year())
}

// Parse finds a month reference in the message. It tries a PT-BR month name
// with an optional year ("setembro", "setembro de 2024"), then the numeric
// MM/YYYY or MM-YYYY form, and defaults to the month of now.
func Parse(message string, now time.Time) Period {
	text := strings.ToLower(strings.TrimSpace(message))

	for i, name := range monthNames {
		if !strings.Contains(text, name) {
			continue
		}
		year := now.Year()
		yearPattern := regexp.MustCompile(name + `\s*(?:de\s*)?(\d{4})`)
		if m := yearPattern.FindStringSubmatch(text); m != nil {
			if y, err := strconv.Atoi(m[1]); err == nil {
				year = y
			}
		}
		return monthOf(year, time.Month(i+1), now.Location())
	}

	if m := numericPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return monthOf(year, time.Month(month), now.Location())
		}
	}

	return monthOf(now.Year(), now.Month(), now.Location())
}

func monthOf(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Period{Start: start, End: end}
}
