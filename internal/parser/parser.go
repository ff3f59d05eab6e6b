package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Parser defines the interface for statement parsers.
type Parser interface {
	// Parse takes raw text from statement pages and returns the reconstructed ledger.
	Parse(pages []string) *models.StatementInfo
	// BankName returns the human-readable bank name.
	BankName() string
}

var _ Parser = (*Engine)(nil)

// New returns the engine for the given bank type.
func New(reg *config.Registry, bankType models.BankType, opts ...Option) (*Engine, error) {
	p, err := reg.Get(bankType)
	if err != nil {
		return nil, err
	}
	return NewEngine(p, opts...), nil
}

// AutoDetect tries to identify the bank from the statement text. Profiles are
// checked in registry order; the first with a matching marker wins.
func AutoDetect(reg *config.Registry, pages []string) (models.BankType, error) {
	combined := strings.ToLower(strings.Join(pages, "\n"))

	for _, p := range reg.Profiles() {
		if containsAny(combined, lowerMarkers(p.DetectMarkers)) {
			return p.Bank, nil
		}
	}

	return "", fmt.Errorf("could not auto-detect bank from statement content; please specify --bank flag")
}

func lowerMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		out = append(out, strings.ToLower(m))
	}
	return out
}
