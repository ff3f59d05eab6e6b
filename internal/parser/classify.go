package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Classification rules, in priority order. The winning rule is logged per record.
const (
	ruleCreditKeyword  = "credit-keyword"
	ruleDebitKeyword   = "debit-keyword"
	ruleCreditCategory = "credit-category"
	ruleDebitCategory  = "debit-category"
	ruleSign           = "sign"
	ruleDefault        = "default"
)

// classify assigns a direction. It always returns one: when nothing else
// decides, the profile's direction for unsigned figures applies.
func classify(p *config.Profile, description, category string, sign int) (models.Direction, string) {
	desc := strings.ToLower(description)
	switch {
	case containsAny(desc, p.CreditKeywords):
		return models.Credit, ruleCreditKeyword
	case containsAny(desc, p.DebitKeywords):
		return models.Debit, ruleDebitKeyword
	}

	if category != "" {
		cat := strings.ToLower(category)
		switch {
		case containsAny(cat, p.CreditCategoryWords):
			return models.Credit, ruleCreditCategory
		case containsAny(cat, p.DebitCategoryWords):
			return models.Debit, ruleDebitCategory
		}
	}

	switch {
	case sign < 0:
		return models.Debit, ruleSign
	case sign > 0:
		return models.Credit, ruleSign
	}
	return p.UnsignedDirection, ruleDefault
}
