package parser

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// splitFee derives the separate fee debit for a posting that carried a fee.
// The parent keeps its fee field; the new record points back at it.
func splitFee(p *config.Profile, parent models.ParsedTransaction, ref string) (models.ParsedTransaction, bool) {
	if !parent.Fee.IsPositive() {
		return models.ParsedTransaction{}, false
	}
	return models.ParsedTransaction{
		Date:            parent.Date,
		Description:     parent.Description + p.FeeMarker,
		Amount:          parent.Fee,
		Direction:       models.Debit,
		Category:        p.FeeCategory,
		Fee:             decimal.Zero,
		Balance:         parent.Balance,
		Reference:       ref,
		ParentReference: parent.Reference,
	}, true
}
