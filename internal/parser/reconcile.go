package parser

import (
	"sort"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// ledgerLess is the output ordering: newest date first, then balances in the
// profile's order. An unknown balance reads as zero and sorts like any other figure.
func ledgerLess(a, b models.ParsedTransaction, order config.BalanceOrder) bool {
	if a.Date != b.Date {
		return a.Date.After(b.Date)
	}
	if order == config.BalanceDescending {
		return a.Balance.GreaterThan(b.Balance)
	}
	return a.Balance.LessThan(b.Balance)
}

// reconcile sorts the ledger in place. With ascending balances the most recent
// posting in a day (the lowest running balance after spending) comes first.
// Ties keep emission order, which puts a fee directly after its parent.
func reconcile(txns []models.ParsedTransaction, order config.BalanceOrder) {
	sort.SliceStable(txns, func(i, j int) bool {
		return ledgerLess(txns[i], txns[j], order)
	})
}

// InOrder reports whether txns already satisfy the ledger ordering.
func InOrder(txns []models.ParsedTransaction, order config.BalanceOrder) bool {
	return sort.SliceIsSorted(txns, func(i, j int) bool {
		return ledgerLess(txns[i], txns[j], order)
	})
}
