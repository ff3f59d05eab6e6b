package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestExtractCategory(t *testing.T) {
	vocab := testProfile(t, models.BankCapitec).Categories

	tests := []struct {
		input    string
		wantDesc string
		wantCat  string
	}{
		{"Prepaid Purchase Cellphone", "Prepaid Purchase", "Cellphone"},
		{"Payment Received Other Income", "Payment Received", "Other Income"},
		// Longest label wins over a shorter one it ends with.
		{"Dividend Investment Income", "Dividend", "Investment Income"},
		{"Internal Transfers", "Internal", "Transfers"},
		{"Cash Withdrawal", "Cash Withdrawal", ""},
		{"Cellphone", "Cellphone", ""},
		{"Smartcellphone", "Smartcellphone", ""},
		{"Monthly Fees Fees", "Monthly", "Fees"},
		// Stacked labels all go; the outermost is kept.
		{"Recurring Transfer To Savings Transfer", "Recurring Transfer To", "Transfer"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			desc, cat := extractCategory(tt.input, vocab)
			if desc != tt.wantDesc || cat != tt.wantCat {
				t.Errorf("extractCategory(%q) = (%q, %q), want (%q, %q)", tt.input, desc, cat, tt.wantDesc, tt.wantCat)
			}
		})
	}
}

func TestExtractCategory_Idempotent(t *testing.T) {
	vocab := testProfile(t, models.BankCapitec).Categories
	inputs := []string{
		"Prepaid Purchase Cellphone",
		"Cash Withdrawal",
		"Transfer to Savings Transfer",
		"Monthly Fees Fees",
		"Recurring Transfer To Savings Transfer",
		"Groceries Groceries",
		"Payment Received: Invoice 44",
	}

	for _, in := range inputs {
		desc, _ := extractCategory(in, vocab)
		again, cat := extractCategory(desc, vocab)
		assert.Equal(t, desc, again, "second pass changed %q", in)
		assert.Empty(t, cat, "second pass found a category in %q", desc)
	}
}
