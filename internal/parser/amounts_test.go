package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestMatcher_ParseToken(t *testing.T) {
	m := newMatcher(testProfile(t, models.BankTymeBank))

	tests := []struct {
		field       string
		ok          bool
		value       string
		sign        int
		placeholder bool
		malformed   bool
	}{
		{field: "4,320.55", ok: true, value: "4320.55"},
		{field: "4320.55", ok: true, value: "4320.55"},
		{field: "-150.00", ok: true, value: "-150", sign: -1},
		{field: "+150.00", ok: true, value: "150", sign: 1},
		{field: "R150.00", ok: true, value: "150"},
		{field: "-R150.00", ok: true, value: "-150", sign: -1},
		{field: "-", ok: true, value: "0", placeholder: true},
		{field: "20,000,000.00", ok: true, value: "0", malformed: true},
		{field: "150", ok: false},
		{field: "150.5", ok: false},
		{field: "12,34.00", ok: false},
		{field: "(16916070)", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			tok, ok := m.parseToken(tt.field)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.value, tok.value.String())
			assert.Equal(t, tt.sign, tok.sign)
			assert.Equal(t, tt.placeholder, tok.placeholder)
			assert.Equal(t, tt.malformed, tok.malformed)
		})
	}
}

func TestMatcher_SplitTrailing(t *testing.T) {
	m := newMatcher(testProfile(t, models.BankCapitec))

	tests := []struct {
		text     string
		head     []string
		tokens   int
		category string
	}{
		{"Prepaid Purchase Cellphone 150.00 0.00 4320.55", []string{"Prepaid", "Purchase", "Cellphone"}, 3, ""},
		{"Cash Withdrawal 500.00 7.50 4000.00 Cash Withdrawal", []string{"Cash", "Withdrawal"}, 3, "Cash Withdrawal"},
		{"Invoice 44", []string{"Invoice", "44"}, 0, ""},
		{"Cash Withdrawal", []string{"Cash", "Withdrawal"}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := m.splitTrailing(tt.text)
			assert.Equal(t, tt.head, got.head)
			assert.Len(t, got.tokens, tt.tokens)
			assert.Equal(t, tt.category, got.category)
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		bank    models.BankType
		text    string
		pattern string
		desc    string
		cat     string
		value   string
		sign    int
		fee     string
		balance string
		feeOnly bool
	}{
		{
			name: "triple", bank: models.BankCapitec,
			text:    "Prepaid Purchase Cellphone 150.00 0.00 4320.55",
			pattern: config.PatternTriple, desc: "Prepaid Purchase", cat: "Cellphone",
			value: "150", fee: "0", balance: "4320.55",
		},
		{
			name: "pair", bank: models.BankCapitec,
			text:    "Transfer to Savings Transfer 1,000.00 3,320.55",
			pattern: config.PatternPair, desc: "Transfer to", cat: "Transfer",
			value: "1000", fee: "0", balance: "3320.55",
		},
		{
			name: "pair on fee posting", bank: models.BankCapitec,
			text:    "Monthly Admin Fee Fees 7.50 3313.05",
			pattern: config.PatternPair, desc: "Monthly Admin Fee", cat: "Fees",
			value: "7.5", fee: "0", balance: "3313.05", feeOnly: true,
		},
		{
			name: "pair on fee refund", bank: models.BankCapitec,
			text:    "Admin Fee Refund 7.50 4163.05",
			pattern: config.PatternPair, desc: "Admin Fee Refund",
			value: "7.5", fee: "0", balance: "4163.05", feeOnly: true,
		},
		{
			name: "fee inside a word", bank: models.BankOther,
			text:    "Refund Coffee Corner 45.00 1000.00",
			pattern: config.PatternPair, desc: "Refund Coffee Corner",
			value: "45", fee: "0", balance: "1000",
		},
		{
			name: "single", bank: models.BankOther,
			text:    "Coffee -4.50",
			pattern: config.PatternSingle, desc: "Coffee",
			value: "4.5", sign: -1, fee: "0", balance: "0",
		},
		{
			name: "embedded", bank: models.BankCapitec,
			text:    "Paid R150.00 to vendor balance 900.00 ref",
			pattern: config.PatternEmbedded, desc: "Paid to vendor balance ref",
			value: "150", fee: "0", balance: "900",
		},
		{
			name: "columnar money in", bank: models.BankTymeBank,
			text:    "Salary - - 12,000.00 12,500.00",
			pattern: config.PatternColumnar, desc: "Salary",
			value: "12000", sign: 1, fee: "0", balance: "12500",
		},
		{
			name: "columnar money out with fee", bank: models.BankTymeBank,
			text:    "ATM Withdrawal 5.00 1,000.00 - 10,649.80",
			pattern: config.PatternColumnar, desc: "ATM Withdrawal",
			value: "1000", sign: -1, fee: "5", balance: "10649.8",
		},
		{
			name: "columnar fees only", bank: models.BankTymeBank,
			text:    "Monthly Fee 60.00 - - 10,589.80",
			pattern: config.PatternColumnar, desc: "Monthly Fee",
			value: "60", sign: -1, fee: "0", balance: "10589.8", feeOnly: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatcher(testProfile(t, tt.bank))
			got, ok := m.match(&window{text: tt.text, anchorText: tt.text})
			require.True(t, ok)

			assert.Equal(t, tt.pattern, got.pattern)
			assert.Equal(t, tt.desc, got.description)
			assert.Equal(t, tt.cat, got.category)
			assert.Equal(t, tt.value, got.value.String())
			assert.Equal(t, tt.sign, got.sign)
			assert.Equal(t, tt.fee, got.fee.String())
			assert.Equal(t, tt.balance, got.balance.String())
			assert.Equal(t, tt.feeOnly, got.feeOnly)
		})
	}
}

func TestMatcher_NoFigures(t *testing.T) {
	m := newMatcher(testProfile(t, models.BankCapitec))
	_, ok := m.match(&window{text: "Card Purchase: Checkers", anchorText: "Card Purchase: Checkers"})
	assert.False(t, ok)
}
