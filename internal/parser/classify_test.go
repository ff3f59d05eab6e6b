package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		bank     models.BankType
		desc     string
		category string
		sign     int
		want     models.Direction
		wantRule string
	}{
		{"credit keyword", models.BankCapitec, "Payment Received: Invoice 44", "", 0, models.Credit, ruleCreditKeyword},
		{"credit beats debit keyword", models.BankCapitec, "Refund Purchase", "", 0, models.Credit, ruleCreditKeyword},
		{"debit keyword", models.BankCapitec, "Prepaid Purchase", "Cellphone", 0, models.Debit, ruleDebitKeyword},
		{"credit category word", models.BankCapitec, "J Smith", "Other Income", 0, models.Credit, ruleCreditCategory},
		{"debit category word", models.BankCapitec, "Checkers", "Digital Payments", 0, models.Debit, ruleDebitCategory},
		{"negative sign", models.BankOther, "Coffee", "", -1, models.Debit, ruleSign},
		{"money in column", models.BankTymeBank, "Salary", "", 1, models.Credit, ruleSign},
		{"capitec default", models.BankCapitec, "Something", "", 0, models.Debit, ruleDefault},
		{"generic default", models.BankOther, "Something", "", 0, models.Credit, ruleDefault},
		{"empty description", models.BankCapitec, "", "", 0, models.Debit, ruleDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := classify(testProfile(t, tt.bank), tt.desc, tt.category, tt.sign)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestClassify_Total(t *testing.T) {
	inputs := []string{"", " ", "???", "Zebra crossing", "PAYMENT RECEIVED", "fee", "ñandú"}
	for _, bank := range []models.BankType{models.BankCapitec, models.BankTymeBank, models.BankOther} {
		p := testProfile(t, bank)
		for _, in := range inputs {
			for _, sign := range []int{-1, 0, 1} {
				got, _ := classify(p, in, "", sign)
				assert.Contains(t, []models.Direction{models.Credit, models.Debit}, got)
			}
		}
	}
}
