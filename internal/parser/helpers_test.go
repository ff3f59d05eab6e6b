package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

func testRegistry(t *testing.T) *config.Registry {
	t.Helper()
	reg, err := config.DefaultRegistry()
	require.NoError(t, err)
	return reg
}

func testProfile(t *testing.T, bank models.BankType) *config.Profile {
	t.Helper()
	p, err := testRegistry(t).Get(bank)
	require.NoError(t, err)
	return p
}

func testEngine(t *testing.T, bank models.BankType) *Engine {
	t.Helper()
	return NewEngine(testProfile(t, bank))
}

// summarize renders a parse result one record or diagnostic per line, for golden comparison.
func summarize(info *models.StatementInfo) string {
	var b strings.Builder
	for _, txn := range info.Transactions {
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|%s|%s|%s\n",
			txn.Date, txn.Description, txn.Amount.StringFixed(2), txn.Direction, txn.Category,
			txn.Fee.StringFixed(2), txn.Balance.StringFixed(2), txn.Reference, txn.ParentReference)
	}
	for _, d := range info.Diagnostics {
		fmt.Fprintf(&b, "!%s|%d|%s\n", d.Reason, d.LineNum, d.Text)
	}
	return b.String()
}
