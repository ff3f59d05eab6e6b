package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// extractMetadata fills in the account number and statement period when the
// profile knows where to find them.
func (e *Engine) extractMetadata(text string, info *models.StatementInfo) {
	if re := e.profile.AccountNumber; re != nil {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			info.AccountNumber = m[1]
		}
	}
	if re := e.profile.StatementPeriod; re != nil {
		if m := re.FindStringSubmatch(text); len(m) > 2 {
			info.StatementPeriod = strings.TrimSpace(m[1]) + " - " + strings.TrimSpace(m[2])
		}
	}
}
