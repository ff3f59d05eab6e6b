package writer

import (
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// fitidNamespace scopes the name-based UUIDs used as OFX transaction ids, so
// re-exporting the same statement yields the same ids and importers can dedupe.
var fitidNamespace = uuid.MustParse("8f0c9d4e-2b1a-5c3d-9e7f-6a5b4c3d2e1f")

// OFXWriter writes an OFX 2.0.3 bank statement response.
type OFXWriter struct {
	Currency string
}

func (w *OFXWriter) ContentType() string { return "application/x-ofx" }
func (w *OFXWriter) Extension() string   { return "ofx" }

func (w *OFXWriter) Write(out io.Writer, info *models.StatementInfo) error {
	cur, err := ofxgo.NewCurrSymbol(w.Currency)
	if err != nil {
		return fmt.Errorf("invalid OFX currency %q: %w", w.Currency, err)
	}

	account := info.AccountNumber
	if account == "" {
		account = "UNKNOWN"
	}
	stmtKey := string(info.Bank) + "|" + account + "|" + info.StatementPeriod

	var (
		txns        []ofxgo.Transaction
		first, last civil.Date
		closing     decimal.Decimal
	)
	for i, txn := range info.Transactions {
		amount := txn.Amount
		trnType := ofxgo.TrnTypeCredit
		if txn.Direction == models.Debit {
			amount = amount.Neg()
			trnType = ofxgo.TrnTypeDebit
		}
		txns = append(txns, ofxgo.Transaction{
			TrnType:  trnType,
			DtPosted: ofxDate(txn.Date),
			TrnAmt:   ofxAmount(amount),
			FiTID:    ofxgo.String(uuid.NewSHA1(fitidNamespace, []byte(stmtKey+"|"+txn.Reference)).String()),
			Name:     ofxgo.String(truncate(txn.Description, 32)),
			Memo:     ofxgo.String(txn.Category),
		})
		if i == 0 || txn.Date.Before(first) {
			first = txn.Date
		}
		if i == 0 || txn.Date.After(last) {
			last = txn.Date
			closing = txn.Balance
		}
	}
	if len(info.Transactions) == 0 {
		first = civil.DateOf(time.Unix(0, 0).UTC())
		last = first
	}

	resp := ofxgo.Response{
		Version: ofxgo.OfxVersion203,
		Signon: ofxgo.SignonResponse{
			Status:   ofxgo.Status{Code: 0, Severity: "INFO"},
			DtServer: ofxDate(last),
			Language: "ENG",
		},
		Bank: []ofxgo.Message{&ofxgo.StatementResponse{
			TrnUID: ofxgo.UID(uuid.NewSHA1(fitidNamespace, []byte(stmtKey)).String()),
			Status: ofxgo.Status{Code: 0, Severity: "INFO"},
			CurDef: *cur,
			BankAcctFrom: ofxgo.BankAcct{
				BankID:   ofxgo.String(string(info.Bank)),
				AcctID:   ofxgo.String(account),
				AcctType: ofxgo.AcctTypeChecking,
			},
			BankTranList: &ofxgo.TransactionList{
				DtStart:      ofxDate(first),
				DtEnd:        ofxDate(last),
				Transactions: txns,
			},
			BalAmt: ofxAmount(closing),
			DtAsOf: ofxDate(last),
		}},
	}

	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal OFX: %w", err)
	}
	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write OFX: %w", err)
	}
	return nil
}

func ofxDate(d civil.Date) ofxgo.Date {
	return *ofxgo.NewDateGMT(d.Year, d.Month, d.Day, 0, 0, 0, 0)
}

func ofxAmount(d decimal.Decimal) ofxgo.Amount {
	var a ofxgo.Amount
	a.SetString(d.String())
	return a
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
