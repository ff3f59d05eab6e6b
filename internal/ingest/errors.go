package ingest

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Stages at which a statement can fail.
const (
	StageExtract = "extract"
	StageDetect  = "detect"
	StageProfile = "profile"
)

// Error is a fatal statement failure with enough context to decide between
// retrying (for example re-prompting for a password) and giving up.
type Error struct {
	Bank  models.BankType
	Size  int
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s statement (%d bytes) failed at %s: %v", e.Bank, e.Size, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsPasswordError reports whether err asks for a (different) document password.
func IsPasswordError(err error) bool {
	return errors.Is(err, extractor.ErrPasswordRequired) || errors.Is(err, extractor.ErrIncorrectPassword)
}

// resultOf maps an error to its metrics label.
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case IsPasswordError(err):
		return metrics.ResultPassword
	case errors.Is(err, config.ErrUnknownBank):
		return metrics.ResultUnknownBank
	case errors.Is(err, extractor.ErrUnreadableDocument):
		return metrics.ResultUnreadable
	default:
		return metrics.ResultError
	}
}
