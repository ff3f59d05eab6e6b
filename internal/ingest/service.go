// Package ingest turns uploaded statement documents into reconstructed ledgers.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/parser"
)

// ExtractFunc produces page text from document bytes.
type ExtractFunc func(ctx context.Context, data []byte, password string) ([]string, error)

// Request is one statement to parse.
type Request struct {
	Data     []byte
	Filename string
	Bank     models.BankType
	Password string
}

// Result is a parsed statement plus the text it came from.
type Result struct {
	RunID     string
	Statement *models.StatementInfo
	Pages     []string
}

// Service wires text extraction to the parsing engine. It is safe for concurrent use.
type Service struct {
	registry *config.Registry
	extract  ExtractFunc
	metrics  *metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor replaces the document text extractor.
func WithExtractor(fn ExtractFunc) Option {
	return func(s *Service) { s.extract = fn }
}

// WithMetrics records parse outcomes on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService creates a Service over the given bank profiles.
func NewService(reg *config.Registry, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		extract:  extractor.ExtractText,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the bank profiles the service parses with.
func (s *Service) Registry() *config.Registry { return s.registry }

// Process extracts text from the document and parses it. Extraction failures
// and unknown banks are fatal and returned as *Error; per-line problems are
// reported as diagnostics on the statement.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().
		Str("run_id", runID).
		Str("file", req.Filename).
		Str("bank", string(req.Bank)).
		Int("bytes", len(req.Data)).
		Logger()

	res, err := s.process(ctx, log, req)
	bank := req.Bank
	if res != nil {
		res.RunID = runID
		bank = res.Statement.Bank
	}
	s.metrics.ObserveParse(bank, resultOf(err), time.Since(start))

	if err != nil {
		log.Error().Err(err).Msg("statement failed")
		return nil, err
	}
	s.metrics.ObserveStatement(res.Statement)

	debit, credit := res.Statement.Totals()
	log.Info().
		Str("bank", string(res.Statement.Bank)).
		Int("transactions", len(res.Statement.Transactions)).
		Int("diagnostics", len(res.Statement.Diagnostics)).
		Str("total_debit", debit.StringFixed(2)).
		Str("total_credit", credit.StringFixed(2)).
		Dur("elapsed", time.Since(start)).
		Msg("statement parsed")
	return res, nil
}

func (s *Service) process(ctx context.Context, log zerolog.Logger, req Request) (*Result, error) {
	fail := func(bank models.BankType, stage string, err error) error {
		return &Error{Bank: bank, Size: len(req.Data), Stage: stage, Err: err}
	}

	// Reject an unknown bank before touching the document.
	if req.Bank == "" {
		req.Bank = models.BankAuto
	}
	if req.Bank != models.BankAuto {
		if _, err := s.registry.Get(req.Bank); err != nil {
			return nil, fail(req.Bank, StageProfile, err)
		}
	}

	pages, err := s.extract(ctx, req.Data, req.Password)
	if err != nil {
		return nil, fail(req.Bank, StageExtract, err)
	}

	bank := req.Bank
	if bank == models.BankAuto {
		detected, err := parser.AutoDetect(s.registry, pages)
		if err != nil {
			return nil, fail(bank, StageDetect, err)
		}
		log.Debug().Str("detected", string(detected)).Msg("bank detected")
		bank = detected
	}

	engine, err := parser.New(s.registry, bank, parser.WithLogger(log))
	if err != nil {
		return nil, fail(bank, StageProfile, err)
	}
	info := engine.Parse(pages)
	if !parser.InOrder(info.Transactions, engine.Profile().BalanceOrder) {
		log.Error().Msg("ledger out of chronological order")
	}

	for reason, n := range info.DiagnosticCounts() {
		log.Warn().Str("reason", string(reason)).Int("count", n).Msg("lines skipped")
	}
	return &Result{Statement: info, Pages: pages}, nil
}
