// Package api serves statement conversion over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                       `json:"success"`
	Error        string                     `json:"error,omitempty"`
	RunID        string                     `json:"runId,omitempty"`
	Bank         string                     `json:"bank,omitempty"`
	AccountInfo  *AccountInfo               `json:"accountInfo,omitempty"`
	Transactions []models.ParsedTransaction `json:"transactions"`
	CSV          string                     `json:"csv,omitempty"`
	TotalDebit   decimal.Decimal            `json:"totalDebit"`
	TotalCredit  decimal.Decimal            `json:"totalCredit"`
	Count        int                        `json:"count"`
	Diagnostics  []models.Diagnostic        `json:"diagnostics,omitempty"`
	RawText      string                     `json:"rawText,omitempty"`
	Version      string                     `json:"version,omitempty"`
}

// AccountInfo holds account metadata for the JSON response.
type AccountInfo struct {
	Number string `json:"number,omitempty"`
	Period string `json:"period,omitempty"`
}

// BankInfo describes one supported statement layout.
type BankInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ReferencePrefix string   `json:"referencePrefix"`
	DateLayouts     []string `json:"dateLayouts"`
	AmountPatterns  []string `json:"amountPatterns"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	service  *ingest.Service
	metrics  *metrics.Recorder
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	version  string
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetrics records exports on rec and serves gatherer on /metrics.
func WithMetrics(rec *metrics.Recorder, gatherer prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.metrics = rec
		h.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handlers over a parsing service.
func NewHandler(svc *ingest.Service, opts ...Option) *Handler {
	h := &Handler{service: svc, log: zerolog.Nop(), version: "dev"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewApp builds a fiber app with the API routes registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 32
	}
	app := fiber.New(fiber.Config{
		AppName:               "statement-ledger",
		BodyLimit:             bodyLimitMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.logRequests)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Get("/api/banks", h.HandleBanks)
	app.Post("/api/convert", h.HandleConvert)
	if h.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	h.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("http request")
	return err
}

// HandleHealth reports liveness and the loaded profile version.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(map[string]string{
		"status":   "ok",
		"engine":   "fiber",
		"version":  h.version,
		"profiles": h.service.Registry().Version(),
	})
}

// HandleBanks lists the statement layouts the server can parse.
func (h *Handler) HandleBanks(c *fiber.Ctx) error {
	banks := make([]BankInfo, 0)
	for _, p := range h.service.Registry().Profiles() {
		info := BankInfo{
			ID:              string(p.Bank),
			Name:            p.Name,
			ReferencePrefix: p.ReferencePrefix,
			AmountPatterns:  p.AmountPatterns,
		}
		for _, df := range p.DateFormats {
			info.DateLayouts = append(info.DateLayouts, df.Layout)
		}
		banks = append(banks, info)
	}
	return c.JSON(banks)
}

// HandleConvert parses an uploaded statement. Without a format field the
// ledger is returned as JSON; with one the rendered export is downloaded.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".pdf" && ext != ".txt" {
		return writeError(c, fiber.StatusBadRequest, "Only PDF and plain-text statements are supported.")
	}

	format := strings.ToLower(c.FormValue("format"))
	var out writer.Writer
	if format != "" {
		if out, err = writer.New(format); err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}

	ctx := logger.WithContext(c.UserContext(), h.log)
	res, err := h.service.Process(ctx, ingest.Request{
		Data:     data,
		Filename: fh.Filename,
		Bank:     models.BankType(strings.ToLower(c.FormValue("bank"))),
		Password: c.FormValue("password"),
	})
	if err != nil {
		return writeError(c, statusFor(err), err.Error())
	}
	info := res.Statement

	if out != nil {
		var buf bytes.Buffer
		err := out.Write(&buf, info)
		h.metrics.ObserveExport(format, err)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("%s generation failed: %v", format, err))
		}
		name := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename)) + "." + out.Extension()
		c.Set(fiber.HeaderContentType, out.ContentType())
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		c.Set("X-Run-Id", res.RunID)
		return c.Send(buf.Bytes())
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if err := csvWriter.Write(&csvBuf, info); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	debit, credit := info.Totals()
	resp := ConvertResponse{
		Success:      true,
		RunID:        res.RunID,
		Bank:         string(info.Bank),
		Transactions: info.Transactions,
		CSV:          csvBuf.String(),
		TotalDebit:   debit,
		TotalCredit:  credit,
		Count:        len(info.Transactions),
		Diagnostics:  info.Diagnostics,
		RawText:      strings.Join(res.Pages, "\n--- PAGE BREAK ---\n"),
		Version:      h.version,
	}
	if info.AccountNumber != "" || info.StatementPeriod != "" {
		resp.AccountInfo = &AccountInfo{Number: info.AccountNumber, Period: info.StatementPeriod}
	}
	return c.JSON(resp)
}

// statusFor maps a parse failure to an HTTP status.
func statusFor(err error) int {
	var ingestErr *ingest.Error
	switch {
	case ingest.IsPasswordError(err):
		return fiber.StatusUnauthorized
	case errors.Is(err, config.ErrUnknownBank):
		return fiber.StatusBadRequest
	case errors.Is(err, extractor.ErrUnreadableDocument):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &ingestErr) && ingestErr.Stage == ingest.StageDetect:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return writeError(c, status, err.Error())
}
