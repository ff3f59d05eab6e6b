package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

type convertOptions struct {
	bank     string
	password string
	format   string
	output   string
	workers  int
	header   bool
}

// convertResult is the outcome of one converted statement.
type convertResult struct {
	input  string
	output string
	info   *models.StatementInfo
}

func (c *cli) convertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [flags] <statement> [statement ...]",
		Short: "Convert statements into ledger files",
		Long: `Convert bank statement PDFs (or .txt exports) into ledger files.

Examples:
  # Auto-detect bank and convert to CSV
  statement-ledger convert statement.pdf

  # Password-protected TymeBank statement to Excel
  statement-ledger convert --bank=tymebank --password=8001015009087 --format=xlsx statement.pdf

  # Convert several statements in parallel into one directory
  statement-ledger convert --format=ofx --output=out/ jan.pdf feb.pdf mar.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = c.cfg.Output.Format
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = c.cfg.Convert.Workers
			}
			return c.runConvert(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.bank, "bank", "b", string(models.BankAuto), "bank layout: capitec, tymebank, other or auto")
	f.StringVarP(&opts.password, "password", "p", "", "password for encrypted statements")
	f.StringVarP(&opts.format, "format", "f", "csv", "output format: "+strings.Join(writer.Formats(), ", "))
	f.StringVarP(&opts.output, "output", "o", "", "output file (single input) or directory (defaults to the input path with a new extension)")
	f.IntVarP(&opts.workers, "workers", "w", 4, "statements converted in parallel")
	f.BoolVar(&opts.header, "header", true, "include statement metadata rows in CSV output")
	return cmd
}

func (c *cli) runConvert(cmd *cobra.Command, inputs []string, opts *convertOptions) error {
	if _, err := writer.New(opts.format); err != nil {
		return err
	}
	if strings.HasSuffix(opts.output, string(os.PathSeparator)) {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if opts.output != "" && len(inputs) > 1 && !isDir(opts.output) {
		return fmt.Errorf("--output must be a directory when converting %d statements", len(inputs))
	}

	svc := ingest.NewService(c.registry)
	log := logger.FromContext(cmd.Context())

	progressOut := io.Discard
	if len(inputs) > 1 {
		progressOut = cmd.ErrOrStderr()
	}
	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(progressOut),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Converting statements"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(progressOut) }),
	)

	results := make([]convertResult, len(inputs))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.workers, 1))
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}

			res, err := svc.Process(ctx, ingest.Request{
				Data:     data,
				Filename: filepath.Base(input),
				Bank:     models.BankType(strings.ToLower(opts.bank)),
				Password: opts.password,
			})
			if err != nil {
				if ingest.IsPasswordError(err) {
					return fmt.Errorf("%s: %w (use --password)", input, err)
				}
				return fmt.Errorf("%s: %w", input, err)
			}

			w, _ := writer.New(opts.format)
			if csvW, ok := w.(*writer.CSVWriter); ok {
				csvW.IncludeHeader = opts.header
			}
			outPath := outputPathFor(input, opts.output, w.Extension())
			if err := writer.WriteToFile(w, outPath, res.Statement); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			results[i] = convertResult{input: input, output: outPath, info: res.Statement}
			if err := bar.Add(1); err != nil {
				log.Warn().Err(err).Msg("failed to update progress bar")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		printSummary(out, r)
	}
	return nil
}

func printSummary(out io.Writer, r convertResult) {
	info := r.info
	fmt.Fprintf(out, "Processed: %s\n", r.input)
	fmt.Fprintf(out, "  Bank: %s\n", info.Bank)
	if info.AccountNumber != "" {
		fmt.Fprintf(out, "  Account number: %s\n", info.AccountNumber)
	}
	if info.StatementPeriod != "" {
		fmt.Fprintf(out, "  Period: %s\n", info.StatementPeriod)
	}
	debit, credit := info.Totals()
	fmt.Fprintf(out, "  Found %d transaction(s): debits %s, credits %s\n",
		len(info.Transactions), debit.StringFixed(2), credit.StringFixed(2))
	if len(info.Transactions) == 0 {
		fmt.Fprintln(out, "  Warning: No transactions found. Try specifying the bank explicitly with --bank.")
	}
	if n := len(info.Diagnostics); n > 0 {
		fmt.Fprintf(out, "  Skipped %d line(s); rerun with --log-level=warn for details\n", n)
	}
	fmt.Fprintf(out, "  Output: %s\n", r.output)
}

// outputPathFor picks the file a converted statement is written to.
func outputPathFor(input, output, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + ext
	switch {
	case output == "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
	case isDir(output) || strings.HasSuffix(output, string(os.PathSeparator)):
		return filepath.Join(output, base)
	default:
		return output
	}
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
