package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

func (c *cli) parseCmd() *cobra.Command {
	var bank, format string
	var showDiagnostics bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse statement text and print the ledger",
		Long: `Parse already-extracted statement text (a .txt file or standard input)
and print the reconstructed ledger. Pages may be separated by form feeds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				name = "stdin"
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				name = args[0]
				data, err = os.ReadFile(name)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read statement text: %w", err)
			}

			w, err := writer.New(format)
			if err != nil {
				return err
			}

			svc := ingest.NewService(c.registry)
			res, err := svc.Process(cmd.Context(), ingest.Request{
				Data:     data,
				Filename: name,
				Bank:     models.BankType(strings.ToLower(bank)),
			})
			if err != nil {
				return err
			}

			if err := w.Write(cmd.OutOrStdout(), res.Statement); err != nil {
				return err
			}
			if showDiagnostics {
				errOut := cmd.ErrOrStderr()
				for _, d := range res.Statement.Diagnostics {
					fmt.Fprintf(errOut, "line %d: %s: %s\n", d.LineNum, d.Reason, d.Text)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&bank, "bank", "b", string(models.BankAuto), "bank layout: capitec, tymebank, other or auto")
	f.StringVarP(&format, "format", "f", "json", "output format: "+strings.Join(writer.Formats(), ", "))
	f.BoolVar(&showDiagnostics, "diagnostics", false, "print skipped lines to stderr")
	return cmd
}
