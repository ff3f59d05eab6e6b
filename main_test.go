package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/ingest"
)

const capitecText = `Capitec Bank Limited
21/10/2025 Prepaid Purchase Cellphone 150.00 0.00 4320.55
21/10/2025 Cash Withdrawal 500.00 7.50 3813.05 Cash Withdrawal
`

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeStatement(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(capitecText), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	path := writeStatement(t, t.TempDir(), "october.txt")

	out, err := run(t, "", "parse", "--bank", "capitec", path)
	require.NoError(t, err)

	var doc struct {
		Bank  string `json:"bank"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "capitec", doc.Bank)
	assert.Equal(t, 3, doc.Count)
}

func TestParseCommand_Stdin(t *testing.T) {
	out, err := run(t, capitecText, "parse", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "# Bank,capitec")
	assert.Contains(t, out, "Cash Withdrawal (Fee)")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	jan := writeStatement(t, dir, "jan.txt")
	feb := writeStatement(t, dir, "feb.txt")
	outDir := filepath.Join(dir, "out") + string(os.PathSeparator)

	out, err := run(t, "", "convert", "--bank", "capitec", "--format", "json", "--output", outDir, "--workers", "2", jan, feb)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed: "+jan)
	assert.Contains(t, out, "Processed: "+feb)

	for _, name := range []string{"jan.json", "feb.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	path := writeStatement(t, t.TempDir(), "october.txt")

	_, err := run(t, "", "convert", "--format", "qif", path)
	assert.Error(t, err)

	_, err = run(t, "", "convert", "--bank", "mystery", path)
	require.Error(t, err)
	assert.Equal(t, exitUnknownBank, exitCode(err))

	_, err = run(t, "", "convert", "--output", filepath.Join(t.TempDir(), "single.csv"), path, path)
	assert.Error(t, err)
}

func TestBanksCommand(t *testing.T) {
	out, err := run(t, "", "banks")
	require.NoError(t, err)
	for _, id := range []string{"capitec", "tymebank", "other"} {
		assert.Contains(t, out, id)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "statement-ledger v"+version)
}

func TestOutputPathFor(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		input, output, ext, want string
	}{
		{"stmts/oct.pdf", "", "csv", "stmts/oct.csv"},
		{"stmts/oct.pdf", "ledger.xlsx", "xlsx", "ledger.xlsx"},
		{"stmts/oct.pdf", dir, "ofx", filepath.Join(dir, "oct.ofx")},
	}
	for _, tt := range tests {
		if got := outputPathFor(tt.input, tt.output, tt.ext); got != tt.want {
			t.Errorf("outputPathFor(%q, %q): got %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("statement.pdf: %w", err) }
	assert.Equal(t, exitPassword, exitCode(wrap(&ingest.Error{Err: extractor.ErrPasswordRequired})))
	assert.Equal(t, exitUnknownBank, exitCode(wrap(config.ErrUnknownBank)))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
}
