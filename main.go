package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/logger"
)

var version = "dev"

// Exit codes.
const (
	exitFailure     = 1
	exitUnknownBank = 2
	exitPassword    = 3
)

// cli carries the state shared by every subcommand once the root pre-run has loaded it.
type cli struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	log      zerolog.Logger
	registry *config.Registry
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "statement-ledger",
		Short: "Bank statement to transaction ledger converter",
		Long: `statement-ledger reconstructs an ordered transaction ledger from bank
statement PDFs or text exports.

Supported layouts:
  capitec   - Capitec Bank (DD/MM/YYYY, category after description)
  tymebank  - TymeBank (D Mon YYYY, fee / money out / money in / balance columns)
  other     - loose generic matcher for anything else`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: $HOME/.config/statement-ledger/ledger.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.String("banks-file", "", "bank profile YAML replacing the built-in profiles")

	_ = c.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = c.v.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = c.v.BindPFlag("banks.file", pf.Lookup("banks-file"))

	root.AddCommand(c.convertCmd())
	root.AddCommand(c.parseCmd())
	root.AddCommand(c.serveCmd())
	root.AddCommand(c.banksCmd())
	root.AddCommand(c.versionCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	c.log = log

	reg, err := config.LoadRegistry(cfg.Banks.File)
	if err != nil {
		return err
	}
	c.registry = reg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))
	return nil
}

func exitCode(err error) int {
	switch {
	case ingest.IsPasswordError(err):
		return exitPassword
	case errors.Is(err, config.ErrUnknownBank):
		return exitUnknownBank
	default:
		return exitFailure
	}
}
