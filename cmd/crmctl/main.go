// Command crmctl runs operator tasks against the CRM database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"salescrm/internal/config"
	"salescrm/internal/database"
	"salescrm/internal/repository"
)

// cli is the state shared by every subcommand, set up in PersistentPreRunE.
type cli struct {
	databaseURL string
	verbose     bool

	cfg *config.AppConfig
	log *zap.Logger
	db  *repository.DB
}

// execute runs one crmctl invocation. The database is closed even when
// the subcommand fails.
func execute(args []string, out io.Writer) error {
	c := &cli{}
	defer c.close()
	root := newRootCmd(c, out)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(c *cli, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operator tasks for the CRM database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.databaseURL, "database", "", "database URL (overrides DATABASE_URL)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newMigrateCmd(c),
		newSeedCmd(c),
		newReconcileCmd(c),
		newTokensCmd(c),
	)
	return root
}

func (c *cli) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.databaseURL != "" {
		cfg.DatabaseURL = c.databaseURL
	}
	c.cfg = cfg

	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if c.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if c.log, err = zc.Build(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	gdb, err := database.Connect(cfg.DatabaseURL, c.log)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	c.db = repository.NewDB(gdb)
	return nil
}

func (c *cli) close() {
	if c.db != nil {
		if sqlDB, err := c.db.Gorm().DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
