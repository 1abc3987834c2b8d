// Package main is the mysql2pg CLI: a single positional argument naming a
// JSON or XML configuration file, following spec §6's "one executable,
// one argument" invocation shape. Wiring and exit-code handling are built
// the way the teacher's cmd/smf/main.go wires its own subcommands: a
// single root cobra.Command whose RunE does all the work and whose
// returned error drives os.Exit.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mysql2pg/internal/config"
	"mysql2pg/internal/discover"
	"mysql2pg/internal/logx"
	"mysql2pg/internal/metrics"
	"mysql2pg/internal/orchestrator"
	"mysql2pg/internal/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mysql2pg <config-file>",
		Short: "Migrate a MySQL database's structure and data into PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logx.New("logs")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Close()

	if cfg.TempDirPath != "" {
		if err := os.MkdirAll(cfg.TempDirPath, 0o755); err != nil {
			return fmt.Errorf("creating temp dir: %w", err)
		}
		defer os.RemoveAll(cfg.TempDirPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceDSN, mysqlDBName, err := cfg.SourceDSN()
	if err != nil {
		return err
	}
	targetDSN, err := cfg.TargetDSN()
	if err != nil {
		return err
	}

	disc, err := discover.Connect(ctx, "mysql", sourceDSN, "postgres", targetDSN)
	if err != nil {
		return err
	}
	defer disc.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics_server_failed", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	orch := orchestrator.New(cfg, disc, log, m, orchestrator.Options{Workers: 1})

	summaries, err := orch.Run(ctx, mysqlDBName)
	if err != nil {
		return err
	}

	rendered := report.Format(summaries)
	fmt.Print(rendered)
	if err := log.WriteReport(rendered); err != nil {
		return fmt.Errorf("writing report log: %w", err)
	}

	return nil
}
