package main

import (
	"context"
	"fmt"
	"os"

	"abalone/adapters/rng"
	"abalone/adapters/table"
	"abalone/app"
	"abalone/internal/config"
	"abalone/internal/logging"
	"abalone/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "abalone",
		Short: "Resampling analysis of abalone shell measurements",
		Long: `Runs the abalone resampling analysis: correlation estimates with jackknife,
bootstrap and bootstrap-t uncertainty, parametric bootstrap coefficient tests,
backward stepwise selection and intercept bootstrap intervals.

Configuration is read from the environment (and .env): ABALONE_DATA names the
input table, REPORT_DIR optionally receives report.md, report.html and histograms.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.Logger()
	defer func() { _ = logger.Sync() }()

	svc := app.NewAnalysisService(
		table.NewDataReader(logger),
		rng.NewPCGAdapter(),
		cfg.Analysis,
		app.DefaultPlan(),
		logger,
	)

	result, err := svc.Run(ctx, cfg.Data.Path)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return err
	}

	if cfg.Output.ReportDir == "" {
		_, err := os.Stdout.Write(report.Markdown(result, nil))
		return err
	}

	written, err := report.Write(cfg.Output.ReportDir, result)
	if err != nil {
		return err
	}
	logger.Info("report written", zap.Strings("files", written))
	return nil
}
