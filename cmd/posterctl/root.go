package main

import (
	"context"

	"github.com/spf13/cobra"

	"poster-backend/internal/bootstrap"
	"poster-backend/internal/session"
	"poster-backend/internal/shared/config"
	"poster-backend/internal/shared/telemetry"
)

// deps lets tests swap the model-backed analyzer for a stub.
type deps struct {
	loadConfig    func() config.Config
	buildAnalyzer func(ctx context.Context, cfg config.Config) (session.Analyzer, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		buildAnalyzer: func(ctx context.Context, cfg config.Config) (session.Analyzer, error) {
			return bootstrap.BuildDiagnosis(ctx, cfg)
		},
	}
}

func newRootCommand(d deps) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "posterctl",
		Short:         "Inspect poster databases and run diagnoses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.InitWriter(logLevel, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRecordsCommand())
	rootCmd.AddCommand(newDiagnoseCommand(d))
	rootCmd.AddCommand(newSplitCommand())

	return rootCmd
}
