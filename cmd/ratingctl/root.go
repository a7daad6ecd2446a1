package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/ntrp-rating-service/internal/app/ratings"
	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

const appVersion = "dev"

// commandContext carries state shared by subcommands.
type commandContext struct {
	logLevel string
	opts     ratings.Options
}

func (c *commandContext) logger() *slog.Logger {
	if c.logLevel == "" {
		return logging.NewNop()
	}
	return logging.NewLogger(logging.Config{
		Level:   c.logLevel,
		Service: "ratingctl",
		Version: appVersion,
	})
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithOptions(ratings.Options{})
}

// newRootCommandWithOptions lets tests swap the fetcher and session store.
func newRootCommandWithOptions(opts ratings.Options) *cobra.Command {
	ctx := &commandContext{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "ratingctl",
		Short:         "Look up NTRP dynamic ratings for league roster players",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newExtractCommand())

	return rootCmd
}
