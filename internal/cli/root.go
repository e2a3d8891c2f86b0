package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/whenToSleep/race-info-bot/internal/config"
	"github.com/whenToSleep/race-info-bot/internal/logger"
)

// RootOptions holds global flags and the hooks commands use to reach the
// environment.
type RootOptions struct {
	Format string // "json" | "text"

	LoadConfig func() (config.Config, error)
	Now        func() time.Time
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.FromEnv, Now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race-info-bot",
		Short: "Race timeline bot",
		Long:  "Publishes start, per-lap and final leaderboards of a timed race to Telegram and tracks participants for subscribed users.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setup loads configuration and builds the logger for a command.
func setup(opts *RootOptions) (config.Config, logger.Logger, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogEncoding), nil
}
