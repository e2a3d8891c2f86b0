package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/whenToSleep/race-info-bot/internal/config"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
)

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the race clock",
		Long: `Show the race phase, the current lap and the time spent in it.

Use --at to evaluate the clock at another instant (same format and time zone
as RACE_START_TIME).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.LoadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			now := rootOpts.Now()
			if at != "" {
				loc := time.Local
				if cfg.RaceStart != nil {
					loc = cfg.RaceStart.Location()
				}
				now, err = time.ParseInLocation(config.StartTimeLayout, at, loc)
				if err != nil {
					return fmt.Errorf("--at %q: use format YYYY-MM-DD HH:MM:SS", at)
				}
			}
			st := raceclock.Describe(now, cfg.Clock())
			return write(cmd.OutOrStdout(), rootOpts.Format, st.Text(), st)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate instead of now")
	return cmd
}
