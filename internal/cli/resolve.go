package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whenToSleep/race-info-bot/internal/identity"
	"github.com/whenToSleep/race-info-bot/internal/source"
)

type resolveResult struct {
	Found         bool   `json:"found"`
	Kind          string `json:"kind,omitempty"`
	Value         string `json:"value,omitempty"`
	TeamName      string `json:"team_name,omitempty"`
	StartPosition int    `json:"start_position,omitempty"`
}

func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <wallet-or-team>",
		Short: "Look up a participant the way the bot does for user input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			provider, err := source.NewProvider(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			snap, err := provider.LoadSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			m, ok := identity.Resolve(snap, args[0])
			if !ok {
				res := resolveResult{}
				return write(cmd.OutOrStdout(), rootOpts.Format, fmt.Sprintf("not found: %s", args[0]), res)
			}
			res := resolveResult{
				Found:         true,
				Kind:          string(m.Kind),
				Value:         m.Value,
				TeamName:      m.Participant.TeamName,
				StartPosition: m.Participant.StartPosition,
			}
			text := fmt.Sprintf("%s %s: team %s, start position %d", m.Kind, m.Value, m.Participant.TeamName, m.Participant.StartPosition)
			return write(cmd.OutOrStdout(), rootOpts.Format, text, res)
		},
	}
}
