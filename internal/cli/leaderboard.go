package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whenToSleep/race-info-bot/internal/i18n"
	"github.com/whenToSleep/race-info-bot/internal/leaderboard"
	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/server"
	"github.com/whenToSleep/race-info-bot/internal/source"
)

type LeaderboardOptions struct {
	Milestone string
	Language  string
	Link      string
}

type leaderboardRow struct {
	Rank       int    `json:"rank"`
	TeamName   string `json:"team_name"`
	Identifier string `json:"identifier,omitempty"`
	Position   int    `json:"position"`
	Change     *int   `json:"change,omitempty"`
}

func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LeaderboardOptions{}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Render a milestone leaderboard from the configured data source",
		Long: `Render the start, lap or final leaderboard exactly as it is published.

With --link the command prints a signed CSV export URL for the HTTP server
under the given base URL instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Milestone, "milestone", "m", "start", "start, final or a lap number")
	cmd.Flags().StringVar(&opts.Language, "lang", string(models.DefaultLanguage), "message language (ru|en|uk)")
	cmd.Flags().StringVar(&opts.Link, "link", "", "print a signed export URL under this base URL")
	return cmd
}

func runLeaderboard(rootOpts *RootOptions, opts *LeaderboardOptions, cmd *cobra.Command) error {
	m, err := models.ParseMilestone(opts.Milestone)
	if err != nil {
		return fmt.Errorf("--milestone %q: want start, final or a lap number", opts.Milestone)
	}
	lang, ok := models.ParseLanguage(opts.Language)
	if !ok {
		return fmt.Errorf("--lang %q: want one of %v", opts.Language, models.Languages)
	}

	cfg, log, err := setup(rootOpts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if opts.Link != "" {
		url := server.ExportURL(strings.TrimRight(opts.Link, "/"), cfg.ExportSecret, opts.Milestone)
		return write(cmd.OutOrStdout(), rootOpts.Format, url, map[string]string{"url": url})
	}

	provider, err := source.NewProvider(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	snap, err := provider.LoadSnapshot(cmd.Context())
	if err != nil {
		return err
	}
	board, err := leaderboard.Build(snap, m, cfg.TotalLaps)
	if err != nil {
		return err
	}

	rows := make([]leaderboardRow, len(board.Rows))
	for i, r := range board.Rows {
		rows[i] = leaderboardRow{Rank: r.Rank, TeamName: r.Participant.TeamName, Identifier: r.Participant.Identifier, Position: r.SortKey}
		if r.HasDelta {
			delta := r.Delta
			rows[i].Change = &delta
		}
	}
	text := leaderboard.Render(board, lang, i18n.MustLoad())
	return write(cmd.OutOrStdout(), rootOpts.Format, text, rows)
}
