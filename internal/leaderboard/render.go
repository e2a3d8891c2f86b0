package leaderboard

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/whenToSleep/race-info-bot/internal/i18n"
	"github.com/whenToSleep/race-info-bot/internal/models"
)

// Rank change indicators.
const (
	IndicatorUp        = "⬆️"
	IndicatorDown      = "⬇️"
	IndicatorUnchanged = "➡️"
)

const trackedMarker = "👉 "

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return strconv.Itoa(rank) + "."
	}
}

// Change formats a rank delta. A row without a reference renders as unchanged.
func Change(r Row) string {
	switch {
	case !r.HasDelta || r.Delta == 0:
		return IndicatorUnchanged + " 0"
	case r.Delta > 0:
		return fmt.Sprintf("%s +%d", IndicatorUp, r.Delta)
	default:
		return fmt.Sprintf("%s %d", IndicatorDown, r.Delta)
	}
}

func header(m models.Milestone, lang models.Language, cat *i18n.Catalog) string {
	switch m.Kind {
	case models.MilestoneStart:
		return cat.Text(lang, "start_leaderboard")
	case models.MilestoneFinal:
		return cat.Text(lang, "final_leaderboard")
	default:
		return cat.Text(lang, "lap_leaderboard", "lap", strconv.Itoa(m.Lap))
	}
}

func emptyText(m models.Milestone, lang models.Language, cat *i18n.Catalog) string {
	switch m.Kind {
	case models.MilestoneStart:
		return cat.Text(lang, "no_data")
	case models.MilestoneFinal:
		return cat.Text(lang, "no_data_final")
	default:
		return cat.Text(lang, "no_data_lap", "lap", strconv.Itoa(m.Lap))
	}
}

func line(m models.Milestone, r Row, lang models.Language, cat *i18n.Catalog) string {
	name := "<b>" + html.EscapeString(r.Participant.TeamName) + "</b>"
	switch m.Kind {
	case models.MilestoneStart:
		return medal(r.Rank) + " " + name
	case models.MilestoneFinal:
		return fmt.Sprintf("%s %s (%s: %d, %s)", medal(r.Rank), name, cat.Text(lang, "final_label"), r.SortKey, Change(r))
	default:
		return fmt.Sprintf("%s %s (%s)", medal(r.Rank), name, Change(r))
	}
}

// Render formats the full board as Telegram HTML.
func Render(b Board, lang models.Language, cat *i18n.Catalog) string {
	if len(b.Rows) == 0 {
		return emptyText(b.Milestone, lang, cat)
	}
	lines := make([]string, 0, len(b.Rows)+1)
	lines = append(lines, header(b.Milestone, lang, cat))
	for _, r := range b.Rows {
		lines = append(lines, line(b.Milestone, r, lang, cat))
	}
	return strings.Join(lines, "\n")
}

// RenderWindow formats the rows around center for one tracked participant and
// appends their place. Returns false when center is not on the board.
func RenderWindow(b Board, center, radius int, lang models.Language, cat *i18n.Catalog) (string, bool) {
	rows, start, _ := Window(b.Rows, center, radius)
	if len(rows) == 0 {
		return "", false
	}
	lines := make([]string, 0, len(rows)+3)
	lines = append(lines, header(b.Milestone, lang, cat))
	for i, r := range rows {
		l := line(b.Milestone, r, lang, cat)
		if start+i == center {
			l = trackedMarker + l
		}
		lines = append(lines, l)
	}
	lines = append(lines, "", cat.Text(lang, "you_place", "position", strconv.Itoa(b.Rows[center].Rank)))
	return strings.Join(lines, "\n"), true
}
