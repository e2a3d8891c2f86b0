package leaderboard

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"rank", "team_name", "identifier", "position", "change"}

// WriteCSV writes the board as one row per ranked participant. The change
// column is empty when the participant has no reference rank.
func WriteCSV(w io.Writer, b Board) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range b.Rows {
		change := ""
		if r.HasDelta {
			change = strconv.Itoa(r.Delta)
		}
		rec := []string{
			strconv.Itoa(r.Rank),
			r.Participant.TeamName,
			r.Participant.Identifier,
			strconv.Itoa(r.SortKey),
			change,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
