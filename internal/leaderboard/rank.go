// Package leaderboard orders a race snapshot and computes position changes.
package leaderboard

import (
	"fmt"
	"sort"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/models"
)

// KeySelector extracts the ordering value of a participant. Participants
// without a value are left out of the ranking.
type KeySelector func(models.Participant) (int, bool)

func ByStart() KeySelector {
	return func(p models.Participant) (int, bool) {
		return p.StartPosition, true
	}
}

func ByLap(lap, totalLaps int) (KeySelector, error) {
	if lap < 1 || lap > totalLaps {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", apperrors.ErrInvalidLap, lap, totalLaps)
	}
	return func(p models.Participant) (int, bool) {
		return p.LapPosition(lap)
	}, nil
}

// ByFinal orders by the position on the last lap.
func ByFinal(totalLaps int) KeySelector {
	return func(p models.Participant) (int, bool) {
		return p.LapPosition(totalLaps)
	}
}

// RankBy stable-sorts the participants ascending by key and assigns dense
// 1-based ranks. Equal keys keep snapshot order.
func RankBy(snapshot models.Snapshot, key KeySelector) []models.RankedEntry {
	out := make([]models.RankedEntry, 0, len(snapshot))
	for _, p := range snapshot {
		k, ok := key(p)
		if !ok {
			continue
		}
		out = append(out, models.RankedEntry{Participant: p, SortKey: k})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey < out[j].SortKey
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// RankDelta is positive when the entry moved up relative to the reference.
func RankDelta(current, reference int) int {
	return reference - current
}

func entryKey(p models.Participant) string {
	return p.TeamName + "\x00" + p.Identifier
}

func rankIndex(ranking []models.RankedEntry) map[string]int {
	idx := make(map[string]int, len(ranking))
	for _, e := range ranking {
		k := entryKey(e.Participant)
		if _, dup := idx[k]; !dup {
			idx[k] = e.Rank
		}
	}
	return idx
}

type Row struct {
	models.RankedEntry
	Delta    int
	HasDelta bool
}

// Board is the ranking published for one milestone.
type Board struct {
	Milestone models.Milestone
	Rows      []Row
}

// Build ranks the snapshot for a milestone. Lap 1 and the final standings are
// compared against the start grid, lap k against lap k-1. Rows whose
// participant is missing from the reference ranking carry no delta.
func Build(snapshot models.Snapshot, m models.Milestone, totalLaps int) (Board, error) {
	var current, reference KeySelector
	switch m.Kind {
	case models.MilestoneStart:
		current = ByStart()
	case models.MilestoneFinal:
		current, reference = ByFinal(totalLaps), ByStart()
	case models.MilestoneLap:
		sel, err := ByLap(m.Lap, totalLaps)
		if err != nil {
			return Board{}, err
		}
		current = sel
		if m.Lap == 1 {
			reference = ByStart()
		} else {
			reference, _ = ByLap(m.Lap-1, totalLaps)
		}
	default:
		return Board{}, fmt.Errorf("unknown milestone kind %d", m.Kind)
	}

	ranked := RankBy(snapshot, current)
	var refRanks map[string]int
	if reference != nil {
		refRanks = rankIndex(RankBy(snapshot, reference))
	}

	board := Board{Milestone: m, Rows: make([]Row, len(ranked))}
	for i, e := range ranked {
		row := Row{RankedEntry: e}
		if refRanks != nil {
			if ref, ok := refRanks[entryKey(e.Participant)]; ok {
				row.Delta = RankDelta(e.Rank, ref)
				row.HasDelta = true
			}
		}
		board.Rows[i] = row
	}
	return board, nil
}

// IndexOf returns the row index of participant p, or -1.
func (b Board) IndexOf(p models.Participant) int {
	k := entryKey(p)
	for i, r := range b.Rows {
		if entryKey(r.Participant) == k {
			return i
		}
	}
	return -1
}
