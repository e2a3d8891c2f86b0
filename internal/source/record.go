package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
)

const (
	FieldIdentifier    = "user"
	FieldTeamName      = "team_name"
	FieldStartPosition = "start_position"
)

func LapField(lap int) string {
	return "lap" + strconv.Itoa(lap)
}

// lapGaps counts lap positions left out of one load.
type lapGaps struct {
	missing int
	invalid int
}

// ParseRecords turns raw rows into a snapshot. Every row needs a team name
// and an integer start position, otherwise the whole load fails. Missing or
// non-integer lap positions only produce one summary warning per load.
func ParseRecords(rows []map[string]any, totalLaps int, log logger.Logger) (models.Snapshot, error) {
	snap := make(models.Snapshot, 0, len(rows))
	var gaps lapGaps
	for idx, row := range rows {
		p, err := parseRecord(idx, row, totalLaps, &gaps)
		if err != nil {
			return nil, err
		}
		snap = append(snap, p)
	}
	if gaps.missing > 0 || gaps.invalid > 0 {
		log.Warn("lap positions skipped", "missing", gaps.missing, "not_integer", gaps.invalid, "participants", len(snap))
	}
	return snap, nil
}

func parseRecord(idx int, row map[string]any, totalLaps int, gaps *lapGaps) (models.Participant, error) {
	if row == nil {
		return models.Participant{}, invalid(idx, "must be an object")
	}

	var p models.Participant
	team, ok := row[FieldTeamName]
	if !ok {
		return p, invalid(idx, "missing field %q", FieldTeamName)
	}
	name, ok := team.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return p, invalid(idx, "%q must be a non-empty string", FieldTeamName)
	}
	p.TeamName = name

	start, ok := row[FieldStartPosition]
	if !ok {
		return p, invalid(idx, "missing field %q", FieldStartPosition)
	}
	pos, ok := asInt(start)
	if !ok {
		return p, invalid(idx, "%q must be an integer", FieldStartPosition)
	}
	p.StartPosition = pos

	switch id := row[FieldIdentifier].(type) {
	case nil:
	case string:
		p.Identifier = strings.TrimSpace(id)
	default:
		return p, invalid(idx, "%q must be a string", FieldIdentifier)
	}

	p.Laps = make(map[int]int, totalLaps)
	for lap := 1; lap <= totalLaps; lap++ {
		raw, ok := row[LapField(lap)]
		if !ok || raw == nil {
			gaps.missing++
			continue
		}
		v, ok := asInt(raw)
		if !ok {
			gaps.invalid++
			continue
		}
		p.Laps[lap] = v
	}
	return p, nil
}

func invalid(idx int, format string, args ...any) error {
	return fmt.Errorf("%w: participant #%d %s", apperrors.ErrDataUnavailable, idx, fmt.Sprintf(format, args...))
}

// asInt accepts JSON numbers and whole floats (spreadsheet cells); strings
// and fractional values are rejected.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
