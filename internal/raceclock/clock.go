// Package raceclock maps wall-clock time onto race laps.
package raceclock

import (
	"fmt"
	"time"
)

// Config is the process-wide race timing. A nil Start means the race is not
// configured and the clock never becomes active.
type Config struct {
	Start       *time.Time
	LapDuration time.Duration
	TotalLaps   int
}

type Phase int

const (
	PhaseUnconfigured Phase = iota
	PhasePending
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unconfigured"
	}
}

func (c Config) configured() bool {
	return c.Start != nil && c.LapDuration > 0 && c.TotalLaps > 0
}

// lapAt returns the 1-based lap for now without the upper bound applied.
func (c Config) lapAt(now time.Time) int {
	elapsed := now.Sub(*c.Start)
	return int(elapsed/c.LapDuration) + 1
}

// CurrentLap returns the lap in progress at now. The second result is false
// when the race is unconfigured, not started yet, or already finished.
// The start instant belongs to lap 1 and a lap boundary belongs to the next lap.
func CurrentLap(now time.Time, cfg Config) (int, bool) {
	if !cfg.configured() || now.Before(*cfg.Start) {
		return 0, false
	}
	lap := cfg.lapAt(now)
	if lap > cfg.TotalLaps {
		return 0, false
	}
	return lap, true
}

func IsActive(now time.Time, cfg Config) bool {
	_, ok := CurrentLap(now, cfg)
	return ok
}

func PhaseAt(now time.Time, cfg Config) Phase {
	if !cfg.configured() {
		return PhaseUnconfigured
	}
	if now.Before(*cfg.Start) {
		return PhasePending
	}
	if cfg.lapAt(now) > cfg.TotalLaps {
		return PhaseFinished
	}
	return PhaseRunning
}

// Status is a read-only projection of the clock at a given instant.
type Status struct {
	Phase        Phase         `json:"-"`
	PhaseName    string        `json:"phase"`
	Lap          int           `json:"lap,omitempty"`
	TotalLaps    int           `json:"total_laps"`
	UntilStart   time.Duration `json:"-"`
	IntoLap      time.Duration `json:"-"`
	LapDuration  time.Duration `json:"-"`
	UntilStartS  int64         `json:"seconds_until_start,omitempty"`
	IntoLapS     int64         `json:"seconds_into_lap,omitempty"`
	LapDurationS int64         `json:"lap_duration_seconds"`
}

func Describe(now time.Time, cfg Config) Status {
	st := Status{
		Phase:       PhaseAt(now, cfg),
		TotalLaps:   cfg.TotalLaps,
		LapDuration: cfg.LapDuration,
	}
	switch st.Phase {
	case PhasePending:
		st.UntilStart = cfg.Start.Sub(now)
	case PhaseRunning:
		st.Lap = cfg.lapAt(now)
		st.IntoLap = now.Sub(*cfg.Start) % cfg.LapDuration
	}
	st.PhaseName = st.Phase.String()
	st.UntilStartS = int64(st.UntilStart / time.Second)
	st.IntoLapS = int64(st.IntoLap / time.Second)
	st.LapDurationS = int64(cfg.LapDuration / time.Second)
	return st
}

// Text renders the status for logs and operator output.
func (s Status) Text() string {
	switch s.Phase {
	case PhasePending:
		return fmt.Sprintf("race not started, %ds until start", s.UntilStartS)
	case PhaseRunning:
		return fmt.Sprintf("lap %d/%d, %d/%ds into lap", s.Lap, s.TotalLaps, s.IntoLapS, s.LapDurationS)
	case PhaseFinished:
		return "race finished"
	default:
		return "race not configured (RACE_START_TIME is empty)"
	}
}
