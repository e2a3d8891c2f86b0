package raceclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var raceStart = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

func testConfig() Config {
	start := raceStart
	return Config{Start: &start, LapDuration: 20 * time.Second, TotalLaps: 12}
}

func TestCurrentLap_BeforeStart(t *testing.T) {
	cfg := testConfig()
	for _, d := range []time.Duration{-time.Hour, -time.Second, -time.Nanosecond} {
		_, ok := CurrentLap(raceStart.Add(d), cfg)
		assert.False(t, ok, "offset %s", d)
	}
}

func TestCurrentLap_StartInstantIsLapOne(t *testing.T) {
	lap, ok := CurrentLap(raceStart, testConfig())
	require.True(t, ok)
	assert.Equal(t, 1, lap)
}

func TestCurrentLap_Boundaries(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		offset time.Duration
		lap    int
		ok     bool
	}{
		{19*time.Second + 999*time.Millisecond, 1, true},
		{20 * time.Second, 2, true},
		{39 * time.Second, 2, true},
		{40 * time.Second, 3, true},
		{239 * time.Second, 12, true},
		{240 * time.Second, 0, false},
		{24 * time.Hour, 0, false},
	}
	for _, tc := range cases {
		lap, ok := CurrentLap(raceStart.Add(tc.offset), cfg)
		assert.Equal(t, tc.ok, ok, "offset %s", tc.offset)
		assert.Equal(t, tc.lap, lap, "offset %s", tc.offset)
	}
}

func TestCurrentLap_Unconfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Start = nil
	_, ok := CurrentLap(raceStart.Add(time.Minute), cfg)
	assert.False(t, ok)
	assert.False(t, IsActive(raceStart.Add(time.Minute), cfg))
	assert.Equal(t, PhaseUnconfigured, PhaseAt(raceStart, cfg))
}

func TestCurrentLap_MonotonicOneWay(t *testing.T) {
	cfg := testConfig()
	prev := 0
	finished := false
	for off := -30 * time.Second; off < 300*time.Second; off += 700 * time.Millisecond {
		lap, ok := CurrentLap(raceStart.Add(off), cfg)
		if finished {
			require.False(t, ok, "lap came back after finish at %s", off)
			continue
		}
		if !ok {
			if prev > 0 {
				finished = true
			}
			continue
		}
		require.GreaterOrEqual(t, lap, prev, "lap went backwards at %s", off)
		prev = lap
	}
	assert.True(t, finished)
	assert.Equal(t, 12, prev)
}

func TestPhaseAt(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, PhasePending, PhaseAt(raceStart.Add(-time.Second), cfg))
	assert.Equal(t, PhaseRunning, PhaseAt(raceStart, cfg))
	assert.Equal(t, PhaseRunning, PhaseAt(raceStart.Add(239*time.Second), cfg))
	assert.Equal(t, PhaseFinished, PhaseAt(raceStart.Add(240*time.Second), cfg))
}

func TestDescribe_Text(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, "race not started, 90s until start", Describe(raceStart.Add(-90*time.Second), cfg).Text())
	assert.Equal(t, "lap 3/12, 5/20s into lap", Describe(raceStart.Add(45*time.Second), cfg).Text())
	assert.Equal(t, "race finished", Describe(raceStart.Add(time.Hour), cfg).Text())

	cfg.Start = nil
	assert.Contains(t, Describe(raceStart, cfg).Text(), "not configured")
}

func TestDescribe_Fields(t *testing.T) {
	st := Describe(raceStart.Add(45*time.Second), testConfig())
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, "running", st.PhaseName)
	assert.Equal(t, 3, st.Lap)
	assert.Equal(t, 5*time.Second, st.IntoLap)
	assert.Equal(t, int64(20), st.LapDurationS)
}
