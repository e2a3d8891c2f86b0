package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenToSleep/race-info-bot/internal/config"
)

var raceStart = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	start := raceStart
	return config.Config{
		RaceStart:    &start,
		LapDuration:  20 * time.Second,
		TotalLaps:    2,
		DataSource:   config.SourceJSON,
		DataFile:     "testdata/results.json",
		TickInterval: time.Second,
		ExportSecret: "s3cret",
		LogLevel:     "error",
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{
		LoadConfig: func() (config.Config, error) { return testConfig(), nil },
		Now:        func() time.Time { return raceStart.Add(30 * time.Second) },
	}
	buf := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "race-info-bot", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "status", "leaderboard", "resolve"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "status", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestStatus(t *testing.T) {
	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "lap 2/2, 10/20s into lap\n", out)

	out, err = execute(t, "status", "--at", "2024-06-01 17:59:00")
	require.NoError(t, err)
	assert.Equal(t, "race not started, 60s until start\n", out)

	_, err = execute(t, "status", "--at", "tomorrow")
	assert.Error(t, err)
}

func TestStatus_JSON(t *testing.T) {
	out, err := execute(t, "status", "--format", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "running", got["phase"])
	assert.Equal(t, float64(2), got["lap"])
}

func TestLeaderboard(t *testing.T) {
	out, err := execute(t, "leaderboard", "--milestone", "1", "--lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "LAP 1")
	assert.Contains(t, out, "Turtles")

	out, err = execute(t, "leaderboard", "-m", "final", "--format", "json")
	require.NoError(t, err)
	var rows []leaderboardRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Rockets", rows[0].TeamName)
	require.NotNil(t, rows[0].Change)
	assert.Equal(t, 0, *rows[0].Change)
}

func TestLeaderboard_Errors(t *testing.T) {
	_, err := execute(t, "leaderboard", "--milestone", "lap")
	assert.Error(t, err)

	_, err = execute(t, "leaderboard", "--milestone", "3")
	assert.Error(t, err)

	_, err = execute(t, "leaderboard", "--lang", "de")
	assert.Error(t, err)
}

func TestLeaderboard_Link(t *testing.T) {
	out, err := execute(t, "leaderboard", "-m", "final", "--link", "http://localhost:8080/")
	require.NoError(t, err)
	assert.Contains(t, out, "http://localhost:8080/export/leaderboard.csv?milestone=final&token=")
}

func TestResolve(t *testing.T) {
	out, err := execute(t, "resolve", "BOB.TG")
	require.NoError(t, err)
	assert.Equal(t, "wallet bob.tg: team Turtles, start position 2\n", out)

	out, err = execute(t, "resolve", "nobody", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"found": false}`, out)
}
