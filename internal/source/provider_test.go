package source

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/logger"
)

type fakeReader struct {
	rows  []map[string]any
	err   error
	calls int
}

func (f *fakeReader) Name() string { return "fake" }

func (f *fakeReader) ReadRows(context.Context) ([]map[string]any, error) {
	f.calls++
	return f.rows, f.err
}

func rockets() []map[string]any {
	return []map[string]any{{"team_name": "Rockets", "start_position": json.Number("1")}}
}

func TestFromRows_ReadFailure(t *testing.T) {
	p := FromRows(&fakeReader{err: errors.New("boom")}, 12, logger.NewNop())
	_, err := p.LoadSnapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "boom")
}

func TestWithCache_ZeroTTLPassesThrough(t *testing.T) {
	p := FromRows(&fakeReader{rows: rockets()}, 12, logger.NewNop())
	assert.Same(t, p, WithCache(p, 0))
}

func TestWithCache_ServesWithinTTL(t *testing.T) {
	r := &fakeReader{rows: rockets()}
	p := WithCache(FromRows(r, 12, logger.NewNop()), time.Minute).(*cached)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		snap, err := p.LoadSnapshot(context.Background())
		require.NoError(t, err)
		require.Len(t, snap, 1)
	}
	assert.Equal(t, 1, r.calls)

	now = now.Add(time.Minute)
	_, err := p.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestWithCache_FailureIsNotCached(t *testing.T) {
	r := &fakeReader{err: errors.New("offline")}
	p := WithCache(FromRows(r, 12, logger.NewNop()), time.Hour)

	_, err := p.LoadSnapshot(context.Background())
	require.Error(t, err)

	r.err, r.rows = nil, rockets()
	snap, err := p.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rockets", snap[0].TeamName)
	assert.Equal(t, 2, r.calls)
}
