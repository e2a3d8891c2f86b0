// Package source loads race snapshots from the configured backend.
package source

import (
	"context"
	"fmt"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
)

type Provider interface {
	// LoadSnapshot returns the whole participant list. Errors wrap
	// ErrDataUnavailable; callers retry on the next tick or request.
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
}

// RowReader fetches untyped participant rows from a backend. Keys are field
// names ("user", "team_name", "start_position", "lap1", ...).
type RowReader interface {
	Name() string
	ReadRows(ctx context.Context) ([]map[string]any, error)
}

type rowProvider struct {
	reader    RowReader
	totalLaps int
	log       logger.Logger
}

// FromRows validates the rows of r into snapshots.
func FromRows(r RowReader, totalLaps int, log logger.Logger) Provider {
	return &rowProvider{reader: r, totalLaps: totalLaps, log: log.With("source", r.Name())}
}

func (p *rowProvider) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	rows, err := p.reader.ReadRows(ctx)
	if err != nil {
		p.log.Error("read race data", "error", err)
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrDataUnavailable, p.reader.Name(), err)
	}
	snap, err := ParseRecords(rows, p.totalLaps, p.log)
	if err != nil {
		p.log.Error("invalid race data", "error", err)
		return nil, err
	}
	p.log.Debug("race data loaded", "participants", len(snap))
	return snap, nil
}
