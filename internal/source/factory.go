package source

import (
	"context"
	"fmt"

	"github.com/whenToSleep/race-info-bot/internal/config"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/source/jsonfile"
	"github.com/whenToSleep/race-info-bot/internal/source/sheets"
)

func NewProvider(ctx context.Context, cfg config.Config, log logger.Logger) (Provider, error) {
	var reader RowReader
	switch cfg.DataSource {
	case config.SourceJSON:
		reader = jsonfile.New(cfg.DataFile)
	case config.SourceSheets:
		c, err := sheets.New(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID, cfg.SheetRange)
		if err != nil {
			return nil, fmt.Errorf("sheets: %w", err)
		}
		reader = c
	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.DataSource)
	}
	return WithCache(FromRows(reader, cfg.TotalLaps, log), cfg.SnapshotTTL), nil
}
