// Package sheets reads race results from a Google spreadsheet. The first row
// of the range holds the column names.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	sheetRange    string
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID, sheetRange string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, err
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, sheetRange: sheetRange}, nil
}

func (c *Client) Name() string { return "sheets:" + c.spreadsheetID + "/" + c.sheetRange }

func (c *Client) ReadRows(ctx context.Context) ([]map[string]any, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return Records(resp.Values)
}
