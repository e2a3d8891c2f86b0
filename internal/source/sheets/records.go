package sheets

import (
	"errors"
	"fmt"
	"strings"
)

// Records maps the sheet values to field maps keyed by the header row.
// Blank cells are left out and fully blank rows are skipped.
func Records(values [][]interface{}) ([]map[string]any, error) {
	if len(values) == 0 {
		return nil, errors.New("sheet is empty")
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.ToLower(strings.TrimSpace(fmt.Sprint(h)))
	}

	rows := make([]map[string]any, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		rec := make(map[string]any, len(header))
		for idx, name := range header {
			if name == "" {
				continue
			}
			if v, ok := get(values[i], idx); ok {
				rec[name] = v
			}
		}
		if len(rec) == 0 {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func get(row []interface{}, idx int) (any, bool) {
	if idx >= len(row) || row[idx] == nil {
		return nil, false
	}
	if s, ok := row[idx].(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return row[idx], true
}
