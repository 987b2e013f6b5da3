package connector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseCSV converts CSV content into row records keyed by header. The first
// row is the header. max < 0 counts rows without materializing; max == 0
// means no cap. total always reflects the full data row count.
func parseCSV(content string, max int) (values []any, total int, err error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []any{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	values = []any{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read CSV row %d: %w", total+1, err)
		}
		total++

		if max < 0 || (max > 0 && len(values) >= max) {
			continue
		}
		record := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = nil
			}
		}
		values = append(values, record)
	}
	return values, total, nil
}
