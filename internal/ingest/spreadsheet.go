package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetDecoder reads the first worksheet of an xlsx workbook. The first
// non-blank row is the header.
type SpreadsheetDecoder struct{}

func NewSpreadsheetDecoder() *SpreadsheetDecoder {
	return &SpreadsheetDecoder{}
}

func (d *SpreadsheetDecoder) Decode(data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var (
		headers []string
		rows    []Row
	)
	for i, record := range cells {
		if isBlank(record) {
			continue
		}
		if headers == nil {
			headers = normalizeHeaders(record)
			continue
		}

		// excelize trims trailing empty cells, so short rows are padded.
		fields := make(map[string]string, len(headers))
		for col, h := range headers {
			if h == "" {
				continue
			}
			if col < len(record) {
				fields[h] = record[col]
			} else {
				fields[h] = ""
			}
		}
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}

	if headers == nil {
		return nil, ErrMissingHeader
	}
	return rows, nil
}
