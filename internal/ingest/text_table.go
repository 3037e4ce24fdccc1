package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// TextTableDecoder reads flat delimited text such as a table extracted from a
// document. The first non-blank line is the header; data lines whose field
// count differs from the header's are dropped.
type TextTableDecoder struct {
	Delimiter rune
}

func NewTextTableDecoder(delimiter rune) *TextTableDecoder {
	if delimiter == 0 {
		delimiter = ','
	}
	return &TextTableDecoder{Delimiter: delimiter}
}

func (d *TextTableDecoder) Decode(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	reader.Comma = d.Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var (
		headers []string
		rows    []Row
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read text table: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if headers == nil {
			if isBlank(record) {
				continue
			}
			headers = normalizeHeaders(record)
			continue
		}
		if len(record) != len(headers) || isBlank(record) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			fields[h] = record[i]
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}

	if headers == nil {
		return nil, ErrMissingHeader
	}
	return rows, nil
}
