// Package ingest turns uploaded catalog files into classified catalog records.
package ingest

import (
	"errors"
	"strings"
)

// Kind is the declared format of an uploaded file.
type Kind string

const (
	KindSpreadsheet Kind = "spreadsheet"
	KindTextTable   Kind = "text-table"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrMissingHeader   = errors.New("header row is missing")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)

// Row is one data row keyed by the file's header. Line is 1-based and counts
// the header line.
type Row struct {
	Line   int
	Fields map[string]string
}

func (r Row) Get(key string) string {
	return strings.TrimSpace(r.Fields[key])
}

// FileDecoder yields header-keyed rows in file order.
type FileDecoder interface {
	Decode(data []byte) ([]Row, error)
}

// normalizeHeader lowercases and trims a header cell so "Contact.Email " and
// "contact.email" address the same column.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = normalizeHeader(h)
	}
	return out
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
