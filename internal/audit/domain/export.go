package domain

import (
	"context"
	"strings"
	"time"
)

type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ExportFormatCSV, ExportFormatJSON:
		return f, true
	default:
		return "", false
	}
}

func (f ExportFormat) ContentType() string {
	if f == ExportFormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// ExportRequest bounds an export to [StartDate, EndDate). A zero EndDate
// means now.
type ExportRequest struct {
	StartDate    time.Time
	EndDate      time.Time
	Format       ExportFormat
	ConnectionID string
	Actions      []string
}

// ExportResult carries the rendered file, its sha256 and the row count.
type ExportResult struct {
	Data     []byte
	Checksum string
	Format   ExportFormat
	Count    int
}

type ExportService interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}
