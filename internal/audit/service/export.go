package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
)

type ExportService struct {
	repo auditdomain.Repository
}

func NewExportService(repo auditdomain.Repository) auditdomain.ExportService {
	return &ExportService{repo: repo}
}

func (s *ExportService) Export(ctx context.Context, req auditdomain.ExportRequest) (*auditdomain.ExportResult, error) {
	logs, err := s.repo.Range(ctx, req)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case auditdomain.ExportFormatCSV:
		data, err = formatCSV(logs)
	case auditdomain.ExportFormatJSON:
		data, err = formatJSON(logs)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	return &auditdomain.ExportResult{
		Data:     data,
		Checksum: checksum(data),
		Format:   req.Format,
		Count:    len(logs),
	}, nil
}

func formatCSV(logs []auditdomain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"timestamp",
		"id",
		"action",
		"platform",
		"connection_id",
		"target_type",
		"target_id",
		"metadata",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, log := range logs {
		metadata := ""
		if len(log.Metadata) > 0 {
			raw, err := json.Marshal(log.Metadata)
			if err != nil {
				return nil, err
			}
			metadata = string(raw)
		}
		row := []string{
			log.CreatedAt.UTC().Format(time.RFC3339),
			log.ID.String(),
			log.Action,
			log.Platform,
			log.ConnectionID,
			log.TargetType,
			formatStringPtr(log.TargetID),
			metadata,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatJSON(logs []auditdomain.AuditLog) ([]byte, error) {
	type record struct {
		Timestamp    string         `json:"timestamp"`
		ID           string         `json:"id"`
		Action       string         `json:"action"`
		Platform     string         `json:"platform,omitempty"`
		ConnectionID string         `json:"connection_id,omitempty"`
		TargetType   string         `json:"target_type"`
		TargetID     string         `json:"target_id,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}

	records := make([]record, 0, len(logs))
	for _, log := range logs {
		records = append(records, record{
			Timestamp:    log.CreatedAt.UTC().Format(time.RFC3339),
			ID:           log.ID.String(),
			Action:       log.Action,
			Platform:     log.Platform,
			ConnectionID: log.ConnectionID,
			TargetType:   log.TargetType,
			TargetID:     formatStringPtr(log.TargetID),
			Metadata:     log.Metadata,
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

func formatStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
