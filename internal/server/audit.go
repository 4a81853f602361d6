package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
)

// ListAuditLogs handles GET /api/console/audit
func (s *Server) ListAuditLogs(c *gin.Context) {
	req := auditdomain.ListRequest{
		Action:       strings.TrimSpace(c.Query("action")),
		ConnectionID: strings.TrimSpace(c.Query("connection_id")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Limit = limit
	}

	logs, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, logs)
}

// ExportAuditLogs handles GET /api/console/audit/export
func (s *Server) ExportAuditLogs(c *gin.Context) {
	startDateStr := strings.TrimSpace(c.Query("start_date"))
	endDateStr := strings.TrimSpace(c.Query("end_date"))
	formatStr := c.DefaultQuery("format", "csv")
	actionsStr := strings.TrimSpace(c.Query("actions"))

	if startDateStr == "" || endDateStr == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// End date is inclusive of the whole day.
	endDate = endDate.Add(24 * time.Hour)

	if endDate.Before(startDate) {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if endDate.Sub(startDate) > 90*24*time.Hour {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	format, ok := auditdomain.ParseExportFormat(formatStr)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var actions []string
	if actionsStr != "" {
		for _, a := range strings.Split(actionsStr, ",") {
			if a = strings.TrimSpace(a); a != "" {
				actions = append(actions, a)
			}
		}
	}

	result, err := s.auditExportSvc.Export(c.Request.Context(), auditdomain.ExportRequest{
		StartDate:    startDate,
		EndDate:      endDate,
		Format:       format,
		ConnectionID: strings.TrimSpace(c.Query("connection_id")),
		Actions:      actions,
	})
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("X-Audit-Export-Checksum", result.Checksum)
	c.Header("X-Audit-Export-Count", strconv.Itoa(result.Count))

	filename := "audit_export_" + startDateStr + "_" + endDateStr + "." + string(result.Format)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, result.Format.ContentType(), result.Data)
}
