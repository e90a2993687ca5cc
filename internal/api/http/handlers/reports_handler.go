package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler serves dashboards.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// SLA GET /api/admin/reports/sla.
func (h *ReportsHandler) SLA(c *fiber.Ctx) error {
	report, err := h.reports.SLAReport(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, slaReportResponse(report))
}

// ExportSLA GET /api/admin/reports/sla/export.
func (h *ReportsHandler) ExportSLA(c *fiber.Ctx) error {
	buf, filename, err := h.reports.ExportSLA(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

// Summary GET /api/admin/reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, dto.SummaryResponse{
		Total:         summary.Total,
		ByStatus:      dto.CountBuckets(summary.ByStatus),
		ByCategory:    dto.CountBuckets(summary.ByCategory),
		ByPriority:    dto.CountBuckets(summary.ByPriority),
		ByTeam:        dto.CountBuckets(summary.ByTeam),
		SurveyAverage: summary.SurveyAverage,
		SurveyCount:   summary.SurveyCount,
	})
}
