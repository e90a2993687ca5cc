package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/sla"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// ReportService produces the SLA and summary dashboards.
type ReportService struct {
	tickets repository.TicketRepository
	surveys repository.SurveyRepository
	logger  *zap.Logger
	now     func() time.Time
}

// ReportDependencies bundles repositories.
type ReportDependencies struct {
	TicketRepo repository.TicketRepository
	SurveyRepo repository.SurveyRepository
	Logger     *zap.Logger
}

// TicketSummary is the overview dashboard.
type TicketSummary struct {
	Total         int
	ByStatus      []domain.CountBucket
	ByCategory    []domain.CountBucket
	ByPriority    []domain.CountBucket
	ByTeam        []domain.CountBucket
	SurveyAverage float64
	SurveyCount   int
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		tickets: deps.TicketRepo,
		surveys: deps.SurveyRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// SLAReport classifies every open ticket against its priority thresholds.
func (s *ReportService) SLAReport(ctx context.Context) (sla.Report, error) {
	tickets, err := s.tickets.ListByStatus(ctx, domain.OpenStatuses)
	if err != nil {
		return sla.Report{}, apperrors.MapError(err)
	}
	return sla.BuildReport(tickets, s.now().UTC()), nil
}

// Summary counts tickets along each reporting dimension.
func (s *ReportService) Summary(ctx context.Context) (*TicketSummary, error) {
	out := &TicketSummary{}
	dims := []struct {
		name string
		dst  *[]domain.CountBucket
	}{
		{repository.DimensionStatus, &out.ByStatus},
		{repository.DimensionCategory, &out.ByCategory},
		{repository.DimensionPriority, &out.ByPriority},
		{repository.DimensionTeam, &out.ByTeam},
	}
	for _, d := range dims {
		buckets, err := s.tickets.CountBy(ctx, d.name)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		*d.dst = buckets
	}
	for _, b := range out.ByStatus {
		out.Total += b.Count
	}

	avg, count, err := s.surveys.Average(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out.SurveyAverage = avg
	out.SurveyCount = count
	return out, nil
}

// ExportSLA renders the SLA report as an xlsx workbook and returns it with
// a suggested file name.
func (s *ReportService) ExportSLA(ctx context.Context) (*bytes.Buffer, string, error) {
	report, err := s.SLAReport(ctx)
	if err != nil {
		return nil, "", err
	}
	buf, err := WriteSLAWorkbook(report)
	if err != nil {
		s.logger.Error("sla export failed", zap.Error(err))
		return nil, "", apperrors.NewInternalError(err)
	}
	filename := fmt.Sprintf("sla-report-%s.xlsx", report.GeneratedAt.Format("20060102-1504"))
	return buf, filename, nil
}

var slaColumns = []struct {
	title string
	width float64
}{
	{"Code", 14},
	{"Title", 40},
	{"Status", 14},
	{"Priority", 12},
	{"Team", 20},
	{"Assignee", 20},
	{"Created", 20},
	{"Age", 18},
	{"Response SLA (min)", 18},
	{"Resolve SLA (min)", 18},
	{"Resolve %", 10},
	{"SLA", 12},
}

const (
	slaSheet     = "SLA"
	summarySheet = "Summary"
)

// WriteSLAWorkbook lays the report out on two sheets: the ticket rows and
// the bucket totals.
func WriteSLAWorkbook(report sla.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(slaSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	breachedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("breached style: %w", err)
	}
	atRiskStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE699"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("at risk style: %w", err)
	}

	for i, col := range slaColumns {
		name := colName(i)
		if err := f.SetColWidth(slaSheet, name, name, col.width); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(slaSheet, cell(name, 1), col.title); err != nil {
			return nil, err
		}
	}
	last := colName(len(slaColumns) - 1)
	if err := f.SetCellStyle(slaSheet, "A1", cell(last, 1), headerStyle); err != nil {
		return nil, err
	}

	for i, e := range report.AllTickets {
		row := i + 2
		values := []any{
			e.Code,
			e.Title,
			string(e.TicketStatus),
			e.PriorityName,
			e.TeamName,
			e.AssigneeName,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.AgeText,
			e.ResponseMinutes,
			e.ResolveMinutes,
			e.ResolvePercent,
			string(e.Bucket),
		}
		if err := f.SetSheetRow(slaSheet, cell("A", row), &values); err != nil {
			return nil, err
		}
		switch e.Bucket {
		case sla.BucketBreached:
			err = f.SetCellStyle(slaSheet, cell("A", row), cell(last, row), breachedStyle)
		case sla.BucketAtRisk:
			err = f.SetCellStyle(slaSheet, cell("A", row), cell(last, row), atRiskStyle)
		}
		if err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{"Total", report.Summary.Total},
		{"Breached", report.Summary.Breached},
		{"At risk", report.Summary.AtRisk},
		{"On track", report.Summary.OnTrack},
		{"Breached %", report.Summary.BreachedPercent},
	}
	for i, values := range summary {
		if err := f.SetSheetRow(summarySheet, cell("A", i+1), &values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 14); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
