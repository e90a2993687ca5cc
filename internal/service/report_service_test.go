package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/sla"
)

var reportNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newReportFixture() (*ReportService, *memTicketRepo, *memSurveyRepo) {
	tickets := newMemTicketRepo()
	surveys := newMemSurveyRepo()
	svc := NewReportService(ReportDependencies{TicketRepo: tickets, SurveyRepo: surveys})
	svc.now = func() time.Time { return reportNow }
	return svc, tickets, surveys
}

func TestSLAReport_OnlyOpenTickets(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	tickets.put(domain.Ticket{ID: "late", Code: "HD-LATE", Status: domain.TicketStatusOpen,
		CreatedAt: reportNow.Add(-3 * time.Hour), SLAResolveMins: ptr(120)})
	tickets.put(domain.Ticket{ID: "close", Code: "HD-CLOSE", Status: domain.TicketStatusPending,
		CreatedAt: reportNow.Add(-100 * time.Minute), SLAResolveMins: ptr(120)})
	tickets.put(domain.Ticket{ID: "fresh", Code: "HD-FRESH", Status: domain.TicketStatusInProgress,
		CreatedAt: reportNow.Add(-10 * time.Minute)})
	tickets.put(domain.Ticket{ID: "done", Code: "HD-DONE", Status: domain.TicketStatusResolved,
		CreatedAt: reportNow.Add(-72 * time.Hour)})

	report, err := svc.SLAReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reportNow, report.GeneratedAt)
	assert.Equal(t, 3, report.Summary.Total)
	require.Len(t, report.BreachedTickets, 1)
	assert.Equal(t, "HD-LATE", report.BreachedTickets[0].Code)
	require.Len(t, report.AtRiskTickets, 1)
	assert.Equal(t, "HD-CLOSE", report.AtRiskTickets[0].Code)
	require.Len(t, report.OnTrackTickets, 1)
	assert.Equal(t, sla.DefaultResolveMinutes, report.OnTrackTickets[0].ResolveMinutes)
}

func TestSLAReport_StorageError(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	tickets.listErr = errors.New("connection reset")

	_, err := svc.SLAReport(context.Background())
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, err))
}

func TestSummary(t *testing.T) {
	svc, tickets, surveys := newReportFixture()
	tickets.countBy[repository.DimensionStatus] = []domain.CountBucket{
		{Key: "OPEN", Label: "OPEN", Count: 4},
		{Key: "CLOSED", Label: "CLOSED", Count: 6},
	}
	tickets.countBy[repository.DimensionTeam] = []domain.CountBucket{
		{Key: "team-net", Label: "Network", Count: 7},
		{Key: "", Label: "Unassigned", Count: 3},
	}
	surveys.avg, surveys.count = 4.25, 8

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, summary.Total)
	assert.Len(t, summary.ByTeam, 2)
	assert.Empty(t, summary.ByCategory)
	assert.InDelta(t, 4.25, summary.SurveyAverage, 0.001)
	assert.Equal(t, 8, summary.SurveyCount)
}

func TestExportSLA_Workbook(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	tickets.put(domain.Ticket{ID: "late", Code: "HD-LATE", Title: "Server room hot", Status: domain.TicketStatusOpen,
		PriorityName: "Critical", TeamName: "Infra", CreatedAt: reportNow.Add(-26 * time.Hour)})

	buf, filename, err := svc.ExportSLA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sla-report-20240603-1000.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"SLA", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("SLA")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0][0])
	assert.Len(t, rows[0], 12)
	assert.Equal(t, "HD-LATE", rows[1][0])
	assert.Equal(t, "Critical", rows[1][3])
	assert.True(t, strings.HasPrefix(rows[1][7], "1 วัน"))
	assert.Equal(t, "BREACHED", rows[1][11])

	total, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", total)
	breached, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1", breached)
}

func TestWriteSLAWorkbook_EmptyReport(t *testing.T) {
	buf, err := WriteSLAWorkbook(sla.BuildReport(nil, reportNow))
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("SLA")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestColName(t *testing.T) {
	assert.Equal(t, "A", colName(0))
	assert.Equal(t, "L", colName(11))
	assert.Equal(t, "AA", colName(26))
	assert.Equal(t, "C7", cell("C", 7))
}
