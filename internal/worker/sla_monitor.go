package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/sla"
)

// ReportSource builds the current SLA report.
type ReportSource interface {
	SLAReport(ctx context.Context) (sla.Report, error)
}

// SLAMonitor periodically publishes sla_breached for tickets that crossed
// their resolve threshold. A ticket is announced once while it stays breached.
type SLAMonitor struct {
	reports    ReportSource
	dispatcher events.Dispatcher
	logger     *zap.Logger
	schedule   string
	cron       *cron.Cron

	mu       sync.Mutex
	notified map[string]struct{}
}

// NewSLAMonitor validates the cron schedule and builds the monitor.
func NewSLAMonitor(reports ReportSource, dispatcher events.Dispatcher, logger *zap.Logger, schedule string) (*SLAMonitor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid SLA monitor schedule %q: %w", schedule, err)
	}
	return &SLAMonitor{
		reports:    reports,
		dispatcher: dispatcher,
		logger:     logger,
		schedule:   schedule,
		notified:   map[string]struct{}{},
	}, nil
}

// Start registers the job and starts the scheduler.
func (m *SLAMonitor) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(m.schedule, func() {
		if _, err := m.RunOnce(ctx); err != nil {
			m.logger.Error("sla monitor run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule sla monitor: %w", err)
	}
	m.cron = c
	c.Start()
	m.logger.Info("sla monitor started", zap.String("schedule", m.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job.
func (m *SLAMonitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

// RunOnce evaluates open tickets and returns how many breaches were newly
// announced. Tickets that left the breached set are forgotten so a reopened
// breach is announced again.
func (m *SLAMonitor) RunOnce(ctx context.Context) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	report, err := m.reports.SLAReport(runCtx)
	if err != nil {
		return 0, err
	}

	breached := make(map[string]struct{}, len(report.BreachedTickets))
	announced := 0
	for _, entry := range report.BreachedTickets {
		breached[entry.TicketID] = struct{}{}
		if m.wasNotified(entry.TicketID) {
			continue
		}
		ticket := &domain.Ticket{ID: entry.TicketID, Code: entry.Code}
		event := events.New(events.EventSLABreached, ticket, events.SystemActor, events.SLABreachedPayload{
			AgeMinutes:     entry.AgeMinutes,
			AgeText:        entry.AgeText,
			ResolveMinutes: entry.ResolveMinutes,
			PriorityName:   entry.PriorityName,
			TeamName:       entry.TeamName,
		})
		if m.dispatcher != nil {
			if err := m.dispatcher.Publish(runCtx, event); err != nil {
				m.logger.Warn("publish sla breach failed",
					zap.String("ticket_id", entry.TicketID),
					zap.Error(err),
				)
				continue
			}
		}
		m.markNotified(entry.TicketID)
		announced++
	}
	m.retain(breached)

	if announced > 0 {
		m.logger.Info("sla breaches announced",
			zap.Int("new", announced),
			zap.Int("breached", report.Summary.Breached),
			zap.Int("open", report.Summary.Total),
		)
	}
	return announced, nil
}

func (m *SLAMonitor) wasNotified(ticketID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notified[ticketID]
	return ok
}

func (m *SLAMonitor) markNotified(ticketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[ticketID] = struct{}{}
}

// retain drops every notified ticket that is not in keep.
func (m *SLAMonitor) retain(keep map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.notified {
		if _, ok := keep[id]; !ok {
			delete(m.notified, id)
		}
	}
}
