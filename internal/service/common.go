package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/repository"
)

func staffActor(staff *domain.AdminUser) events.Actor {
	if staff == nil {
		return events.SystemActor
	}
	id := staff.ID
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &id, Name: staff.Name}
}

func reporterActor(name string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeReporter, Name: name}
}

func recordHistory(ctx context.Context, repo repository.HistoryRepository, logger *zap.Logger, actor events.Actor, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	if repo == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actor.Type,
		ChangedByID:   actor.StaffID,
		ChangeType:    change,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	if err := repo.Create(ctx, entry); err != nil {
		logger.Warn("ticket history not recorded",
			zap.String("ticket_id", ticketID),
			zap.String("change_type", string(change)),
			zap.Error(err),
		)
	}
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
