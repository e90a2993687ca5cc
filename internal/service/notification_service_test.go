package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

type sentMessage struct {
	channel string
	msg     Message
}

type mockNotifier struct {
	sent    []sentMessage
	failFor map[string]bool
}

func (m *mockNotifier) Send(_ context.Context, channel domain.NotificationChannel, msg Message) error {
	if m.failFor[channel.ID] {
		return errors.New("webhook returned 500")
	}
	m.sent = append(m.sent, sentMessage{channel: channel.ID, msg: msg})
	return nil
}

func createdEvent() events.Event {
	ticket := &domain.Ticket{ID: "t1", Code: "HD-0000ABCD"}
	return events.New(events.EventTicketCreated, ticket, reporterActor("Somchai"), events.TicketCreatedPayload{
		Title:        "VPN down",
		ReporterName: "Somchai",
		TeamName:     "Network",
	})
}

func TestDeliver_SendsToSubscribedActiveChannels(t *testing.T) {
	repo := &memChannelRepo{channels: []domain.NotificationChannel{
		{ID: "c1", Name: "ops mail", Type: domain.ChannelEmail, Events: []string{"ticket_created"}, IsActive: true},
		{ID: "c2", Name: "discord", Type: domain.ChannelDiscord, Events: []string{"sla_breached"}, IsActive: true},
		{ID: "c3", Name: "muted", Type: domain.ChannelLine, Events: []string{"ticket_created"}, IsActive: false},
	}}
	notifier := &mockNotifier{}
	svc := NewNotificationService(NotificationDependencies{ChannelRepo: repo, Notifier: notifier})

	require.NoError(t, svc.Deliver(context.Background(), createdEvent()))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "c1", notifier.sent[0].channel)
	assert.Equal(t, "[HD-0000ABCD] New ticket: VPN down", notifier.sent[0].msg.Subject)
	assert.Contains(t, notifier.sent[0].msg.Body, "Team: Network")
}

func TestDeliver_ReportsPartialFailure(t *testing.T) {
	repo := &memChannelRepo{channels: []domain.NotificationChannel{
		{ID: "c1", Events: []string{"ticket_created"}, IsActive: true},
		{ID: "c2", Events: []string{"ticket_created"}, IsActive: true},
	}}
	notifier := &mockNotifier{failFor: map[string]bool{"c1": true}}
	core, logs := observer.New(zap.WarnLevel)
	svc := NewNotificationService(NotificationDependencies{ChannelRepo: repo, Notifier: notifier, Logger: zap.New(core)})

	err := svc.Deliver(context.Background(), createdEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, logs.FilterMessage("notification not sent").Len())
}

func TestDeliver_ChannelLookupFailure(t *testing.T) {
	repo := &memChannelRepo{listErr: errors.New("db down")}
	svc := NewNotificationService(NotificationDependencies{ChannelRepo: repo, Notifier: &mockNotifier{}})

	assert.Error(t, svc.Deliver(context.Background(), createdEvent()))
}

func TestRegisterHandlers_DeliversThroughDispatcher(t *testing.T) {
	repo := &memChannelRepo{channels: []domain.NotificationChannel{
		{ID: "c1", Events: []string{"survey_submitted"}, IsActive: true},
	}}
	notifier := &mockNotifier{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewNotificationService(NotificationDependencies{ChannelRepo: repo, Notifier: notifier, Dispatcher: dispatcher})
	svc.RegisterHandlers()

	ticket := &domain.Ticket{ID: "t1", Code: "HD-1"}
	require.NoError(t, dispatcher.Publish(context.Background(),
		events.New(events.EventSurveySubmitted, ticket, reporterActor("x"), events.SurveySubmittedPayload{Rating: 4})))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Rating: 4/5", notifier.sent[0].msg.Body)
}

func TestRenderMessage(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", Code: "HD-42"}
	tests := []struct {
		name    string
		event   events.Event
		subject string
		body    string
	}{
		{
			name:    "unassigned ticket",
			event:   events.New(events.EventTicketCreated, ticket, events.SystemActor, events.TicketCreatedPayload{Title: "Mail", ReporterName: "Nok"}),
			subject: "[HD-42] New ticket: Mail",
			body:    "Reporter: Nok\nTeam: unassigned",
		},
		{
			name: "status",
			event: events.New(events.EventTicketStatusChanged, ticket, events.SystemActor, events.TicketStatusChangedPayload{
				OldStatus: domain.TicketStatusOpen, NewStatus: domain.TicketStatusInProgress,
			}),
			subject: "[HD-42] Status changed",
			body:    "OPEN -> IN_PROGRESS",
		},
		{
			name:    "priority cleared",
			event:   events.New(events.EventTicketPriorityChanged, ticket, events.SystemActor, events.TicketPriorityChangedPayload{OldPriorityID: ptr("p1")}),
			subject: "[HD-42] Priority changed",
			body:    "p1 -> -",
		},
		{
			name:    "assigned",
			event:   events.New(events.EventTicketAssigned, ticket, events.SystemActor, events.TicketAssignedPayload{TeamID: ptr("team-net")}),
			subject: "[HD-42] Assigned",
			body:    "team=team-net assignee=-",
		},
		{
			name:    "comment",
			event:   events.New(events.EventTicketCommentAdded, ticket, staffActor(agent), events.TicketCommentAddedPayload{BodyPreview: "on it"}),
			subject: "[HD-42] New comment by Agent",
			body:    "on it",
		},
		{
			name:    "unknown payload",
			event:   events.New(events.EventSLABreached, ticket, events.SystemActor, nil),
			subject: "[HD-42] sla_breached",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := RenderMessage(tt.event)
			assert.Equal(t, tt.subject, msg.Subject)
			assert.Equal(t, tt.body, msg.Body)
			assert.Equal(t, "HD-42", msg.TicketCode)
		})
	}
}

func TestChannelCRUD_Validation(t *testing.T) {
	repo := &memChannelRepo{}
	svc := NewNotificationService(NotificationDependencies{ChannelRepo: repo})
	ctx := context.Background()

	_, err := svc.CreateChannel(ctx, ChannelInput{Name: "", Type: "SMS", Target: "", Events: []string{"ticket_exploded"}})
	derr := apperrors.ToDomainError(err)
	require.NotNil(t, derr)
	assert.Equal(t, "VALIDATION_FAILED", derr.Code)
	for _, field := range []string{"name", "type", "target", "events"} {
		assert.Contains(t, derr.Details, field)
	}

	ch, err := svc.CreateChannel(ctx, ChannelInput{
		Name:     " Ops ",
		Type:     "discord",
		Target:   "https://discord.example/webhook",
		Events:   []string{"ticket_created", " ticket_created", "sla_breached"},
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ops", ch.Name)
	assert.Equal(t, domain.ChannelDiscord, ch.Type)
	assert.Equal(t, []string{"ticket_created", "sla_breached"}, ch.Events)

	updated, err := svc.UpdateChannel(ctx, ch.ID, ChannelInput{Name: "Ops", Type: "EMAIL", Target: "ops@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, updated.Events)
	assert.Empty(t, updated.Events)
	assert.False(t, updated.IsActive)

	_, err = svc.GetChannel(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	assert.Equal(t, "NOT_FOUND", errorCode(t, svc.DeleteChannel(ctx, "missing")))
	require.NoError(t, svc.DeleteChannel(ctx, ch.ID))
}
