package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// Message is the rendered form of an event handed to a Notifier.
type Message struct {
	EventType  events.EventType
	TicketCode string
	Subject    string
	Body       string
}

// Notifier delivers a message to one channel.
type Notifier interface {
	Send(ctx context.Context, channel domain.NotificationChannel, msg Message) error
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	Logger *zap.Logger
}

// Send implements Notifier.
func (n LogNotifier) Send(_ context.Context, channel domain.NotificationChannel, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("notification",
		zap.String("channel_id", channel.ID),
		zap.String("channel_type", string(channel.Type)),
		zap.String("event_type", string(msg.EventType)),
		zap.String("ticket_code", msg.TicketCode),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// NotificationService manages channels and fans events out to them.
type NotificationService struct {
	channels   repository.NotificationChannelRepository
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	ChannelRepo repository.NotificationChannelRepository
	Dispatcher  events.Dispatcher
	Notifier    Notifier
	Logger      *zap.Logger
}

// ChannelInput carries writable channel fields.
type ChannelInput struct {
	Name     string
	Type     domain.ChannelType
	Target   string
	Events   []string
	IsActive bool
}

// NewNotificationService creates the service. Without a Notifier messages
// are logged.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &NotificationService{
		channels:   deps.ChannelRepo,
		dispatcher: deps.Dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes Deliver to every published event type so
// notifications go out inline with the request that raised them.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range events.AllEventTypes {
		n.dispatcher.Subscribe(t, n.Deliver)
	}
}

// Deliver sends event to every active channel subscribed to its type.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	channels, err := n.channels.ListActiveForEvent(ctx, string(event.Type))
	if err != nil {
		return fmt.Errorf("list channels for %s: %w", event.Type, err)
	}
	if len(channels) == 0 {
		return nil
	}

	msg := RenderMessage(event)
	var failed int
	for _, ch := range channels {
		if err := n.notifier.Send(ctx, ch, msg); err != nil {
			failed++
			n.logger.Warn("notification not sent",
				zap.String("channel_id", ch.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d channels failed", failed, len(channels))
	}
	return nil
}

// RenderMessage turns an event into a short human readable message.
func RenderMessage(event events.Event) Message {
	msg := Message{EventType: event.Type, TicketCode: event.TicketCode}
	code := event.TicketCode

	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		msg.Subject = fmt.Sprintf("[%s] New ticket: %s", code, p.Title)
		lines := []string{"Reporter: " + p.ReporterName}
		if p.TeamName != "" {
			lines = append(lines, "Team: "+p.TeamName)
		} else {
			lines = append(lines, "Team: unassigned")
		}
		msg.Body = strings.Join(lines, "\n")
	case events.TicketStatusChangedPayload:
		msg.Subject = fmt.Sprintf("[%s] Status changed", code)
		msg.Body = fmt.Sprintf("%s -> %s", p.OldStatus, p.NewStatus)
	case events.TicketPriorityChangedPayload:
		msg.Subject = fmt.Sprintf("[%s] Priority changed", code)
		msg.Body = fmt.Sprintf("%s -> %s", deref(p.OldPriorityID), deref(p.NewPriorityID))
	case events.TicketAssignedPayload:
		msg.Subject = fmt.Sprintf("[%s] Assigned", code)
		msg.Body = fmt.Sprintf("team=%s assignee=%s", deref(p.TeamID), deref(p.AssigneeID))
	case events.TicketCommentAddedPayload:
		msg.Subject = fmt.Sprintf("[%s] New comment by %s", code, event.Actor.Name)
		msg.Body = p.BodyPreview
	case events.SurveySubmittedPayload:
		msg.Subject = fmt.Sprintf("[%s] Survey submitted", code)
		msg.Body = fmt.Sprintf("Rating: %d/5", p.Rating)
	case events.SLABreachedPayload:
		msg.Subject = fmt.Sprintf("[%s] SLA breached", code)
		msg.Body = fmt.Sprintf("Open for %s, limit %d minutes", p.AgeText, p.ResolveMinutes)
	default:
		msg.Subject = fmt.Sprintf("[%s] %s", code, event.Type)
	}
	return msg
}

// ListChannels returns every configured channel.
func (n *NotificationService) ListChannels(ctx context.Context) ([]domain.NotificationChannel, error) {
	out, err := n.channels.List(ctx)
	return out, apperrors.MapError(err)
}

// GetChannel loads one channel.
func (n *NotificationService) GetChannel(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	ch, err := n.channels.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "notification channel", map[string]any{"id": id})
	}
	return ch, nil
}

// CreateChannel stores a new channel.
func (n *NotificationService) CreateChannel(ctx context.Context, input ChannelInput) (*domain.NotificationChannel, error) {
	ch := &domain.NotificationChannel{}
	if err := applyChannel(ch, input); err != nil {
		return nil, err
	}
	if err := n.channels.Create(ctx, ch); err != nil {
		return nil, mapWriteError(err, "notification channel")
	}
	return ch, nil
}

// UpdateChannel rewrites a channel.
func (n *NotificationService) UpdateChannel(ctx context.Context, id string, input ChannelInput) (*domain.NotificationChannel, error) {
	ch, err := n.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyChannel(ch, input); err != nil {
		return nil, err
	}
	if err := n.channels.Update(ctx, ch); err != nil {
		return nil, mapWriteError(err, "notification channel")
	}
	return ch, nil
}

// DeleteChannel removes a channel.
func (n *NotificationService) DeleteChannel(ctx context.Context, id string) error {
	return mapWriteError(n.channels.Delete(ctx, id), "notification channel")
}

func applyChannel(ch *domain.NotificationChannel, input ChannelInput) error {
	details := map[string]any{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "is required"
	}
	channelType := domain.ChannelType(strings.ToUpper(strings.TrimSpace(string(input.Type))))
	if !channelType.Valid() {
		details["type"] = "must be one of EMAIL LINE DISCORD"
	}
	target := strings.TrimSpace(input.Target)
	if target == "" {
		details["target"] = "is required"
	}

	subscribed := make([]string, 0, len(input.Events))
	seen := map[string]bool{}
	for _, e := range input.Events {
		e = strings.TrimSpace(e)
		if !events.EventType(e).Valid() {
			details["events"] = "unknown event type " + e
			continue
		}
		if !seen[e] {
			seen[e] = true
			subscribed = append(subscribed, e)
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid notification channel", details)
	}

	ch.Name = name
	ch.Type = channelType
	ch.Target = target
	ch.Events = subscribed
	ch.IsActive = input.IsActive
	return nil
}

func deref(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
