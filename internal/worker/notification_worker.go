package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/events"
)

const deliveryTimeout = 30 * time.Second

// Deliverer sends one event to its notification channels.
type Deliverer interface {
	Deliver(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher and drained by a single goroutine.
type NotificationWorker struct {
	deliverer Deliverer
	logger    *zap.Logger
	queue     chan events.Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(deliverer Deliverer, logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationWorker{
		deliverer: deliverer,
		logger:    logger,
		queue:     make(chan events.Event, queueSize),
	}
}

// Subscribe registers the worker for every event type on dispatcher.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, t := range events.AllEventTypes {
		dispatcher.Subscribe(t, w.enqueue)
	}
}

// Start drains the queue until Stop is called. Pending events are still
// delivered after ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.deliver(ctx, event)
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, event dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
		)
	}
	return nil
}

func (w *NotificationWorker) deliver(parent context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), deliveryTimeout)
	defer cancel()
	if err := w.deliverer.Deliver(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err),
		)
	}
}
