package notification

import (
	"context"
	"sync"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// Hub holds one Delivery per user
type Hub struct {
	prefs PreferenceSource
	opts  Options

	mu         sync.Mutex
	deliveries map[string]*Delivery
}

// NewHub creates a hub whose deliveries share prefs and opts
func NewHub(prefs PreferenceSource, opts Options) *Hub {
	return &Hub{prefs: prefs, opts: opts.withDefaults(), deliveries: make(map[string]*Delivery)}
}

// For returns the user's delivery, creating it on first use
func (h *Hub) For(userID string) *Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.deliveries[userID]
	if !ok {
		d = NewDelivery(userID, h.prefs, h.opts)
		h.deliveries[userID] = d
	}
	return d
}

// Remove closes and forgets the user's delivery
func (h *Hub) Remove(userID string) {
	h.mu.Lock()
	d, ok := h.deliveries[userID]
	delete(h.deliveries, userID)
	h.mu.Unlock()
	if ok {
		d.Close()
	}
}

// Close closes every delivery
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.deliveries
	h.deliveries = make(map[string]*Delivery)
	h.mu.Unlock()
	for _, d := range all {
		d.Close()
	}
}

// ReceivedCounter counts delivered notifications
type ReceivedCounter interface {
	NotificationsReceived(n int)
}

// EventHandler routes NotificationReceived events to the owner's delivery
type EventHandler struct {
	hub     *Hub
	counter ReceivedCounter
	logger  *zap.Logger
}

var _ shared.EventHandler = (*EventHandler)(nil)

// NewEventHandler creates the handler; counter may be nil
func NewEventHandler(hub *Hub, counter ReceivedCounter, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{hub: hub, counter: counter, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *EventHandler) EventTypes() []string {
	return []string{crm.EventNotificationReceived}
}

// Handle implements shared.EventHandler
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*crm.NotificationReceivedEvent)
	if !ok {
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}
	h.hub.For(e.OwnerID()).Deliver(ctx, []crm.Notification{e.Notification})
	if h.counter != nil {
		h.counter.NotificationsReceived(1)
	}
	return nil
}
