package crm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MutationObserver records the outcome of every manager action
type MutationObserver interface {
	ObserveMutation(operation string, err error, d time.Duration)
}

// Policies selects how deletes cascade and whether references are checked
type Policies struct {
	CustomerDelete         crm.CustomerDeletePolicy
	RevertFollowUpOnDelete bool
	EnforceReferences      bool
}

// DefaultPolicies keeps dangling customer references, never reverts on
// follow-up delete and checks references.
func DefaultPolicies() Policies {
	return Policies{CustomerDelete: crm.DeleteKeep, EnforceReferences: true}
}

// NewPolicies builds policies from their configured form
func NewPolicies(customerDelete string, revertFollowUpOnDelete, enforceReferences bool) Policies {
	return Policies{
		CustomerDelete:         crm.ParseCustomerDeletePolicy(customerDelete),
		RevertFollowUpOnDelete: revertFollowUpOnDelete,
		EnforceReferences:      enforceReferences,
	}
}

// Dependencies are the collaborators of a Manager. Only Repository is required.
type Dependencies struct {
	Repository crm.Repository
	Accounts   identity.AccountRepository
	Publisher  shared.EventPublisher
	Observer   MutationObserver
	Logger     *zap.Logger
	Policies   Policies
	MockSeed   int64
	Now        func() time.Time
	Location   *time.Location
}

// Manager is the in-memory mirror of one user's aggregate. Each action works
// on a copy, persists the whole copy and swaps it in only when the save
// succeeded, so a failed save leaves the previous state intact.
type Manager struct {
	userID    string
	repo      crm.Repository
	publisher shared.EventPublisher
	observer  MutationObserver
	logger    *zap.Logger
	policies  Policies
	validate  *validator.Validate
	now       func() time.Time
	loc       *time.Location

	mu   sync.RWMutex
	data *crm.Data
}

// Open loads the user's aggregate, generating, backfilling or resetting it
// as needed, and returns a manager bound to it.
func Open(ctx context.Context, userID string, deps Dependencies) (*Manager, error) {
	if deps.Repository == nil {
		return nil, errors.New("crm manager requires a repository")
	}
	if userID == "" {
		return nil, shared.ErrNoCurrentUser
	}
	m := &Manager{
		userID:    userID,
		repo:      deps.Repository,
		publisher: deps.Publisher,
		observer:  deps.Observer,
		logger:    deps.Logger,
		policies:  deps.Policies,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       deps.Now,
		loc:       deps.Location,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.logger = m.logger.With(zap.String("user_id", userID))
	if m.now == nil {
		m.now = time.Now
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.policies.CustomerDelete == "" {
		m.policies.CustomerDelete = crm.DeleteKeep
	}

	ctx, span := telemetry.StartSpan(ctx, "crm", "open", attribute.String("user_id", userID))
	data, err := m.load(ctx, deps)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	m.data = data
	return m, nil
}

func (m *Manager) load(ctx context.Context, deps Dependencies) (*crm.Data, error) {
	data, err := m.repo.Load(ctx, m.userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		gen := NewMockGenerator(deps.MockSeed, m.now, m.loc)
		data = gen.Generate(m.userID, m.profile(ctx, deps.Accounts))
		m.logger.Info("no stored crm data, generated mock dataset",
			zap.Int("customers", len(data.Customers)),
			zap.Int("inquiries", len(data.Clients)),
			zap.Int("orders", len(data.Orders)))
	case errors.Is(err, crm.ErrCorruptData):
		m.logger.Warn("stored crm data is corrupt, resetting to an empty aggregate", zap.Error(err))
		data = crm.NewEmptyData(m.profile(ctx, deps.Accounts))
	case err != nil:
		return nil, fmt.Errorf("load crm data: %w", err)
	case data.Customers == nil:
		gen := NewMockGenerator(deps.MockSeed, m.now, m.loc)
		data.Customers = gen.Customers(m.userID)
		data.Normalize()
		m.logger.Info("backfilled missing customers", zap.Int("customers", len(data.Customers)))
	default:
		data.Normalize()
		return data, nil
	}

	if err := m.repo.Save(ctx, m.userID, data); err != nil {
		return nil, fmt.Errorf("persist initial crm data: %w", err)
	}
	return data, nil
}

// profile returns the stored account's profile or the mock default
func (m *Manager) profile(ctx context.Context, accounts identity.AccountRepository) identity.User {
	if accounts != nil {
		list, err := accounts.List(ctx)
		if err == nil {
			if i := identity.FindByID(list, m.userID); i >= 0 {
				return list[i].User
			}
		}
	}
	return DefaultProfile(m.userID)
}

// UserID returns the owner of the aggregate
func (m *Manager) UserID() string {
	return m.userID
}

// Snapshot returns a copy of the current aggregate
func (m *Manager) Snapshot() *crm.Data {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone()
}

// Reload replaces the in-memory state with what is stored. Notifications
// that appeared in storage are published as received.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	data, err := m.repo.Load(ctx, m.userID)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("reload crm data: %w", err)
	}
	data.Normalize()
	prev := m.data
	m.data = data
	m.mu.Unlock()

	m.publish(ctx, m.notificationEvents(prev, data))
	return nil
}

// mutation is applied to a private copy of the aggregate
type mutation func(d *crm.Data) ([]shared.DomainEvent, error)

func (m *Manager) mutate(ctx context.Context, op string, fn mutation) (err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "crm", op, attribute.String("user_id", m.userID))
	defer func() {
		telemetry.EndSpan(span, err)
		if m.observer != nil {
			m.observer.ObserveMutation(op, err, time.Since(start))
		}
	}()

	m.mu.Lock()
	next := m.data.Clone()
	events, err := fn(next)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err = m.repo.Save(ctx, m.userID, next); err != nil {
		m.mu.Unlock()
		m.logger.Error("failed to persist crm data", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("save crm data: %w", err)
	}
	prev := m.data
	m.data = next
	m.mu.Unlock()

	events = append(events, m.notificationEvents(prev, next)...)
	m.publish(ctx, events)
	return nil
}

func (m *Manager) publish(ctx context.Context, events []shared.DomainEvent) {
	if m.publisher == nil || len(events) == 0 {
		return
	}
	if err := m.publisher.Publish(ctx, events...); err != nil {
		m.logger.Warn("failed to publish crm events", zap.Error(err))
	}
}

// notificationEvents returns one event per notification id absent from prev
func (m *Manager) notificationEvents(prev, next *crm.Data) []shared.DomainEvent {
	seen := make(map[string]struct{}, len(prev.Notifications))
	for _, n := range prev.Notifications {
		seen[n.ID] = struct{}{}
	}
	var events []shared.DomainEvent
	for _, n := range next.Notifications {
		if _, ok := seen[n.ID]; !ok {
			events = append(events, crm.NewNotificationReceivedEvent(m.userID, n))
		}
	}
	return events
}

func (m *Manager) check(v any) error {
	if err := m.validate.Struct(v); err != nil {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}
	return nil
}

func (m *Manager) timestamp() string {
	return shared.FormatTimestamp(m.now())
}

func newID() string {
	return uuid.NewString()
}

// Customers

// AddCustomer prepends a customer. The (name, store) pair must be unique.
func (m *Manager) AddCustomer(ctx context.Context, c crm.Customer) (crm.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Store = strings.TrimSpace(c.Store)
	if err := m.check(c); err != nil {
		return crm.Customer{}, err
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = m.timestamp()
	}
	err := m.mutate(ctx, "add_customer", func(d *crm.Data) ([]shared.DomainEvent, error) {
		for _, existing := range d.Customers {
			if existing.SameIdentity(c) {
				return nil, crm.ErrCustomerExists
			}
		}
		d.Customers = slices.Insert(d.Customers, 0, c)
		return []shared.DomainEvent{crm.NewCustomerEvent(crm.EventCustomerCreated, m.userID, c)}, nil
	})
	if err != nil {
		return crm.Customer{}, err
	}
	return c, nil
}

// UpdateCustomer replaces a customer and copies its name, store and contact
// into every inquiry linked to it.
func (m *Manager) UpdateCustomer(ctx context.Context, c crm.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Store = strings.TrimSpace(c.Store)
	if err := m.check(c); err != nil {
		return err
	}
	return m.mutate(ctx, "update_customer", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.CustomerIndex(c.ID)
		if idx < 0 {
			return nil, crm.ErrCustomerNotFound
		}
		for i, existing := range d.Customers {
			if i != idx && existing.SameIdentity(c) {
				return nil, crm.ErrCustomerExists
			}
		}
		if c.CreatedAt == "" {
			c.CreatedAt = d.Customers[idx].CreatedAt
		}
		d.Customers[idx] = c
		for i := range d.Clients {
			if d.Clients[i].CustomerID == c.ID {
				d.Clients[i].ApplyCustomer(c)
			}
		}
		return []shared.DomainEvent{crm.NewCustomerEvent(crm.EventCustomerUpdated, m.userID, c)}, nil
	})
}

// DeleteCustomer removes a customer. Linked inquiries are kept, unlinked or
// removed according to the configured policy.
func (m *Manager) DeleteCustomer(ctx context.Context, id string) error {
	return m.mutate(ctx, "delete_customer", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.CustomerIndex(id)
		if idx < 0 {
			return nil, crm.ErrCustomerNotFound
		}
		removed := d.Customers[idx]
		d.Customers = slices.Delete(d.Customers, idx, idx+1)
		events := []shared.DomainEvent{crm.NewCustomerEvent(crm.EventCustomerDeleted, m.userID, removed)}

		switch m.policies.CustomerDelete {
		case crm.DeleteUnlink:
			for i := range d.Clients {
				if d.Clients[i].CustomerID == id {
					d.Clients[i].CustomerID = ""
					events = append(events, crm.NewInquiryEvent(crm.EventInquiryUpdated, m.userID, d.Clients[i]))
				}
			}
		case crm.DeleteCascade:
			var linked []string
			for _, c := range d.Clients {
				if c.CustomerID == id {
					linked = append(linked, c.ID)
				}
			}
			for _, clientID := range linked {
				events = append(events, m.removeInquiry(d, clientID)...)
			}
		}
		return events, nil
	})
}

// Inquiries

// AddInquiry prepends an inquiry. Blank name, store and contact are filled
// from the linked customer.
func (m *Manager) AddInquiry(ctx context.Context, inq crm.Inquiry) (crm.Inquiry, error) {
	if inq.ID == "" {
		inq.ID = newID()
	}
	if inq.CreatedAt == "" {
		inq.CreatedAt = m.timestamp()
	}
	if err := m.check(inq); err != nil {
		return crm.Inquiry{}, err
	}
	err := m.mutate(ctx, "add_inquiry", func(d *crm.Data) ([]shared.DomainEvent, error) {
		if err := m.linkCustomer(d, &inq); err != nil {
			return nil, err
		}
		inq.Normalize()
		d.Clients = slices.Insert(d.Clients, 0, inq)
		return []shared.DomainEvent{crm.NewInquiryEvent(crm.EventInquiryCreated, m.userID, inq)}, nil
	})
	if err != nil {
		return crm.Inquiry{}, err
	}
	return inq, nil
}

// UpdateInquiry replaces an inquiry
func (m *Manager) UpdateInquiry(ctx context.Context, inq crm.Inquiry) error {
	if err := m.check(inq); err != nil {
		return err
	}
	return m.mutate(ctx, "update_inquiry", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.InquiryIndex(inq.ID)
		if idx < 0 {
			return nil, crm.ErrInquiryNotFound
		}
		if err := m.linkCustomer(d, &inq); err != nil {
			return nil, err
		}
		if inq.CreatedAt == "" {
			inq.CreatedAt = d.Clients[idx].CreatedAt
		}
		inq.Normalize()
		d.Clients[idx] = inq
		return []shared.DomainEvent{crm.NewInquiryEvent(crm.EventInquiryUpdated, m.userID, inq)}, nil
	})
}

func (m *Manager) linkCustomer(d *crm.Data, inq *crm.Inquiry) error {
	if inq.CustomerID == "" {
		return nil
	}
	idx := d.CustomerIndex(inq.CustomerID)
	if idx < 0 {
		if m.policies.EnforceReferences {
			return fmt.Errorf("%w: customer %s", crm.ErrReferenceNotFound, inq.CustomerID)
		}
		return nil
	}
	c := d.Customers[idx]
	if inq.Name == "" {
		inq.Name = c.Name
	}
	if inq.Store == "" {
		inq.Store = c.Store
	}
	if inq.Contact == "" {
		inq.Contact = c.Contact
	}
	return nil
}

// DeleteInquiry removes an inquiry with its follow-up history, its orders and
// its failure reason.
func (m *Manager) DeleteInquiry(ctx context.Context, id string) error {
	return m.mutate(ctx, "delete_inquiry", func(d *crm.Data) ([]shared.DomainEvent, error) {
		if d.InquiryIndex(id) < 0 {
			return nil, crm.ErrInquiryNotFound
		}
		return m.removeInquiry(d, id), nil
	})
}

func (m *Manager) removeInquiry(d *crm.Data, id string) []shared.DomainEvent {
	var events []shared.DomainEvent
	idx := d.InquiryIndex(id)
	if idx >= 0 {
		events = append(events, crm.NewInquiryEvent(crm.EventInquiryDeleted, m.userID, d.Clients[idx]))
		d.Clients = slices.Delete(d.Clients, idx, idx+1)
	}
	d.FollowUpHistory = slices.DeleteFunc(d.FollowUpHistory, func(r crm.FollowUpRecord) bool {
		return r.ClientID == id
	})
	d.Orders = slices.DeleteFunc(d.Orders, func(o crm.Order) bool {
		if o.ClientID == id {
			events = append(events, crm.NewOrderEvent(crm.EventOrderDeleted, m.userID, o))
			return true
		}
		return false
	})
	delete(d.FailureReasons, id)
	return events
}

// Orders

// AddOrder prepends an order, assigning an order number and the client name
// when they are blank.
func (m *Manager) AddOrder(ctx context.Context, o crm.Order) (crm.Order, error) {
	if err := m.check(o); err != nil {
		return crm.Order{}, err
	}
	if o.ID == "" {
		o.ID = newID()
	}
	now := m.now()
	if o.CreatedAt == "" {
		o.CreatedAt = shared.FormatTimestamp(now)
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = o.CreatedAt
	}
	err := m.mutate(ctx, "add_order", func(d *crm.Data) ([]shared.DomainEvent, error) {
		inq, ok := d.FindInquiry(o.ClientID)
		if !ok && m.policies.EnforceReferences {
			return nil, fmt.Errorf("%w: inquiry %s", crm.ErrReferenceNotFound, o.ClientID)
		}
		if o.ClientName == "" && ok {
			o.ClientName = inq.Name
		}
		if o.OrderNumber == "" {
			o.OrderNumber = fmt.Sprintf("ORD%d%04d", now.In(m.loc).Year(), len(d.Orders)+1)
		}
		d.Orders = slices.Insert(d.Orders, 0, o)
		return []shared.DomainEvent{crm.NewOrderEvent(crm.EventOrderCreated, m.userID, o)}, nil
	})
	if err != nil {
		return crm.Order{}, err
	}
	return o, nil
}

// UpdateOrder replaces an order and stamps its update time
func (m *Manager) UpdateOrder(ctx context.Context, o crm.Order) error {
	if err := m.check(o); err != nil {
		return err
	}
	return m.mutate(ctx, "update_order", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.OrderIndex(o.ID)
		if idx < 0 {
			return nil, crm.ErrOrderNotFound
		}
		if _, ok := d.FindInquiry(o.ClientID); !ok && m.policies.EnforceReferences {
			return nil, fmt.Errorf("%w: inquiry %s", crm.ErrReferenceNotFound, o.ClientID)
		}
		if o.CreatedAt == "" {
			o.CreatedAt = d.Orders[idx].CreatedAt
		}
		o.UpdatedAt = m.timestamp()
		d.Orders[idx] = o
		return []shared.DomainEvent{crm.NewOrderEvent(crm.EventOrderUpdated, m.userID, o)}, nil
	})
}

// DeleteOrder removes an order
func (m *Manager) DeleteOrder(ctx context.Context, id string) error {
	return m.mutate(ctx, "delete_order", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.OrderIndex(id)
		if idx < 0 {
			return nil, crm.ErrOrderNotFound
		}
		removed := d.Orders[idx]
		d.Orders = slices.Delete(d.Orders, idx, idx+1)
		return []shared.DomainEvent{crm.NewOrderEvent(crm.EventOrderDeleted, m.userID, removed)}, nil
	})
}

// Follow-ups

// AddFollowUp records a follow-up and, in the same save, patches the inquiry
// status, next follow-up date and counter. A lost follow-up must carry
// failure details, which upsert the inquiry's failure reason.
func (m *Manager) AddFollowUp(ctx context.Context, rec crm.FollowUpRecord, failure *crm.FailureDetails) (crm.FollowUpRecord, error) {
	if err := m.check(rec); err != nil {
		return crm.FollowUpRecord{}, err
	}
	lost := rec.Status == crm.StatusLost
	if lost && failure == nil {
		return crm.FollowUpRecord{}, crm.ErrFailureDetailRequired
	}
	var reason crm.FailureDetails
	if lost {
		reason = crm.FailureDetails{Reason: failure.Reason, Detail: strings.TrimSpace(failure.Detail)}
		if err := m.check(reason); err != nil {
			return crm.FollowUpRecord{}, err
		}
		if reason.Detail == "" {
			return crm.FollowUpRecord{}, crm.ErrFailureDetailRequired
		}
		rec.FailureReason = reason.Reason
		rec.FailureReasonDetail = reason.Detail
	}
	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.Date == "" {
		rec.Date = m.timestamp()
	}
	if rec.Status.IsTerminal() || (rec.NextFollowUpDate != nil && *rec.NextFollowUpDate == "") {
		rec.NextFollowUpDate = nil
	}

	err := m.mutate(ctx, "add_follow_up", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.InquiryIndex(rec.ClientID)
		if idx < 0 && m.policies.EnforceReferences {
			return nil, fmt.Errorf("%w: inquiry %s", crm.ErrReferenceNotFound, rec.ClientID)
		}
		d.FollowUpHistory = slices.Insert(d.FollowUpHistory, 0, rec)
		events := []shared.DomainEvent{crm.NewFollowUpEvent(crm.EventFollowUpRecorded, m.userID, rec)}

		if idx >= 0 {
			inq := &d.Clients[idx]
			inq.Status = rec.Status
			inq.FollowUpDate = cloneString(rec.NextFollowUpDate)
			inq.FollowUpCount++
			inq.Normalize()
			events = append(events, crm.NewInquiryEvent(crm.EventInquiryUpdated, m.userID, *inq))
		}
		if lost {
			d.FailureReasons[rec.ClientID] = crm.FailureReason{
				Reason: string(reason.Reason),
				Detail: reason.Detail,
				Date:   m.timestamp(),
			}
		}
		return events, nil
	})
	if err != nil {
		return crm.FollowUpRecord{}, err
	}
	return rec, nil
}

// DeleteFollowUp removes a history record. The inquiry is left as is unless
// reverting is enabled, in which case it is recomputed from what remains.
func (m *Manager) DeleteFollowUp(ctx context.Context, id string) error {
	return m.mutate(ctx, "delete_follow_up", func(d *crm.Data) ([]shared.DomainEvent, error) {
		idx := d.FollowUpIndex(id)
		if idx < 0 {
			return nil, crm.ErrFollowUpNotFound
		}
		removed := d.FollowUpHistory[idx]
		d.FollowUpHistory = slices.Delete(d.FollowUpHistory, idx, idx+1)
		events := []shared.DomainEvent{crm.NewFollowUpEvent(crm.EventFollowUpDeleted, m.userID, removed)}

		if m.policies.RevertFollowUpOnDelete {
			if inq, ok := m.revertInquiry(d, removed.ClientID); ok {
				events = append(events, crm.NewInquiryEvent(crm.EventInquiryUpdated, m.userID, inq))
			}
		}
		return events, nil
	})
}

// revertInquiry recomputes status and next date from the latest remaining
// record, falling back to pending when no history is left.
func (m *Manager) revertInquiry(d *crm.Data, clientID string) (crm.Inquiry, bool) {
	idx := d.InquiryIndex(clientID)
	if idx < 0 {
		return crm.Inquiry{}, false
	}
	inq := &d.Clients[idx]
	remaining := d.FollowUpsFor(clientID)
	if latest, ok := m.latestRecord(remaining); ok {
		inq.Status = latest.Status
		inq.FollowUpDate = cloneString(latest.NextFollowUpDate)
	} else {
		inq.Status = crm.StatusPending
		inq.FollowUpDate = nil
	}
	inq.FollowUpCount = max(inq.FollowUpCount-1, 0)
	inq.Normalize()
	if inq.Status != crm.StatusLost {
		delete(d.FailureReasons, clientID)
	}
	return *inq, true
}

// latestRecord picks the record with the newest date. History is kept
// newest-first, so on equal dates the earlier position wins. Records with an
// unreadable date are only used when no record has a valid one.
func (m *Manager) latestRecord(records []crm.FollowUpRecord) (crm.FollowUpRecord, bool) {
	var (
		best     crm.FollowUpRecord
		bestTime time.Time
		found    bool
	)
	for _, r := range records {
		t, ok := shared.ParseTime(r.Date, m.loc)
		if !ok {
			m.logger.Warn("Skipping follow-up with unreadable date",
				zap.String("follow_up_id", r.ID),
				zap.String("date", r.Date))
			continue
		}
		if !found || t.After(bestTime) {
			best, bestTime, found = r, t, true
		}
	}
	if !found && len(records) > 0 {
		return records[0], true
	}
	return best, found
}

// Notifications

// UpdateNotifications replaces the notification list
func (m *Manager) UpdateNotifications(ctx context.Context, list []crm.Notification) error {
	return m.mutate(ctx, "update_notifications", func(d *crm.Data) ([]shared.DomainEvent, error) {
		d.Notifications = slices.Clone(list)
		if d.Notifications == nil {
			d.Notifications = []crm.Notification{}
		}
		return nil, nil
	})
}

// editNotifications applies fn to the list inside a single mutation
func (m *Manager) editNotifications(ctx context.Context, op string, fn func([]crm.Notification) ([]crm.Notification, error)) error {
	return m.mutate(ctx, op, func(d *crm.Data) ([]shared.DomainEvent, error) {
		list, err := fn(d.Notifications)
		if err != nil {
			return nil, err
		}
		d.Notifications = list
		return nil, nil
	})
}

func (m *Manager) toggleNotification(ctx context.Context, op, id string, apply func(*crm.Notification)) error {
	return m.editNotifications(ctx, op, func(list []crm.Notification) ([]crm.Notification, error) {
		i := slices.IndexFunc(list, func(n crm.Notification) bool { return n.ID == id })
		if i < 0 {
			return nil, crm.ErrNotificationNotFound
		}
		apply(&list[i])
		return list, nil
	})
}

// MarkNotificationRead sets the read flag
func (m *Manager) MarkNotificationRead(ctx context.Context, id string) error {
	return m.toggleNotification(ctx, "mark_notification_read", id, func(n *crm.Notification) { n.Read = true })
}

// MarkAllNotificationsRead sets the read flag on every notification
func (m *Manager) MarkAllNotificationsRead(ctx context.Context) error {
	return m.editNotifications(ctx, "mark_all_notifications_read", func(list []crm.Notification) ([]crm.Notification, error) {
		for i := range list {
			list[i].Read = true
		}
		return list, nil
	})
}

// ToggleNotificationStar flips the starred flag
func (m *Manager) ToggleNotificationStar(ctx context.Context, id string) error {
	return m.toggleNotification(ctx, "toggle_notification_star", id, func(n *crm.Notification) { n.IsStarred = !n.IsStarred })
}

// ToggleNotificationPin flips the pinned flag
func (m *Manager) ToggleNotificationPin(ctx context.Context, id string) error {
	return m.toggleNotification(ctx, "toggle_notification_pin", id, func(n *crm.Notification) { n.IsPinned = !n.IsPinned })
}

// DeleteNotification removes one notification
func (m *Manager) DeleteNotification(ctx context.Context, id string) error {
	return m.editNotifications(ctx, "delete_notification", func(list []crm.Notification) ([]crm.Notification, error) {
		i := slices.IndexFunc(list, func(n crm.Notification) bool { return n.ID == id })
		if i < 0 {
			return nil, crm.ErrNotificationNotFound
		}
		return slices.Delete(list, i, i+1), nil
	})
}

// ClearNotifications removes every notification
func (m *Manager) ClearNotifications(ctx context.Context) error {
	return m.editNotifications(ctx, "clear_notifications", func([]crm.Notification) ([]crm.Notification, error) {
		return []crm.Notification{}, nil
	})
}

// PushNotification prepends a notification, which is then published as
// received.
func (m *Manager) PushNotification(ctx context.Context, n crm.Notification) (crm.Notification, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Date == "" {
		n.Date = m.timestamp()
	}
	err := m.editNotifications(ctx, "push_notification", func(list []crm.Notification) ([]crm.Notification, error) {
		return slices.Insert(list, 0, n), nil
	})
	if err != nil {
		return crm.Notification{}, err
	}
	return n, nil
}

// Profile

// UpdateUser replaces the profile embedded in the aggregate
func (m *Manager) UpdateUser(ctx context.Context, u identity.User) error {
	return m.mutate(ctx, "update_user", func(d *crm.Data) ([]shared.DomainEvent, error) {
		d.User = u
		return nil, nil
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
