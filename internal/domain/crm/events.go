package crm

import "github.com/circlesoft/crm/internal/domain/shared"

// Aggregate type names
const (
	AggregateCustomer     = "Customer"
	AggregateInquiry      = "Inquiry"
	AggregateFollowUp     = "FollowUpRecord"
	AggregateOrder        = "Order"
	AggregateNotification = "Notification"
)

// Event types
const (
	EventCustomerCreated      = "CustomerCreated"
	EventCustomerUpdated      = "CustomerUpdated"
	EventCustomerDeleted      = "CustomerDeleted"
	EventInquiryCreated       = "InquiryCreated"
	EventInquiryUpdated       = "InquiryUpdated"
	EventInquiryDeleted       = "InquiryDeleted"
	EventFollowUpRecorded     = "FollowUpRecorded"
	EventFollowUpDeleted      = "FollowUpDeleted"
	EventOrderCreated         = "OrderCreated"
	EventOrderUpdated         = "OrderUpdated"
	EventOrderDeleted         = "OrderDeleted"
	EventNotificationReceived = "NotificationReceived"
)

// CustomerEvent is raised on customer changes
type CustomerEvent struct {
	shared.BaseDomainEvent
	Customer Customer `json:"customer"`
}

// InquiryEvent is raised on inquiry changes
type InquiryEvent struct {
	shared.BaseDomainEvent
	Inquiry Inquiry `json:"inquiry"`
}

// FollowUpEvent is raised when history changes
type FollowUpEvent struct {
	shared.BaseDomainEvent
	Record FollowUpRecord `json:"record"`
}

// OrderEvent is raised on order changes
type OrderEvent struct {
	shared.BaseDomainEvent
	Order Order `json:"order"`
}

// NotificationReceivedEvent is raised once per notification id that was not
// present before a successful save.
type NotificationReceivedEvent struct {
	shared.BaseDomainEvent
	Notification Notification `json:"notification"`
}

// NewCustomerEvent builds a customer event
func NewCustomerEvent(eventType, ownerID string, c Customer) *CustomerEvent {
	return &CustomerEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateCustomer, c.ID, ownerID), Customer: c}
}

// NewInquiryEvent builds an inquiry event
func NewInquiryEvent(eventType, ownerID string, i Inquiry) *InquiryEvent {
	return &InquiryEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateInquiry, i.ID, ownerID), Inquiry: i}
}

// NewFollowUpEvent builds a follow-up event
func NewFollowUpEvent(eventType, ownerID string, r FollowUpRecord) *FollowUpEvent {
	return &FollowUpEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateFollowUp, r.ID, ownerID), Record: r}
}

// NewOrderEvent builds an order event
func NewOrderEvent(eventType, ownerID string, o Order) *OrderEvent {
	return &OrderEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateOrder, o.ID, ownerID), Order: o}
}

// NewNotificationReceivedEvent builds a notification event
func NewNotificationReceivedEvent(ownerID string, n Notification) *NotificationReceivedEvent {
	return &NotificationReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventNotificationReceived, AggregateNotification, n.ID, ownerID),
		Notification:    n,
	}
}
