// Package crm is the per-user CRM aggregate: customers, inquiries, their
// follow-up history, orders and notifications.
package crm

import (
	"maps"
	"slices"

	"github.com/circlesoft/crm/internal/domain/identity"
)

// Data is the whole durable state of one user. It is persisted as a single
// JSON document and must keep the historic field names.
type Data struct {
	Customers       []Customer               `json:"customers"`
	Clients         []Inquiry                `json:"clients"`
	FollowUpHistory []FollowUpRecord         `json:"followUpHistory"`
	FailureReasons  map[string]FailureReason `json:"failureReasons"`
	Orders          []Order                  `json:"orders"`
	User            identity.User            `json:"user"`
	Notifications   []Notification           `json:"notifications"`
}

// NewEmptyData returns an aggregate with every collection allocated
func NewEmptyData(user identity.User) *Data {
	d := &Data{User: user}
	d.Normalize()
	return d
}

// Clone returns a copy whose collections can be mutated independently.
// Records are replaced wholesale on update, so element-level copies suffice.
func (d *Data) Clone() *Data {
	return &Data{
		Customers:       slices.Clone(d.Customers),
		Clients:         slices.Clone(d.Clients),
		FollowUpHistory: slices.Clone(d.FollowUpHistory),
		FailureReasons:  maps.Clone(d.FailureReasons),
		Orders:          slices.Clone(d.Orders),
		User:            d.User,
		Notifications:   slices.Clone(d.Notifications),
	}
}

// Normalize replaces nil collections with empty ones
func (d *Data) Normalize() {
	if d.Customers == nil {
		d.Customers = []Customer{}
	}
	if d.Clients == nil {
		d.Clients = []Inquiry{}
	}
	if d.FollowUpHistory == nil {
		d.FollowUpHistory = []FollowUpRecord{}
	}
	if d.FailureReasons == nil {
		d.FailureReasons = map[string]FailureReason{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
}

// CustomerIndex returns the position of the customer, or -1
func (d *Data) CustomerIndex(id string) int {
	return slices.IndexFunc(d.Customers, func(c Customer) bool { return c.ID == id })
}

// InquiryIndex returns the position of the inquiry, or -1
func (d *Data) InquiryIndex(id string) int {
	return slices.IndexFunc(d.Clients, func(c Inquiry) bool { return c.ID == id })
}

// OrderIndex returns the position of the order, or -1
func (d *Data) OrderIndex(id string) int {
	return slices.IndexFunc(d.Orders, func(o Order) bool { return o.ID == id })
}

// FollowUpIndex returns the position of the follow-up record, or -1
func (d *Data) FollowUpIndex(id string) int {
	return slices.IndexFunc(d.FollowUpHistory, func(r FollowUpRecord) bool { return r.ID == id })
}

// NotificationIndex returns the position of the notification, or -1
func (d *Data) NotificationIndex(id string) int {
	return slices.IndexFunc(d.Notifications, func(n Notification) bool { return n.ID == id })
}

// FindInquiry returns the inquiry with the id
func (d *Data) FindInquiry(id string) (Inquiry, bool) {
	if i := d.InquiryIndex(id); i >= 0 {
		return d.Clients[i], true
	}
	return Inquiry{}, false
}

// ClientNames maps inquiry id to the inquiry's display name
func (d *Data) ClientNames() map[string]string {
	names := make(map[string]string, len(d.Clients))
	for _, c := range d.Clients {
		names[c.ID] = c.Name
	}
	return names
}

// FollowUpsFor returns the history of one inquiry in stored order
func (d *Data) FollowUpsFor(clientID string) []FollowUpRecord {
	var out []FollowUpRecord
	for _, r := range d.FollowUpHistory {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out
}
