package crm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// PickerLimit caps customer picker suggestions
const PickerLimit = 8

// UnknownClient is shown for orders whose inquiry cannot be resolved
const UnknownClient = "Unknown Client"

// Default sorts of the list views
var (
	DefaultInquirySort = shared.SortState{Key: "createdAt", Direction: shared.SortDescending}
	DefaultOrderSort   = shared.SortState{Key: "createdAt", Direction: shared.SortDescending}
)

// ErrUnknownSortKey is returned for a sort key the view does not support
var ErrUnknownSortKey = shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown sort key")

// CustomerQuery filters and pages the customer list
type CustomerQuery struct {
	Search   string
	Page     int
	PageSize int
}

// ListCustomers filters customers by name, store or contact and pages them
// in stored order.
func ListCustomers(d *crm.Data, q CustomerQuery) shared.Page[crm.Customer] {
	var out []crm.Customer
	for _, c := range d.Customers {
		if shared.ContainsFold(q.Search, c.Name, c.Store, c.Contact) {
			out = append(out, c)
		}
	}
	return shared.Paginate(out, q.Page, q.PageSize)
}

// PickCustomers returns picker suggestions. Name and store match without
// case; contact is matched as typed. An empty query yields nothing.
func PickCustomers(d *crm.Data, query string) []crm.Customer {
	if query == "" {
		return []crm.Customer{}
	}
	lower := strings.ToLower(query)
	out := make([]crm.Customer, 0, PickerLimit)
	for _, c := range d.Customers {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.Store), lower) ||
			strings.Contains(c.Contact, lower) {
			out = append(out, c)
			if len(out) == PickerLimit {
				break
			}
		}
	}
	return out
}

// InquiryQuery filters, sorts and pages the inquiry list
type InquiryQuery struct {
	Search    string
	Status    string
	Intention string
	Sort      shared.SortState
	Page      int
	PageSize  int
}

// ListInquiries returns one page of inquiries
func ListInquiries(d *crm.Data, q InquiryQuery) (shared.Page[crm.Inquiry], error) {
	var out []crm.Inquiry
	for _, c := range d.Clients {
		if !shared.ContainsFold(q.Search, c.Name, c.Store, c.Contact) {
			continue
		}
		if !shared.MatchesFilter(q.Status, c.Status) || !shared.MatchesFilter(q.Intention, c.IntentionLevel) {
			continue
		}
		out = append(out, c)
	}

	sort := q.Sort
	if sort.Key == "" {
		sort = DefaultInquirySort
	}
	if err := sortInquiries(out, sort); err != nil {
		return shared.Page[crm.Inquiry]{}, err
	}
	return shared.Paginate(out, q.Page, q.PageSize), nil
}

func present(s string) (string, bool) { return s, true }

func sortInquiries(items []crm.Inquiry, s shared.SortState) error {
	text := map[string]func(crm.Inquiry) string{
		"createdAt":      func(c crm.Inquiry) string { return c.CreatedAt },
		"inquiryDate":    func(c crm.Inquiry) string { return c.InquiryDate },
		"name":           func(c crm.Inquiry) string { return c.Name },
		"store":          func(c crm.Inquiry) string { return c.Store },
		"contact":        func(c crm.Inquiry) string { return c.Contact },
		"status":         func(c crm.Inquiry) string { return string(c.Status) },
		"intentionLevel": func(c crm.Inquiry) string { return string(c.IntentionLevel) },
		"inquiryType":    func(c crm.Inquiry) string { return string(c.InquiryType) },
	}
	switch s.Key {
	case "followUpCount":
		shared.SortStable(items, func(c crm.Inquiry) (int, bool) { return c.FollowUpCount, true }, s.Direction)
	case "followUpDate":
		shared.SortStable(items, func(c crm.Inquiry) (string, bool) {
			if c.FollowUpDate == nil {
				return "", false
			}
			return *c.FollowUpDate, true
		}, s.Direction)
	default:
		get, ok := text[s.Key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSortKey, s.Key)
		}
		shared.SortStable(items, func(c crm.Inquiry) (string, bool) { return present(get(c)) }, s.Direction)
	}
	return nil
}

// OrderQuery filters, sorts and pages the order list
type OrderQuery struct {
	Search   string
	Status   string
	Sort     shared.SortState
	Page     int
	PageSize int
}

// ResolveClientName prefers the live inquiry name over the stored copy
func ResolveClientName(names map[string]string, o crm.Order) string {
	if name := names[o.ClientID]; name != "" {
		return name
	}
	if o.ClientName != "" {
		return o.ClientName
	}
	return UnknownClient
}

// ListOrders returns one page of orders with client names resolved
func ListOrders(d *crm.Data, q OrderQuery) (shared.Page[crm.Order], error) {
	names := d.ClientNames()
	var out []crm.Order
	for _, o := range d.Orders {
		searchName := names[o.ClientID]
		if _, ok := names[o.ClientID]; !ok {
			searchName = o.ClientName
		}
		if !shared.ContainsFold(q.Search, o.OrderNumber, searchName, o.RouteName) {
			continue
		}
		if !shared.MatchesFilter(q.Status, o.OrderStatus) {
			continue
		}
		o.ClientName = ResolveClientName(names, o)
		out = append(out, o)
	}

	sort := q.Sort
	if sort.Key == "" {
		sort = DefaultOrderSort
	}
	if err := sortOrders(out, sort); err != nil {
		return shared.Page[crm.Order]{}, err
	}
	return shared.Paginate(out, q.Page, q.PageSize), nil
}

func sortOrders(items []crm.Order, s shared.SortState) error {
	optional := func(v string) (string, bool) { return v, v != "" }
	switch s.Key {
	case "createdAt":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return present(o.CreatedAt) }, s.Direction)
	case "orderNumber":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return present(o.OrderNumber) }, s.Direction)
	case "clientName":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return present(o.ClientName) }, s.Direction)
	case "routeName":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return present(o.RouteName) }, s.Direction)
	case "orderStatus":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return present(string(o.OrderStatus)) }, s.Direction)
	case "departureDate":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return optional(o.DepartureDate) }, s.Direction)
	case "returnDate":
		shared.SortStable(items, func(o crm.Order) (string, bool) { return optional(o.ReturnDate) }, s.Direction)
	case "participantCount":
		shared.SortStable(items, func(o crm.Order) (int, bool) { return o.ParticipantCount, true }, s.Direction)
	case "storeSettlement":
		shared.SortStable(items, func(o crm.Order) (float64, bool) {
			if o.StoreSettlement == nil {
				return 0, false
			}
			return *o.StoreSettlement, true
		}, s.Direction)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSortKey, s.Key)
	}
	return nil
}

// OrderStats counts orders by lifecycle stage. Completed includes settled.
type OrderStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Settled    int `json:"settled"`
	Cancelled  int `json:"cancelled"`
}

// ComputeOrderStats counts the orders
func ComputeOrderStats(orders []crm.Order) OrderStats {
	s := OrderStats{Total: len(orders)}
	for _, o := range orders {
		switch o.OrderStatus {
		case crm.OrderPendingDeparture:
			s.Pending++
		case crm.OrderInProgress:
			s.InProgress++
		case crm.OrderCompleted:
			s.Completed++
		case crm.OrderSettled:
			s.Completed++
			s.Settled++
		case crm.OrderCancelled:
			s.Cancelled++
		}
	}
	return s
}

// InquiryDetail is an inquiry with its history, orders and failure reason
type InquiryDetail struct {
	Inquiry       crm.Inquiry          `json:"inquiry"`
	History       []crm.FollowUpRecord `json:"history"`
	Orders        []crm.Order          `json:"orders"`
	FailureReason *crm.FailureReason   `json:"failureReason,omitempty"`
}

// DescribeInquiry gathers everything linked to one inquiry. History is
// returned newest first by date.
func DescribeInquiry(d *crm.Data, id string) (InquiryDetail, error) {
	inq, ok := d.FindInquiry(id)
	if !ok {
		return InquiryDetail{}, crm.ErrInquiryNotFound
	}
	history := d.FollowUpsFor(id)
	if history == nil {
		history = []crm.FollowUpRecord{}
	}
	shared.SortStable(history, func(r crm.FollowUpRecord) (string, bool) { return present(r.Date) }, shared.SortDescending)

	orders := []crm.Order{}
	for _, o := range d.Orders {
		if o.ClientID == id {
			orders = append(orders, o)
		}
	}
	detail := InquiryDetail{Inquiry: inq, History: history, Orders: orders}
	if fr, ok := d.FailureReasons[id]; ok {
		detail.FailureReason = &fr
	}
	return detail, nil
}

// CustomerInquiries lists inquiries linked to a customer
func CustomerInquiries(d *crm.Data, customerID string) []crm.Inquiry {
	out := slices.DeleteFunc(slices.Clone(d.Clients), func(c crm.Inquiry) bool { return c.CustomerID != customerID })
	if out == nil {
		return []crm.Inquiry{}
	}
	return out
}
