package crm

import (
	"strings"

	"github.com/circlesoft/crm/internal/domain/crm"
)

// MinSearchLength is the shortest query the global search runs
const MinSearchLength = 2

// SearchResultType is the kind of a global search hit
type SearchResultType string

const (
	ResultClient SearchResultType = "client"
	ResultOrder  SearchResultType = "order"
)

// SearchResult is one global search hit
type SearchResult struct {
	Type     SearchResultType `json:"type"`
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
}

// Search matches inquiries by name, store or contact and orders by number,
// route or client name. Inquiry hits come first.
func Search(d *crm.Data, query string) []SearchResult {
	results := []SearchResult{}
	if len([]rune(query)) < MinSearchLength {
		return results
	}
	q := strings.ToLower(query)
	has := func(field string) bool { return strings.Contains(strings.ToLower(field), q) }

	for _, c := range d.Clients {
		if has(c.Name) || has(c.Store) || has(c.Contact) {
			results = append(results, SearchResult{Type: ResultClient, ID: c.ID, Title: c.Name, Subtitle: c.Store})
		}
	}
	for _, o := range d.Orders {
		if has(o.OrderNumber) || has(o.RouteName) || (o.ClientName != "" && has(o.ClientName)) {
			results = append(results, SearchResult{
				Type:     ResultOrder,
				ID:       o.ID,
				Title:    o.OrderNumber,
				Subtitle: o.ClientName + " - " + o.RouteName,
			})
		}
	}
	return results
}
