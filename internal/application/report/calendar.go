package report

import (
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// EventType is the kind of calendar entry
type EventType string

const (
	EventFollowUp  EventType = "followup"
	EventDeparture EventType = "departure"
	EventReturn    EventType = "return"
)

// NoName stands in for orders without a client name
const NoName = "N/A"

// CalendarEvent is one dated entry on the calendar
type CalendarEvent struct {
	Type       EventType      `json:"type"`
	Date       string         `json:"date"`
	Name       string         `json:"name"`
	TargetType crm.TargetType `json:"targetType"`
	TargetID   string         `json:"targetId"`
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date           string          `json:"date"`
	IsCurrentMonth bool            `json:"isCurrentMonth"`
	Events         []CalendarEvent `json:"events"`
}

// CalendarEvents collects follow-ups due on open inquiries, departures of
// confirmed orders and every order return.
func CalendarEvents(d *crm.Data, loc *time.Location) []CalendarEvent {
	events := []CalendarEvent{}
	add := func(typ EventType, value, name string, target crm.TargetType, id string) {
		t, ok := shared.ParseTime(value, loc)
		if !ok {
			return
		}
		events = append(events, CalendarEvent{Type: typ, Date: shared.FormatDate(t), Name: name, TargetType: target, TargetID: id})
	}

	for _, c := range d.Clients {
		if c.Status.IsOpen() && c.FollowUpDate != nil {
			add(EventFollowUp, *c.FollowUpDate, c.Name, crm.TargetClient, c.ID)
		}
	}
	for _, o := range d.Orders {
		name := o.ClientName
		if name == "" {
			name = NoName
		}
		if !o.DeparturePending && o.DepartureDate != "" {
			add(EventDeparture, o.DepartureDate, name, crm.TargetOrder, o.ID)
		}
		if o.ReturnDate != "" {
			add(EventReturn, o.ReturnDate, name, crm.TargetOrder, o.ID)
		}
	}
	return events
}

// EventsOn returns the events dated on day
func EventsOn(events []CalendarEvent, day time.Time) []CalendarEvent {
	date := shared.FormatDate(day)
	out := []CalendarEvent{}
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// MonthGrid lays out month as whole weeks, from the Sunday on or before the
// first day to the Saturday on or after the last.
func MonthGrid(events []CalendarEvent, month time.Time) []CalendarDay {
	first := shared.StartOfMonth(month, 0)
	last := shared.StartOfMonth(month, 1).AddDate(0, 0, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	byDate := make(map[string][]CalendarEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	var days []CalendarDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := shared.FormatDate(day)
		dayEvents := byDate[date]
		if dayEvents == nil {
			dayEvents = []CalendarEvent{}
		}
		days = append(days, CalendarDay{
			Date:           date,
			IsCurrentMonth: day.Month() == first.Month(),
			Events:         dayEvents,
		})
	}
	return days
}
