package notification

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// DropdownLimit caps the header dropdown
const DropdownLimit = 10

func dateKey(n crm.Notification) (int64, bool) {
	t, ok := shared.ParseTime(n.Date, time.UTC)
	return t.UnixMilli(), ok
}

// Sorted orders pinned notifications first, each group newest first
func Sorted(list []crm.Notification) []crm.Notification {
	out := slices.Clone(list)
	shared.SortStable(out, dateKey, shared.SortDescending)
	slices.SortStableFunc(out, func(a, b crm.Notification) int {
		switch {
		case a.IsPinned == b.IsPinned:
			return 0
		case a.IsPinned:
			return -1
		default:
			return 1
		}
	})
	return out
}

// Dropdown returns every pinned notification followed by the newest
// unpinned ones, up to DropdownLimit in total. When more than
// DropdownLimit are pinned, all pinned ones are returned.
func Dropdown(list []crm.Notification) []crm.Notification {
	sorted := Sorted(list)
	pinned := 0
	for _, n := range sorted {
		if n.IsPinned {
			pinned++
		}
	}
	return sorted[:max(pinned, min(len(sorted), DropdownLimit))]
}

// Badge returns the badge count and whether it should be shown
func Badge(list []crm.Notification, prefs settings.Preferences) (int, bool) {
	count := len(list)
	if prefs.NotificationBadgeType != settings.BadgeTotal {
		count = 0
		for _, n := range list {
			if !n.Read {
				count++
			}
		}
	}
	return count, prefs.ShowNotificationBadge && count > 0
}

// Filter narrows the notification center list. Query is matched against the
// message key and params.
type Filter struct {
	UnreadOnly  bool
	StarredOnly bool
	Query       string
}

// Apply returns the sorted notifications that pass the filter
func (f Filter) Apply(list []crm.Notification) []crm.Notification {
	out := []crm.Notification{}
	for _, n := range Sorted(list) {
		if f.UnreadOnly && n.Read {
			continue
		}
		if f.StarredOnly && !n.IsStarred {
			continue
		}
		if q := strings.TrimSpace(f.Query); q != "" && !shared.ContainsFold(q, append([]string{n.MessageKey}, paramValues(n)...)...) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func paramValues(n crm.Notification) []string {
	var out []string
	for _, v := range n.MessageParams {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DueFollowUps counts open inquiries whose follow-up date is on or before
// the day of now.
func DueFollowUps(d *crm.Data, now time.Time) int {
	end := shared.StartOfDay(now).AddDate(0, 0, 1)
	count := 0
	for _, c := range d.Clients {
		if !c.Status.IsOpen() || c.FollowUpDate == nil {
			continue
		}
		if t, ok := shared.ParseTime(*c.FollowUpDate, now.Location()); ok && t.Before(end) {
			count++
		}
	}
	return count
}

// Notifier is the part of the CRM manager the reminder needs
type Notifier interface {
	Snapshot() *crm.Data
	PushNotification(ctx context.Context, n crm.Notification) (crm.Notification, error)
}

// RemindFollowUps pushes a follow-up-due notification when follow-ups are
// due, at most once per day. It reports whether one was pushed.
func RemindFollowUps(ctx context.Context, m Notifier, now time.Time) (bool, error) {
	d := m.Snapshot()
	count := DueFollowUps(d, now)
	if count == 0 {
		return false, nil
	}
	today := shared.FormatDate(now)
	for _, n := range d.Notifications {
		if n.MessageKey != crm.MsgFollowUpDue {
			continue
		}
		if t, ok := shared.ParseTime(n.Date, now.Location()); ok && shared.FormatDate(t) == today {
			return false, nil
		}
	}
	_, err := m.PushNotification(ctx, crm.Notification{
		MessageKey:    crm.MsgFollowUpDue,
		MessageParams: map[string]any{"count": count},
		Date:          shared.FormatTimestamp(now),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
