// Package notification turns newly received notifications into transient
// banners and an optional sound, and provides the notification center views.
package notification

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/settings"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Delivery defaults
const (
	DefaultToastTimeout = 4 * time.Second
	DefaultToastLimit   = 3
	soundInterval       = time.Second
)

// Player makes the notification sound
type Player interface {
	Play() error
}

// BellPlayer rings the terminal bell
type BellPlayer struct {
	W io.Writer
}

// Play writes BEL to the terminal
func (p BellPlayer) Play() error {
	_, err := p.W.Write([]byte{'\a'})
	return err
}

// PreferenceSource supplies the per-user display preferences
type PreferenceSource interface {
	Preferences(ctx context.Context, userID string) (settings.Preferences, error)
}

// Options tunes a Delivery
type Options struct {
	Timeout time.Duration
	Limit   int
	Player  Player
	Logger  *zap.Logger
	// AfterFunc schedules auto-dismissal; time.AfterFunc when nil
	AfterFunc func(d time.Duration, f func()) (stop func() bool)
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultToastTimeout
	}
	if o.Limit <= 0 {
		o.Limit = DefaultToastLimit
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.AfterFunc == nil {
		o.AfterFunc = func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		}
	}
	return o
}

// Delivery is one user's banner queue. Banners are ordered by arrival with
// the latest delivery in front, at most Limit are visible and each one dismisses itself after Timeout.
// Dismissing a banner never touches the notification's read flag.
type Delivery struct {
	userID string
	prefs  PreferenceSource
	opts   Options
	sound  *rate.Sometimes

	mu     sync.Mutex
	toasts []crm.Notification
	timers map[string]func() bool
}

// NewDelivery creates a delivery for one user
func NewDelivery(userID string, prefs PreferenceSource, opts Options) *Delivery {
	return &Delivery{
		userID: userID,
		prefs:  prefs,
		opts:   opts.withDefaults(),
		sound:  &rate.Sometimes{Interval: soundInterval},
		timers: make(map[string]func() bool),
	}
}

// Observe returns the notifications of next whose id is not in prev, in
// next's order.
func Observe(prev, next []crm.Notification) []crm.Notification {
	seen := make(map[string]struct{}, len(prev))
	for _, n := range prev {
		seen[n.ID] = struct{}{}
	}
	out := []crm.Notification{}
	for _, n := range next {
		if _, ok := seen[n.ID]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Deliver plays the sound once and puts banners for the first Limit items in
// front of the queue, in the order given, each according to the user's
// preferences. The oldest banners past Limit are evicted.
func (d *Delivery) Deliver(ctx context.Context, items []crm.Notification) {
	if len(items) == 0 {
		return
	}
	prefs := settings.Defaults()
	if d.prefs != nil {
		p, err := d.prefs.Preferences(ctx, d.userID)
		if err != nil {
			d.opts.Logger.Warn("using default notification preferences", zap.String("user_id", d.userID), zap.Error(err))
		} else {
			prefs = p
		}
	}

	if prefs.PlayNotificationSound && d.opts.Player != nil {
		d.sound.Do(func() {
			if err := d.opts.Player.Play(); err != nil {
				d.opts.Logger.Debug("notification sound failed", zap.Error(err))
			}
		})
	}
	if !prefs.ShowNotificationBanner {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	batch := items[:min(len(items), d.opts.Limit)]
	for _, n := range batch {
		d.removeLocked(n.ID)
	}
	d.toasts = slices.Concat(batch, d.toasts)
	for _, n := range batch {
		id := n.ID
		d.timers[id] = d.opts.AfterFunc(d.opts.Timeout, func() { d.Dismiss(id) })
	}
	for len(d.toasts) > d.opts.Limit {
		d.removeLocked(d.toasts[len(d.toasts)-1].ID)
	}
}

// Dismiss removes a banner. It reports whether the banner was visible.
func (d *Delivery) Dismiss(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removeLocked(id)
}

func (d *Delivery) removeLocked(id string) bool {
	i := slices.IndexFunc(d.toasts, func(n crm.Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	d.toasts = slices.Delete(d.toasts, i, i+1)
	if stop, ok := d.timers[id]; ok {
		stop()
		delete(d.timers, id)
	}
	return true
}

// Toasts returns the visible banners, latest arrival first
func (d *Delivery) Toasts() []crm.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.toasts)
}

// Close stops pending timers and clears the queue
func (d *Delivery) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, stop := range d.timers {
		stop()
		delete(d.timers, id)
	}
	d.toasts = nil
}
