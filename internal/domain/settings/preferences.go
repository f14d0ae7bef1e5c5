// Package settings holds per-user display preferences and the formatting
// rules that depend on them.
package settings

import (
	"context"
	"fmt"
	"strconv"
)

// Locale is a UI language
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleChinese Locale = "zh"
)

// Currency is the display currency
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

// DateFormat is the display date pattern
type DateFormat string

const (
	DateISO     DateFormat = "YYYY-MM-DD"
	DateUS      DateFormat = "MM/DD/YYYY"
	DateEU      DateFormat = "DD/MM/YYYY"
	DateChinese DateFormat = "zh-CN"
)

// BadgeType selects what the notification badge counts
type BadgeType string

const (
	BadgeUnread BadgeType = "unread"
	BadgeTotal  BadgeType = "total"
)

// Preference keys, one stored value each
const (
	KeyLocale                 = "locale"
	KeyDarkMode               = "darkMode"
	KeyCurrency               = "currency"
	KeyDateFormat             = "dateFormat"
	KeyCompactMode            = "compactMode"
	KeyShowNotificationBadge  = "showNotificationBadge"
	KeyNotificationBadgeType  = "notificationBadgeType"
	KeyPlayNotificationSound  = "playNotificationSound"
	KeyShowNotificationBanner = "showNotificationBanner"
)

// Keys lists every preference key
var Keys = []string{
	KeyLocale, KeyDarkMode, KeyCurrency, KeyDateFormat, KeyCompactMode,
	KeyShowNotificationBadge, KeyNotificationBadgeType, KeyPlayNotificationSound, KeyShowNotificationBanner,
}

// Preferences is the typed set of a user's settings
type Preferences struct {
	Locale                 Locale     `json:"locale"`
	DarkMode               bool       `json:"darkMode"`
	Currency               Currency   `json:"currency"`
	DateFormat             DateFormat `json:"dateFormat"`
	CompactMode            bool       `json:"compactMode"`
	ShowNotificationBadge  bool       `json:"showNotificationBadge"`
	NotificationBadgeType  BadgeType  `json:"notificationBadgeType"`
	PlayNotificationSound  bool       `json:"playNotificationSound"`
	ShowNotificationBanner bool       `json:"showNotificationBanner"`
}

// Defaults returns first-run preferences
func Defaults() Preferences {
	return Preferences{
		Locale:                LocaleChinese,
		Currency:              CurrencyUSD,
		DateFormat:            DateISO,
		ShowNotificationBadge: true,
		NotificationBadgeType: BadgeUnread,
	}
}

// Set assigns one preference from its stored string form
func (p *Preferences) Set(key, value string) error {
	switch key {
	case KeyLocale:
		switch Locale(value) {
		case LocaleEnglish, LocaleChinese:
			p.Locale = Locale(value)
		default:
			return invalid(key, value)
		}
	case KeyCurrency:
		switch Currency(value) {
		case CurrencyUSD, CurrencyCNY:
			p.Currency = Currency(value)
		default:
			return invalid(key, value)
		}
	case KeyDateFormat:
		switch DateFormat(value) {
		case DateISO, DateUS, DateEU, DateChinese:
			p.DateFormat = DateFormat(value)
		default:
			return invalid(key, value)
		}
	case KeyNotificationBadgeType:
		switch BadgeType(value) {
		case BadgeUnread, BadgeTotal:
			p.NotificationBadgeType = BadgeType(value)
		default:
			return invalid(key, value)
		}
	case KeyDarkMode, KeyCompactMode, KeyShowNotificationBadge, KeyPlayNotificationSound, KeyShowNotificationBanner:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalid(key, value)
		}
		*p.boolField(key) = b
	default:
		return fmt.Errorf("%w: unknown preference %q", ErrInvalidPreference, key)
	}
	return nil
}

// Values returns every preference in its stored string form
func (p Preferences) Values() map[string]string {
	return map[string]string{
		KeyLocale:                 string(p.Locale),
		KeyDarkMode:               strconv.FormatBool(p.DarkMode),
		KeyCurrency:               string(p.Currency),
		KeyDateFormat:             string(p.DateFormat),
		KeyCompactMode:            strconv.FormatBool(p.CompactMode),
		KeyShowNotificationBadge:  strconv.FormatBool(p.ShowNotificationBadge),
		KeyNotificationBadgeType:  string(p.NotificationBadgeType),
		KeyPlayNotificationSound:  strconv.FormatBool(p.PlayNotificationSound),
		KeyShowNotificationBanner: strconv.FormatBool(p.ShowNotificationBanner),
	}
}

func (p *Preferences) boolField(key string) *bool {
	switch key {
	case KeyDarkMode:
		return &p.DarkMode
	case KeyCompactMode:
		return &p.CompactMode
	case KeyShowNotificationBadge:
		return &p.ShowNotificationBadge
	case KeyPlayNotificationSound:
		return &p.PlayNotificationSound
	default:
		return &p.ShowNotificationBanner
	}
}

func invalid(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidPreference, key, value)
}

// Repository stores preferences as independent per-user keys
type Repository interface {
	// Load returns the stored raw values; absent keys are omitted
	Load(ctx context.Context, userID string) (map[string]string, error)
	Save(ctx context.Context, userID string, values map[string]string) error
}
