package settings

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	assert.Equal(t, LocaleChinese, p.Locale)
	assert.False(t, p.DarkMode)
	assert.Equal(t, CurrencyUSD, p.Currency)
	assert.Equal(t, DateISO, p.DateFormat)
	assert.False(t, p.CompactMode)
	assert.True(t, p.ShowNotificationBadge)
	assert.Equal(t, BadgeUnread, p.NotificationBadgeType)
	assert.False(t, p.PlayNotificationSound)
	assert.False(t, p.ShowNotificationBanner)
}

func TestPreferences_SetAndValuesRoundTrip(t *testing.T) {
	p := Defaults()
	require.NoError(t, p.Set(KeyLocale, "en"))
	require.NoError(t, p.Set(KeyDarkMode, "true"))
	require.NoError(t, p.Set(KeyCurrency, "CNY"))
	require.NoError(t, p.Set(KeyDateFormat, "DD/MM/YYYY"))
	require.NoError(t, p.Set(KeyNotificationBadgeType, "total"))
	require.NoError(t, p.Set(KeyShowNotificationBanner, "true"))

	restored := Defaults()
	for k, v := range p.Values() {
		require.NoError(t, restored.Set(k, v))
	}
	assert.Equal(t, p, restored)
	assert.Len(t, p.Values(), len(Keys))
}

func TestPreferences_SetRejectsInvalid(t *testing.T) {
	tests := []struct{ key, value string }{
		{KeyLocale, "fr"},
		{KeyCurrency, "EUR"},
		{KeyDateFormat, "YYYY/MM/DD"},
		{KeyNotificationBadgeType, "none"},
		{KeyDarkMode, "maybe"},
		{"volume", "11"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p := Defaults()
			err := p.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPreference))
			assert.Equal(t, Defaults(), p)
		})
	}
}

func TestFormatDate(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name   string
		value  string
		format DateFormat
		locale Locale
		want   string
	}{
		{name: "empty", value: "", format: DateISO, want: "-"},
		{name: "invalid", value: "not a date", format: DateISO, want: "-"},
		{name: "iso", value: "2024-03-05", format: DateISO, want: "2024-03-05"},
		{name: "us", value: "2024-03-05", format: DateUS, want: "03/05/2024"},
		{name: "eu", value: "2024-03-05T10:00:00.000Z", format: DateEU, want: "05/03/2024"},
		{name: "chinese", value: "2024-03-05", format: DateChinese, want: "2024年3月5日"},
		{name: "zh locale fallback", value: "2024-11-25", locale: LocaleChinese, want: "2024年11月25日"},
		{name: "en locale fallback", value: "2024-11-25", locale: LocaleEnglish, want: "2024-11-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.value, tt.format, tt.locale, loc))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	assert.Equal(t, "-", FormatCurrency(nil, CurrencyUSD, LocaleEnglish))
	assert.Equal(t, "$12,000", FormatCurrency(amount(12000), CurrencyUSD, LocaleEnglish))
	assert.Equal(t, "¥12,000", FormatCurrency(amount(12000), CurrencyCNY, LocaleChinese))
	assert.Equal(t, "US$500", FormatCurrency(amount(500), CurrencyUSD, LocaleChinese))
	assert.Equal(t, "-$1,500", FormatCurrency(amount(-1500), "", LocaleEnglish))
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, "Mar", MonthShort(time.March, LocaleEnglish))
	assert.Equal(t, "3月", MonthShort(time.March, LocaleChinese))

	ts := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 24", MonthYearShort(ts, LocaleEnglish))
	assert.Equal(t, "24年12月", MonthYearShort(ts, LocaleChinese))
}
