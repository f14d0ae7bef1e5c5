package settings

import (
	"fmt"
	"math"
	"time"

	"github.com/circlesoft/crm/internal/domain/shared"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tag returns the language tag for a locale
func (l Locale) Tag() language.Tag {
	if l == LocaleEnglish {
		return language.AmericanEnglish
	}
	return language.SimplifiedChinese
}

// FormatDate renders a stored date or timestamp. Empty or unparseable input
// renders as "-". An empty format falls back to the locale default.
func FormatDate(value string, format DateFormat, locale Locale, loc *time.Location) string {
	t, ok := shared.ParseTime(value, loc)
	if !ok {
		return "-"
	}
	if format == "" {
		format = DateISO
		if locale == LocaleChinese {
			format = DateChinese
		}
	}

	switch format {
	case DateChinese:
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	case DateUS:
		return t.Format("01/02/2006")
	case DateEU:
		return t.Format("02/01/2006")
	default:
		return t.Format(shared.DateLayout)
	}
}

// currencySymbols follows CLDR narrow/standard symbol choice per locale
var currencySymbols = map[Locale]map[Currency]string{
	LocaleEnglish: {CurrencyUSD: "$", CurrencyCNY: "CN¥"},
	LocaleChinese: {CurrencyUSD: "US$", CurrencyCNY: "¥"},
}

// FormatCurrency renders a whole-unit amount with grouping. Nil renders as "-".
func FormatCurrency(amount *float64, cur Currency, locale Locale) string {
	if amount == nil {
		return "-"
	}
	if cur == "" {
		cur = CurrencyUSD
	}
	symbol, ok := currencySymbols[locale][cur]
	if !ok {
		if unit, err := currency.ParseISO(string(cur)); err == nil {
			symbol = unit.String()
		} else {
			symbol = string(cur)
		}
	}

	v := math.Round(*amount)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	p := message.NewPrinter(locale.Tag())
	return sign + symbol + p.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

var zhMonths = [...]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"}

// MonthShort returns the abbreviated month name ("Jan" or "1月")
func MonthShort(m time.Month, locale Locale) string {
	if locale == LocaleChinese {
		return zhMonths[m-1]
	}
	return m.String()[:3]
}

// MonthYearShort returns the abbreviated month with a two-digit year
// ("Jan 24" or "24年1月").
func MonthYearShort(t time.Time, locale Locale) string {
	if locale == LocaleChinese {
		return fmt.Sprintf("%02d年%s", t.Year()%100, zhMonths[t.Month()-1])
	}
	return fmt.Sprintf("%s %02d", t.Month().String()[:3], t.Year()%100)
}
