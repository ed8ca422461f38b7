// Package format turns numbers, names and dates into the text shown on pages
// and in exports. The functions are registered as template funcs.
package format

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var locale = language.BritishEnglish

// Date styles accepted by Date.
const (
	DateShort = "short" // 02/01/2006
	DateLong  = "long"  // 2 January 2006
	DateFull  = "full"  // Monday 2 January 2006
)

// Number formats n with thousands separators.
func Number(n int) string {
	return message.NewPrinter(locale).Sprintf("%d", n)
}

// Percentage returns n as a whole percentage of total, or "0%" when total is 0.
func Percentage(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return message.NewPrinter(locale).Sprintf("%d%%", int(math.Round(float64(n)*100/float64(total))))
}

// Pluralise returns "1 review", "2 reviews" and so on.
func Pluralise(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return Number(n) + " " + plural
}

// titleCase converts NOMIS upper-case names to title case, keeping hyphenated
// parts capitalised.
func titleCase(s string) string {
	return cases.Title(locale).String(strings.ToLower(strings.TrimSpace(s)))
}

// Name returns "First Last".
func Name(first, last string) string {
	return strings.TrimSpace(titleCase(first) + " " + titleCase(last))
}

// ReversedName returns "Last, First".
func ReversedName(first, last string) string {
	first, last = titleCase(first), titleCase(last)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return last + ", " + first
}

// Possessive returns "Smith's", or "Jones'" for names ending in s.
func Possessive(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(name), "s") {
		return name + "'"
	}
	return name + "'s"
}

// Date formats t in one of the date styles. The zero time formats as "".
func Date(t time.Time, style string) string {
	if t.IsZero() {
		return ""
	}
	switch style {
	case DateLong:
		return t.Format("2 January 2006")
	case DateFull:
		return t.Format("Monday 2 January 2006")
	default:
		return t.Format("02/01/2006")
	}
}

// DaysSince returns the number of whole calendar days from t to now. It is
// negative when t is in the future.
func DaysSince(t, now time.Time) int {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// YesNo formats a flag for tables and exports.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
