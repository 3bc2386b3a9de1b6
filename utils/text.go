// utils/text.go
package utils

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date stamp used in snapshot and artifact filenames.
const DateLayout = "2006-01-02"

// DateStamp formats t as YYYY-MM-DD in t's own location.
func DateStamp(t time.Time) string {
	return t.Format(DateLayout)
}

// StripCurrency removes the dollar marker and surrounding whitespace from a rate cell ("$3.50" -> "3.50").
func StripCurrency(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
}

// SplitCategoryLabel splits a vehicle category label on its first "(" into the
// category name and the applicability qualifier, e.g. "Cars (Weekdays)" -> ("Cars", "Weekdays").
// Labels without a qualifier return an empty applicability.
func SplitCategoryLabel(label string) (name, applicability string) {
	before, after, found := strings.Cut(label, "(")
	if !found {
		return strings.TrimSpace(label), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(strings.ReplaceAll(after, ")", ""))
}

// Round7 rounds f to 7 decimal places.
func Round7(f float64) float64 {
	return math.Round(f*1e7) / 1e7
}
