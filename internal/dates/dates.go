/*
Package dates expands relative-date placeholders in query descriptions into
concrete calendar dates.
*/
package dates

import (
	"strings"
	"time"
)

// Layout is the human-readable date format used in expanded descriptions.
const Layout = "Jan 02, 2006"

// Expand substitutes the recognized date placeholders in description using
// now as the reference time. Substitution is a single literal pass: unknown
// placeholders are left untouched and substituted text is never rescanned,
// so running Expand on already-expanded text is a no-op.
func Expand(description string, now time.Time) string {
	today := now.Format(Layout)
	yesterday := now.AddDate(0, 0, -1).Format(Layout)
	lastWeek := "from " + now.AddDate(0, 0, -8).Format(Layout) + " to " + today
	lastMonth := "from " + now.AddDate(0, 0, -32).Format(Layout) + " to " + today

	r := strings.NewReplacer(
		"{today}", today,
		"{yesterday}", yesterday,
		"{from_last_week}", lastWeek,
		"{from_last_month}", lastMonth,
	)
	return r.Replace(description)
}
