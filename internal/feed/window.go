package feed

import "time"

// Lookback window tokens accepted by the feed. Any other value resolves the
// same as WindowRecent.
const (
	WindowToday     = "today"
	WindowYesterday = "yesterday"
	WindowWeek      = "week"
	WindowMonth     = "month"
	WindowRecent    = "recent"
)

// DefaultWindow is used when the caller does not specify a lookback window.
const DefaultWindow = WindowRecent

const day = 24 * time.Hour

// WindowStart resolves a lookback window token into the absolute start time
// of the query, relative to now. "today" is the start of the current local
// day; "month" goes back one calendar month; "recent" and anything
// unrecognized go back one day.
func WindowStart(now time.Time, window string) time.Time {
	switch window {
	case WindowToday:
		year, month, dayOfMonth := now.Date()
		return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, now.Location())
	case WindowYesterday:
		return now.Add(-1 * day)
	case "2 days ago":
		return now.Add(-2 * day)
	case "3 days ago":
		return now.Add(-3 * day)
	case "4 days ago":
		return now.Add(-4 * day)
	case "5 days ago":
		return now.Add(-5 * day)
	case "6 days ago":
		return now.Add(-6 * day)
	case WindowWeek:
		return now.Add(-7 * day)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.Add(-1 * day)
	}
}
