package monitor

import "time"

// InSeason reports whether monitoring may run at the given time. The Mumbai
// monsoon window runs July through January, wrapping the year boundary.
func InSeason(t time.Time) bool {
	m := t.Month()
	return m >= time.July || m == time.January
}
