package services

import "time"

// WeekBounds returns the Monday and Sunday of an ISO week, in UTC.
func WeekBounds(week, year int) (time.Time, time.Time) {
	// Jan 4 is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -sinceMonday+(week-1)*7)
	return monday, monday.AddDate(0, 0, 6)
}
