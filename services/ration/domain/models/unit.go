package models

import (
	"time"

	"github.com/google/uuid"
)

const overrideDateLayout = "2006-01-02"

// Unit is the registry read model for one receiving unit. Personnel is the
// nominal headcount; PersonnelByDate holds per-day overrides keyed by
// YYYY-MM-DD (units on exercise, leave rotations, etc.).
type Unit struct {
	ID              uuid.UUID
	Code            string // stable ordering key for allocation tie-breaks
	Name            string
	Personnel       int
	PersonnelByDate map[string]int
}

// PersonnelOn returns the unit's headcount effective on the given date,
// preferring a per-day override over the nominal value.
func (u *Unit) PersonnelOn(date time.Time) int {
	if u.PersonnelByDate != nil {
		if n, ok := u.PersonnelByDate[date.Format(overrideDateLayout)]; ok {
			return n
		}
	}
	return u.Personnel
}
