package domain

import "time"

// DailyLog is one habit's completion record for a single calendar day. Date
// always holds a UTC day at midnight; at most one record exists per
// (HabitID, Date) pair. An absent record means "not logged", which is distinct
// from a record with Completed=false.
type DailyLog struct {
	HabitID   string
	OwnerID   string
	Date      time.Time
	Completed bool
	Progress  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cursor models the pagination token for history pages. Dates are unique
// within one habit's history, so the day alone identifies the page boundary.
type Cursor struct {
	Date time.Time
}
