package domain

import "time"

// TargetType distinguishes count-based habits from time-based ones.
type TargetType string

const (
	TargetTypeCount TargetType = "count"
	TargetTypeTime  TargetType = "time"
)

// Valid reports whether the target type is one of the known values.
func (t TargetType) Valid() bool {
	return t == TargetTypeCount || t == TargetTypeTime
}

// Categories lists the habit categories accepted on creation. Extending the
// catalogue means adding an entry here.
var Categories = map[string]struct{}{
	"Health":   {},
	"Study":    {},
	"Work":     {},
	"Personal": {},
}

// Habit is a user-defined recurring activity tracked daily against a target.
type Habit struct {
	ID          string
	OwnerID     string
	Name        string
	Category    string
	TargetType  TargetType
	TargetValue int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
