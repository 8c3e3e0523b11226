// Package events defines the payloads published for downstream collaborators.
package events

import "time"

// HabitCreated is emitted when a new habit definition is accepted.
type HabitCreated struct {
	HabitID     string    `json:"habit_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	TargetType  string    `json:"target_type"`
	TargetValue int       `json:"target_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// HabitLogged is emitted every time a day's completion record is upserted.
// Downstream consumers see the record's final state, not a delta.
type HabitLogged struct {
	HabitID    string    `json:"habit_id"`
	OwnerID    string    `json:"owner_id"`
	Date       string    `json:"date"`
	Completed  bool      `json:"completed"`
	Progress   int       `json:"progress"`
	OccurredAt time.Time `json:"occurred_at"`
}
