package model

import "time"

// Birthday is one tracked person: a name, a birth date, and the user who
// tracks them. The birth date's year is informational (used for age
// display); only the month and day drive the yearly recurrence.
//
// BirthDate carries calendar-day semantics — the time-of-day portion is
// always midnight and must never be compared against wall-clock instants.
type Birthday struct {
	ID           string    `json:"id"           db:"id"`
	OwnerID      string    `json:"ownerId"      db:"owner_id"`
	PersonName   string    `json:"personName"   db:"person_name"`
	BirthDate    time.Time `json:"birthDate"    db:"birth_date"`
	Relationship string    `json:"relationship" db:"relationship"`
	Notes        string    `json:"notes"        db:"notes"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
