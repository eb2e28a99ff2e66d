// Package recurrence computes yearly birthday occurrences.
//
// Every function here is pure: it takes a birth date and a fixed
// reference date and returns a result. Callers must capture the
// reference date ("today") ONCE per batch and pass the same value to
// every call — recomputing time.Now() mid-batch could flip results at a
// midnight boundary.
//
// All comparisons are by calendar day in the reference date's location.
// Birthdays are local-calendar events: if it is June 15th where the user
// lives, it is the birthday, regardless of what UTC says.
package recurrence

import (
	"sort"
	"time"
)

// Kind classifies how soon an occurrence is relative to the reference day.
type Kind int

const (
	// Today — the occurrence falls on the reference day itself.
	Today Kind = iota
	// Tomorrow — the occurrence falls on the day after the reference day.
	Tomorrow
	// Upcoming — any later occurrence.
	Upcoming
)

func (k Kind) String() string {
	switch k {
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	default:
		return "upcoming"
	}
}

// NextOccurrence returns the next calendar occurrence of birthDate's
// month/day on or after ref: the candidate in ref's year, or the
// following year if the candidate has already passed. A candidate equal
// to ref's calendar day IS today's occurrence and is not advanced.
//
// Feb 29 policy: in non-leap years the birthday is observed on Feb 28.
// (Go's time.Date would normalize Feb 29 to Mar 1; we pin the observed
// day explicitly so it never drifts into March.)
//
// The result is a midnight value in ref's location with no time-of-day
// meaning.
func NextOccurrence(birthDate, ref time.Time) time.Time {
	loc := ref.Location()
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	candidate := observedDate(ref.Year(), birthDate.Month(), birthDate.Day(), loc)
	if candidate.Before(refDay) {
		// Already passed this year — the next occurrence is next year.
		candidate = observedDate(ref.Year()+1, birthDate.Month(), birthDate.Day(), loc)
	}
	return candidate
}

// OccurrenceInYear returns the observed occurrence of birthDate's
// month/day in an arbitrary year. Used by the calendar feed, which emits
// events for several years at once.
func OccurrenceInYear(birthDate time.Time, year int, loc *time.Location) time.Time {
	return observedDate(year, birthDate.Month(), birthDate.Day(), loc)
}

// observedDate builds the observed occurrence of month/day in the given
// year, applying the Feb 29 → Feb 28 policy for non-leap years.
func observedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// WithinWindow reports whether next falls inside the inclusive window
// [ref, ref+windowDays], compared by calendar day.
func WithinWindow(next, ref time.Time, windowDays int) bool {
	loc := ref.Location()
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	end := refDay.AddDate(0, 0, windowDays)
	return !next.Before(refDay) && !next.After(end)
}

// Classify labels next relative to ref: Today, Tomorrow, or Upcoming.
// next must come from NextOccurrence with the same ref.
func Classify(next, ref time.Time) Kind {
	loc := ref.Location()
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	switch {
	case next.Equal(refDay):
		return Today
	case next.Equal(refDay.AddDate(0, 0, 1)):
		return Tomorrow
	default:
		return Upcoming
	}
}

// AgeTurning returns the age the person turns at the given occurrence.
// Only meaningful when the birth year is real (the UI may store a
// placeholder year when the user doesn't know it).
func AgeTurning(birthDate, next time.Time) int {
	return next.Year() - birthDate.Year()
}

// Entry is one birthday's computed occurrence, ready for an upcoming list.
type Entry struct {
	BirthdayID string
	PersonName string
	Next       time.Time
	Kind       Kind
	AgeTurning int
}

// Sort orders entries ascending by next occurrence; entries landing on
// the same calendar day are ordered by person name so output is
// deterministic.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Next.Equal(entries[j].Next) {
			return entries[i].Next.Before(entries[j].Next)
		}
		return entries[i].PersonName < entries[j].PersonName
	})
}
