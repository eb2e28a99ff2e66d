// Package feed turns tracked birthdays into an iCalendar feed and
// imports them back out of vCard contact exports.
package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/recurrence"
	"github.com/sakif/giftwish/internal/repository"
)

const prodID = "-//giftwish//birthday feed//EN"

// stubCalendar is served when the user tracks no birthdays. Some
// calendar clients flag an empty byte stream as an invalid feed, so we
// always return a well-formed VCALENDAR.
const stubCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"

// Service generates calendar feeds and imports contacts.
type Service struct {
	birthdays repository.BirthdayRepository
	logger    *slog.Logger
}

func NewService(birthdays repository.BirthdayRepository, logger *slog.Logger) *Service {
	return &Service{birthdays: birthdays, logger: logger}
}

// Calendar renders the user's tracked birthdays as an iCalendar feed.
//
// Events are emitted for the previous, current, and next year so a
// client scrolling its calendar in either direction sees entries without
// an immediate re-sync. Years before the person's birth are skipped.
func (s *Service) Calendar(ctx context.Context, userID string) ([]byte, error) {
	birthdays, err := s.birthdays.ListBirthdaysByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feed: listing birthdays: %w", err)
	}

	now := time.Now()
	loc := now.Location()
	years := []int{now.Year() - 1, now.Year(), now.Year() + 1}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, b := range birthdays {
		uidBase := eventUID(b)
		for _, y := range years {
			if y < b.BirthDate.Year() {
				continue
			}

			event := ical.NewEvent()
			event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@giftwish", uidBase, y))

			age := y - b.BirthDate.Year()
			summary := fmt.Sprintf("%s's birthday", b.PersonName)
			if age > 0 {
				summary = fmt.Sprintf("%s's birthday (%d)", b.PersonName, age)
			}
			event.Props.SetText(ical.PropSummary, summary)

			start := ical.NewProp(ical.PropDateTimeStart)
			start.SetDate(recurrence.OccurrenceInYear(b.BirthDate, y, loc))
			event.Props.Set(start)
			event.Props.Set(stamp)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(stubCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("feed: encoding calendar: %w", err)
	}

	s.logger.Debug("calendar feed generated",
		slog.String("userID", userID),
		slog.Int("birthdays", len(birthdays)),
	)
	return buf.Bytes(), nil
}

// eventUID derives a stable UID from the record so clients keep event
// identity across refreshes.
func eventUID(b model.Birthday) string {
	hash := sha256.Sum256([]byte(b.ID + "|" + b.BirthDate.Format("2006-01-02")))
	return fmt.Sprintf("%x", hash[:8])
}
