package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/sakif/giftwish/internal/model"
)

// placeholderYear stands in when a vCard carries a year-less BDAY
// (--03-10). It's a leap year so Feb 29 dates survive the round trip.
const placeholderYear = 2000

// ImportResult summarizes a vCard import: how many cards became
// birthdays and how many were skipped (no BDAY, or unparseable).
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportVCards reads a .vcf stream and creates a Birthday for every card
// with a usable BDAY. Bad cards are skipped and logged, never fatal —
// contact exports from real phones are full of junk.
func (s *Service) ImportVCards(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	decoder := vcard.NewDecoder(r)
	result := &ImportResult{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping malformed vCard", slog.String("error", err.Error()))
			result.Skipped++
			continue
		}

		bday := card.Get(vcard.FieldBirthday)
		if bday == nil || bday.Value == "" {
			result.Skipped++
			continue
		}
		birthDate, err := parseVCardDate(bday.Value)
		if err != nil {
			s.logger.Warn("skipping vCard with unparseable BDAY",
				slog.String("value", bday.Value),
			)
			result.Skipped++
			continue
		}

		name := "Unknown"
		if fn := card.Get(vcard.FieldFormattedName); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(vcard.FieldName); n != nil && n.Value != "" {
			name = n.Value
		}

		birthday := &model.Birthday{
			OwnerID:    ownerID,
			PersonName: name,
			BirthDate:  birthDate,
		}
		if err := s.birthdays.CreateBirthday(ctx, birthday); err != nil {
			return nil, fmt.Errorf("feed: importing birthday for %q: %w", name, err)
		}
		result.Imported++
	}

	s.logger.Info("vCard import finished",
		slog.String("ownerID", ownerID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// parseVCardDate handles the BDAY formats seen in the wild: full dates
// with or without dashes, RFC 3339 timestamps, and the year-less vCard 4
// forms.
func parseVCardDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "20060102", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	for _, layout := range []string{"--01-02", "--0102"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(placeholderYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("feed: unrecognized BDAY format %q", value)
}
