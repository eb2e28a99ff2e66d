package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/recurrence"
	"github.com/sakif/giftwish/internal/repository"
)

const (
	MaxPersonNameLength = 100
	MaxNotesLength      = 2000

	// DefaultUpcomingWindow is how far ahead the upcoming list looks
	// when the caller doesn't say.
	DefaultUpcomingWindow = 30
	MaxUpcomingWindow     = 366
)

// BirthdayService manages tracked birthdays and computes their upcoming
// occurrences.
type BirthdayService struct {
	birthdays   repository.BirthdayRepository
	friendships repository.FriendshipRepository
	logger      *slog.Logger
}

func NewBirthdayService(
	birthdays repository.BirthdayRepository,
	friendships repository.FriendshipRepository,
	logger *slog.Logger,
) *BirthdayService {
	return &BirthdayService{
		birthdays:   birthdays,
		friendships: friendships,
		logger:      logger,
	}
}

func validateBirthdayInput(personName string, birthDate time.Time) error {
	if personName == "" {
		return apperror.ValidationFailed("personName", "person name is required")
	}
	if len(personName) > MaxPersonNameLength {
		return apperror.ValidationFailed("personName",
			fmt.Sprintf("person name must be %d characters or less", MaxPersonNameLength))
	}
	if birthDate.IsZero() {
		return apperror.ValidationFailed("birthDate", "birth date is required")
	}
	now := time.Now()
	if birthDate.After(now) {
		return apperror.ValidationFailed("birthDate", "birth date cannot be in the future")
	}
	return nil
}

// Create records a new birthday owned by ownerID.
func (s *BirthdayService) Create(ctx context.Context, ownerID, personName string, birthDate time.Time, relationship, notes string) (*model.Birthday, error) {
	personName = strings.TrimSpace(personName)
	if err := validateBirthdayInput(personName, birthDate); err != nil {
		return nil, err
	}
	if len(notes) > MaxNotesLength {
		return nil, apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}

	birthday := &model.Birthday{
		OwnerID:      ownerID,
		PersonName:   personName,
		BirthDate:    birthDate,
		Relationship: strings.TrimSpace(relationship),
		Notes:        notes,
	}
	if err := s.birthdays.CreateBirthday(ctx, birthday); err != nil {
		s.logger.Error("failed to create birthday",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/birthday: creating: %w", err)
	}

	s.logger.Info("birthday created",
		slog.String("id", birthday.ID),
		slog.String("ownerID", ownerID),
	)
	return birthday, nil
}

// Get retrieves a birthday the viewer is allowed to see: their own, or a
// friend's (accepted friendship with the owner).
func (s *BirthdayService) Get(ctx context.Context, viewerID, id string) (*model.Birthday, error) {
	birthday, err := s.birthdays.GetBirthdayByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canViewBirthday(ctx, s.friendships, birthday, viewerID); err != nil {
		return nil, err
	}
	return birthday, nil
}

// ListMine returns all birthdays the user tracks.
func (s *BirthdayService) ListMine(ctx context.Context, ownerID string) ([]model.Birthday, error) {
	birthdays, err := s.birthdays.ListBirthdaysByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/birthday: listing: %w", err)
	}
	return birthdays, nil
}

// Update modifies a birthday. Owner only.
func (s *BirthdayService) Update(ctx context.Context, actorID, id, personName string, birthDate time.Time, relationship, notes string) (*model.Birthday, error) {
	birthday, err := s.birthdays.GetBirthdayByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if birthday.OwnerID != actorID {
		return nil, apperror.Forbidden("only the owner can edit a birthday")
	}

	personName = strings.TrimSpace(personName)
	if err := validateBirthdayInput(personName, birthDate); err != nil {
		return nil, err
	}
	if len(notes) > MaxNotesLength {
		return nil, apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}

	birthday.PersonName = personName
	birthday.BirthDate = birthDate
	birthday.Relationship = strings.TrimSpace(relationship)
	birthday.Notes = notes

	if err := s.birthdays.UpdateBirthday(ctx, birthday); err != nil {
		return nil, fmt.Errorf("service/birthday: updating %s: %w", id, err)
	}

	s.logger.Info("birthday updated", slog.String("id", id))
	return birthday, nil
}

// Delete removes a birthday and (via cascade) its gifts. Owner only.
func (s *BirthdayService) Delete(ctx context.Context, actorID, id string) error {
	birthday, err := s.birthdays.GetBirthdayByID(ctx, id)
	if err != nil {
		return err
	}
	if birthday.OwnerID != actorID {
		return apperror.Forbidden("only the owner can delete a birthday")
	}

	if err := s.birthdays.DeleteBirthday(ctx, id); err != nil {
		return fmt.Errorf("service/birthday: deleting %s: %w", id, err)
	}

	s.logger.Info("birthday deleted", slog.String("id", id))
	return nil
}

// Upcoming computes the user's birthdays falling within windowDays of
// today, classified and sorted.
//
// The reference day is captured ONCE for the whole batch, so a request
// that straddles midnight still classifies every entry against the same
// "today".
func (s *BirthdayService) Upcoming(ctx context.Context, ownerID string, windowDays int) ([]recurrence.Entry, error) {
	if windowDays <= 0 {
		windowDays = DefaultUpcomingWindow
	}
	if windowDays > MaxUpcomingWindow {
		windowDays = MaxUpcomingWindow
	}

	ref := time.Now()
	return s.upcomingAt(ctx, ownerID, ref, windowDays)
}

// Today returns only the birthdays occurring on the reference day.
func (s *BirthdayService) Today(ctx context.Context, ownerID string) ([]recurrence.Entry, error) {
	entries, err := s.upcomingAt(ctx, ownerID, time.Now(), 1)
	if err != nil {
		return nil, err
	}

	today := entries[:0]
	for _, e := range entries {
		if e.Kind == recurrence.Today {
			today = append(today, e)
		}
	}
	return today, nil
}

func (s *BirthdayService) upcomingAt(ctx context.Context, ownerID string, ref time.Time, windowDays int) ([]recurrence.Entry, error) {
	birthdays, err := s.birthdays.ListBirthdaysByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/birthday: listing for upcoming: %w", err)
	}

	entries := make([]recurrence.Entry, 0, len(birthdays))
	for _, b := range birthdays {
		next := recurrence.NextOccurrence(b.BirthDate, ref)
		if !recurrence.WithinWindow(next, ref, windowDays) {
			continue
		}
		entries = append(entries, recurrence.Entry{
			BirthdayID: b.ID,
			PersonName: b.PersonName,
			Next:       next,
			Kind:       recurrence.Classify(next, ref),
			AgeTurning: recurrence.AgeTurning(b.BirthDate, next),
		})
	}

	recurrence.Sort(entries)
	return entries, nil
}

// canViewBirthday enforces the visibility rule shared by birthday and
// gift reads: the owner always may; anyone else needs an accepted
// friendship with the owner. A blocked or missing relationship reads as
// Forbidden — we don't reveal whether the record exists beyond that.
func canViewBirthday(ctx context.Context, friendships repository.FriendshipRepository, birthday *model.Birthday, viewerID string) error {
	if birthday.OwnerID == viewerID {
		return nil
	}

	f, err := friendships.GetFriendshipBetween(ctx, birthday.OwnerID, viewerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Forbidden("you can only view birthdays of your friends")
		}
		return fmt.Errorf("service: checking friendship: %w", err)
	}
	if f.Status != model.FriendshipAccepted {
		return apperror.Forbidden("you can only view birthdays of your friends")
	}
	return nil
}
