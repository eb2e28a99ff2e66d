package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/repository"
)

const (
	MaxGiftNameLength = 200
	MaxGiftURLLength  = 2000
)

// GiftService manages wishlists and the claim state machine.
//
// A gift is either unclaimed or claimed by exactly one user. All claim
// transitions go through the repository's compare-and-swap, so the
// outcome of two friends racing for the same gift is decided by the
// database, not by whoever read the row last.
type GiftService struct {
	gifts       repository.GiftRepository
	birthdays   repository.BirthdayRepository
	friendships repository.FriendshipRepository
	users       repository.UserRepository
	logger      *slog.Logger
}

func NewGiftService(
	gifts repository.GiftRepository,
	birthdays repository.BirthdayRepository,
	friendships repository.FriendshipRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *GiftService {
	return &GiftService{
		gifts:       gifts,
		birthdays:   birthdays,
		friendships: friendships,
		users:       users,
		logger:      logger,
	}
}

// GiftView is a Gift plus the claimant's display name, resolved for list
// responses. For the birthday owner the claim fields are blanked — the
// owner never learns who (or whether anyone) claimed a gift.
type GiftView struct {
	model.Gift
	ClaimedByName string `json:"claimedByName,omitempty"`
}

// Create adds a gift idea to a birthday's wishlist. Owner only.
func (s *GiftService) Create(ctx context.Context, actorID, birthdayID, name, url, priceRange string, priority model.Priority, notes string) (*model.Gift, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("giftName", "gift name is required")
	}
	if len(name) > MaxGiftNameLength {
		return nil, apperror.ValidationFailed("giftName",
			fmt.Sprintf("gift name must be %d characters or less", MaxGiftNameLength))
	}
	if len(url) > MaxGiftURLLength {
		return nil, apperror.ValidationFailed("giftUrl",
			fmt.Sprintf("gift URL must be %d characters or less", MaxGiftURLLength))
	}
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.ValidationFailed("priority", "priority must be low, medium, or high")
	}

	birthday, err := s.birthdays.GetBirthdayByID(ctx, birthdayID)
	if err != nil {
		return nil, err
	}
	if birthday.OwnerID != actorID {
		return nil, apperror.Forbidden("only the owner can add gifts to a wishlist")
	}

	gift := &model.Gift{
		BirthdayID: birthdayID,
		GiftName:   name,
		GiftURL:    strings.TrimSpace(url),
		PriceRange: strings.TrimSpace(priceRange),
		Priority:   priority,
		Notes:      notes,
	}
	if err := s.gifts.CreateGift(ctx, gift); err != nil {
		s.logger.Error("failed to create gift",
			slog.String("birthdayID", birthdayID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/gift: creating: %w", err)
	}

	s.logger.Info("gift created",
		slog.String("id", gift.ID),
		slog.String("birthdayID", birthdayID),
	)
	return gift, nil
}

// List returns a birthday's wishlist for a permitted viewer.
//
// Non-owners see claims with the claimant's display name so friends can
// coordinate. The owner gets the same list with every claim redacted.
func (s *GiftService) List(ctx context.Context, viewerID, birthdayID string) ([]GiftView, error) {
	birthday, err := s.birthdays.GetBirthdayByID(ctx, birthdayID)
	if err != nil {
		return nil, err
	}
	if err := canViewBirthday(ctx, s.friendships, birthday, viewerID); err != nil {
		return nil, err
	}

	gifts, err := s.gifts.ListGiftsByBirthday(ctx, birthdayID)
	if err != nil {
		return nil, fmt.Errorf("service/gift: listing: %w", err)
	}

	isOwner := birthday.OwnerID == viewerID
	names := map[string]string{}

	views := make([]GiftView, 0, len(gifts))
	for _, g := range gifts {
		v := GiftView{Gift: g}
		if isOwner {
			v.ClaimedByUserID = ""
		} else if g.Claimed() {
			name, ok := names[g.ClaimedByUserID]
			if !ok {
				if u, err := s.users.GetUserByID(ctx, g.ClaimedByUserID); err == nil {
					name = u.DisplayName
				}
				names[g.ClaimedByUserID] = name
			}
			v.ClaimedByName = name
		}
		views = append(views, v)
	}
	return views, nil
}

// Claim reserves a gift for the actor.
//
// Transitions:
//   - unclaimed            → claimed by actor (CAS; loser of a race gets Conflict)
//   - claimed by actor     → no-op success
//   - claimed by another   → Conflict
//   - actor owns the birthday → Forbidden, always
func (s *GiftService) Claim(ctx context.Context, actorID, giftID string) (*model.Gift, error) {
	gift, birthday, err := s.giftWithBirthday(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if birthday.OwnerID == actorID {
		return nil, apperror.Forbidden("the birthday owner cannot claim gifts on their own list")
	}
	if err := canViewBirthday(ctx, s.friendships, birthday, actorID); err != nil {
		return nil, err
	}

	if gift.ClaimedBy(actorID) {
		return gift, nil
	}
	if gift.Claimed() {
		return nil, apperror.Conflict("this gift has already been claimed")
	}

	if err := s.gifts.UpdateClaim(ctx, giftID, "", actorID); err != nil {
		return nil, err
	}

	s.logger.Info("gift claimed",
		slog.String("giftID", giftID),
		slog.String("userID", actorID),
	)

	gift.ClaimedByUserID = actorID
	return gift, nil
}

// Unclaim releases the actor's claim.
//
// Transitions:
//   - claimed by actor   → unclaimed
//   - already unclaimed  → no-op success (idempotent release)
//   - claimed by another → Forbidden
//   - actor owns the birthday → Forbidden
func (s *GiftService) Unclaim(ctx context.Context, actorID, giftID string) (*model.Gift, error) {
	gift, birthday, err := s.giftWithBirthday(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if birthday.OwnerID == actorID {
		return nil, apperror.Forbidden("the birthday owner cannot touch claims")
	}

	if !gift.Claimed() {
		return gift, nil
	}
	if !gift.ClaimedBy(actorID) {
		return nil, apperror.Forbidden("you can only release your own claim")
	}

	if err := s.gifts.UpdateClaim(ctx, giftID, actorID, ""); err != nil {
		// A concurrent release of the same claim loses the CAS but the
		// end state is what the actor asked for; treat it as done.
		if errors.Is(err, apperror.ErrConflict) {
			if fresh, ferr := s.gifts.GetGiftByID(ctx, giftID); ferr == nil && !fresh.Claimed() {
				return fresh, nil
			}
		}
		return nil, err
	}

	s.logger.Info("gift unclaimed",
		slog.String("giftID", giftID),
		slog.String("userID", actorID),
	)

	gift.ClaimedByUserID = ""
	return gift, nil
}

// SetPurchased flips the owner-only purchased flag. Deliberately
// independent of the claim state.
func (s *GiftService) SetPurchased(ctx context.Context, actorID, giftID string, purchased bool) error {
	_, birthday, err := s.giftWithBirthday(ctx, giftID)
	if err != nil {
		return err
	}
	if birthday.OwnerID != actorID {
		return apperror.Forbidden("only the owner can mark gifts purchased")
	}

	if err := s.gifts.SetPurchased(ctx, giftID, purchased); err != nil {
		return err
	}

	s.logger.Info("gift purchased flag set",
		slog.String("giftID", giftID),
		slog.Bool("purchased", purchased),
	)
	return nil
}

// Delete removes a gift. Owner only.
func (s *GiftService) Delete(ctx context.Context, actorID, giftID string) error {
	_, birthday, err := s.giftWithBirthday(ctx, giftID)
	if err != nil {
		return err
	}
	if birthday.OwnerID != actorID {
		return apperror.Forbidden("only the owner can delete gifts")
	}

	if err := s.gifts.DeleteGift(ctx, giftID); err != nil {
		return err
	}

	s.logger.Info("gift deleted", slog.String("giftID", giftID))
	return nil
}

func (s *GiftService) giftWithBirthday(ctx context.Context, giftID string) (*model.Gift, *model.Birthday, error) {
	gift, err := s.gifts.GetGiftByID(ctx, giftID)
	if err != nil {
		return nil, nil, err
	}
	birthday, err := s.birthdays.GetBirthdayByID(ctx, gift.BirthdayID)
	if err != nil {
		return nil, nil, fmt.Errorf("service/gift: loading birthday for gift %s: %w", giftID, err)
	}
	return gift, birthday, nil
}
