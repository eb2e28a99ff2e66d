// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/giftwish/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser inserts a password-registered user. Returns Conflict if
	// the email is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	// UpsertGitHub inserts or updates a user keyed by GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// SearchUsersByEmail matches a case-insensitive email substring.
	SearchUsersByEmail(ctx context.Context, fragment string, limit int) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
}

type BirthdayRepository interface {
	CreateBirthday(ctx context.Context, birthday *model.Birthday) error
	GetBirthdayByID(ctx context.Context, id string) (*model.Birthday, error)
	ListBirthdaysByOwner(ctx context.Context, ownerID string) ([]model.Birthday, error)
	UpdateBirthday(ctx context.Context, birthday *model.Birthday) error
	DeleteBirthday(ctx context.Context, id string) error
}

type GiftRepository interface {
	CreateGift(ctx context.Context, gift *model.Gift) error
	GetGiftByID(ctx context.Context, id string) (*model.Gift, error)
	ListGiftsByBirthday(ctx context.Context, birthdayID string) ([]model.Gift, error)
	// UpdateClaim is a compare-and-swap on the claim column: the write
	// succeeds only if the current claimant equals expectedClaimant
	// ("" meaning unclaimed). On mismatch it returns Conflict without
	// touching the row — this is what closes the race between two
	// friends claiming the same gift at once.
	UpdateClaim(ctx context.Context, giftID, expectedClaimant, newClaimant string) error
	SetPurchased(ctx context.Context, giftID string, purchased bool) error
	DeleteGift(ctx context.Context, id string) error
}

type FriendshipRepository interface {
	CreateFriendship(ctx context.Context, friendship *model.Friendship) error
	GetFriendshipByID(ctx context.Context, id string) (*model.Friendship, error)
	// GetFriendshipBetween finds the row linking two users in either
	// direction, whatever its status.
	GetFriendshipBetween(ctx context.Context, userA, userB string) (*model.Friendship, error)
	// ListFriendshipsForUser returns rows with the given status involving
	// the user, joined with the counterpart's profile.
	ListFriendshipsForUser(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.FriendshipView, error)
	UpdateFriendshipStatus(ctx context.Context, id string, status model.FriendshipStatus) error
	DeleteFriendship(ctx context.Context, id string) error
}
