package model

import "time"

// Priority is the owner's ranking of how much they want a gift.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Gift is one wishlist entry under a Birthday.
//
// ClaimedByUserID implements the claim state: empty means unclaimed, a
// user ID means exactly that user has reserved the gift. The field is
// only ever moved between those two states by a conditional update in
// the repository, so two friends claiming at once can't both win.
//
// IsPurchased is an owner-only flag and deliberately independent of the
// claim state — the owner marks gifts bought without ever seeing or
// touching claims.
type Gift struct {
	ID              string    `json:"id"          db:"id"`
	BirthdayID      string    `json:"birthdayId"  db:"birthday_id"`
	GiftName        string    `json:"giftName"    db:"gift_name"`
	GiftURL         string    `json:"giftUrl"     db:"gift_url"`
	PriceRange      string    `json:"priceRange"  db:"price_range"`
	Priority        Priority  `json:"priority"    db:"priority"`
	IsPurchased     bool      `json:"isPurchased" db:"is_purchased"`
	Notes           string    `json:"notes"       db:"notes"`
	ClaimedByUserID string    `json:"claimedByUserId,omitempty" db:"claimed_by_user_id"`
	CreatedAt       time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"   db:"updated_at"`
}

// Claimed reports whether anyone has reserved the gift.
func (g *Gift) Claimed() bool {
	return g.ClaimedByUserID != ""
}

// ClaimedBy reports whether the given user holds the claim.
func (g *Gift) ClaimedBy(userID string) bool {
	return g.ClaimedByUserID != "" && g.ClaimedByUserID == userID
}
