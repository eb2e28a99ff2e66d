package model

import "time"

// FriendshipStatus is the lifecycle state of a friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship links two users. It is created by the requester as pending;
// the recipient either accepts it or deletes it (decline). Once accepted
// the relationship is undirected — requester/recipient only record who
// initiated. Blocked rows suppress visibility in both directions and
// refuse new requests between the pair.
type Friendship struct {
	ID          string           `json:"id"          db:"id"`
	RequesterID string           `json:"requesterId" db:"requester_id"`
	RecipientID string           `json:"recipientId" db:"recipient_id"`
	Status      FriendshipStatus `json:"status"      db:"status"`
	CreatedAt   time.Time        `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt"   db:"updated_at"`
}

// Involves reports whether userID is either side of the friendship.
func (f *Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

// Other returns the counterpart of userID, or "" if userID is not a party.
func (f *Friendship) Other(userID string) string {
	switch userID {
	case f.RequesterID:
		return f.RecipientID
	case f.RecipientID:
		return f.RequesterID
	}
	return ""
}

// FriendshipView is a Friendship joined with the counterpart's profile,
// as returned by list endpoints.
type FriendshipView struct {
	Friendship
	FriendID          string `json:"friendId"`
	FriendDisplayName string `json:"friendDisplayName"`
	FriendEmail       string `json:"friendEmail"`
}
