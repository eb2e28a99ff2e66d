// Package model defines the data structures shared across the application.
package model

import "time"

// User is a registered account and doubles as the public profile other
// users see in friend search results.
//
// Two login paths populate it: email/password registration (PasswordHash
// set, GitHubID zero) and GitHub OAuth (GitHubID set, PasswordHash empty).
// An internal xid string is the primary key either way, so nothing else
// in the system cares which path created the account.
type User struct {
	ID           string    `json:"id"          db:"id"`
	GitHubID     int64     `json:"-"           db:"github_id"` // 0 for password accounts
	Email        string    `json:"email"       db:"email"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	AvatarURL    string    `json:"avatarUrl"   db:"avatar_url"`
	Bio          string    `json:"bio"         db:"bio"`
	PasswordHash string    `json:"-"           db:"password_hash"` // never serialized
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"   db:"updated_at"`
}
