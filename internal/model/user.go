// Package model defines the data structures shared across the application.
package model

import "time"

// User is a registered account.
//
// Identity comes from GitHub OAuth (GitHubID is the provider's stable numeric
// subject) or from email/password registration, in which case GitHubID is
// zero and PasswordHash is set. We generate our own internal xid so primary
// keys are never tied to a third party's numbering scheme.
//
// Invariants: ID is immutable once created; a non-zero GitHubID is unique and
// never reassigned. A user record is created lazily on the first verified
// OAuth callback for an unseen GitHubID.
type User struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"githubId,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
