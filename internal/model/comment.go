package model

import "time"

// Comment is feedback left on a project or on a specific track.
//
// Exactly one of ProjectID/TrackID is set — never both, never neither.
// TimestampSeconds is required and non-negative iff the comment targets a
// track (it marks a position in the audio), and must be absent for
// project-level comments. Both invariants are enforced by the service and
// backed by a CHECK constraint in the schema.
type Comment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ProjectID        *string   `json:"projectId,omitempty"`
	TrackID          *string   `json:"trackId,omitempty"`
	TimestampSeconds *float64  `json:"timestampSeconds,omitempty"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CommentWithAuthor is a comment joined with its author's display name, as
// loaded by the repository list query.
type CommentWithAuthor struct {
	Comment
	AuthorDisplayName string `json:"authorDisplayName"`
}

// CommentView is a comment annotated for a specific viewer: the author's
// display name plus the capability flags computed at read time relative to
// the requesting caller. Flags are never stored.
type CommentView struct {
	CommentWithAuthor
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}
