package model

import "time"

// Project is a collection of tracks owned by a single creator.
//
// SharingEnabled gates public visibility: when false, everyone except the
// creator sees the project (and everything under it) as not found.
// ShareToken backs tokenized share links — a unique, unguessable string that
// resolves to the project without exposing its id in the URL.
//
// PlayCount, ShareCount and LibraryAddCount are global counters mutated only
// through the repository's atomic increment — never read-modify-write.
type Project struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creatorId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	SharingEnabled  bool      `json:"sharingEnabled"`
	ShareToken      string    `json:"shareToken,omitempty"`
	PlayCount       int64     `json:"playCount"`
	ShareCount      int64     `json:"shareCount"`
	LibraryAddCount int64     `json:"libraryAddCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Track is a single audio track inside a project. A track's effective owner
// is its parent project's creator — tracks carry no owner of their own.
type Track struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	Title           string    `json:"title"`
	DurationSeconds float64   `json:"durationSeconds"`
	Position        int       `json:"position"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
