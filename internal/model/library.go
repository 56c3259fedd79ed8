package model

import "time"

// LibraryEntry records that a user saved a project to their library.
// Identity is the (UserID, ProjectID) pair — a user has at most one entry
// per project, and adding an existing project returns the existing row.
type LibraryEntry struct {
	UserID    string    `json:"userId"`
	ProjectID string    `json:"projectId"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
}
