// Package authz is the authorization core shared by the comment, library and
// tip endpoints: ownership resolution results and the permission evaluator
// that turns them into per-viewer capability flags.
//
// The evaluator is a pure function — it holds no state and touches no I/O.
// Every request re-resolves ownership from the datastore and re-evaluates;
// nothing here is cached across requests.
package authz

// Ownership is the resolved snapshot of a resource target. For a project
// target it is the project's own row; for a track target it is resolved
// through the parent project in a single lookup, so a project deleted
// mid-request can never be observed as a torn state — the whole resolution
// reports not found instead.
type Ownership struct {
	ProjectID      string // the project the target belongs to (or is)
	OwnerID        string // the effective owning user: the project's creator
	SharingEnabled bool   // public visibility gate
}

// Capabilities are the per-viewer flags computed at read time.
type Capabilities struct {
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// Evaluate computes the caller's capabilities over a resource.
//
//   - callerID is the authenticated user id, or "" for anonymous callers.
//   - authorID is the resource's author (a comment's user_id). Pass "" when
//     the resource has no author distinct from its owner.
//   - owner is the resolved effective ownership of the resource's target.
//
// Policy, preserved exactly:
//   - view: the visibility flag must not be false — except for the owner,
//     who can always see their own unshared work.
//   - edit: strictly author-only. The owner of the parent project may NOT
//     edit someone else's comment.
//   - delete: author or owner (the owner's moderation right).
//
// Anonymous callers can at most view.
func Evaluate(callerID, authorID string, owner Ownership) Capabilities {
	caps := Capabilities{
		CanView: owner.SharingEnabled,
	}

	if callerID == "" {
		return caps
	}

	if callerID == owner.OwnerID {
		caps.CanView = true
	}

	caps.CanEdit = authorID != "" && callerID == authorID
	caps.CanDelete = caps.CanEdit || callerID == owner.OwnerID

	return caps
}

// CanViewTarget reports whether the caller may see the target at all.
// Handlers apply this before anything else: an invisible project is
// indistinguishable from a missing one for everyone but its owner.
func CanViewTarget(callerID string, owner Ownership) bool {
	return owner.SharingEnabled || (callerID != "" && callerID == owner.OwnerID)
}
