package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The capability matrix from the permission policy: comment authored by A on
// a project owned by B. A edits and deletes; B only deletes (moderation);
// everyone else gets neither.
func TestEvaluateCapabilityMatrix(t *testing.T) {
	owner := Ownership{ProjectID: "p1", OwnerID: "userB", SharingEnabled: true}

	tests := []struct {
		name      string
		callerID  string
		want      Capabilities
	}{
		{
			name:     "author can edit and delete",
			callerID: "userA",
			want:     Capabilities{CanView: true, CanEdit: true, CanDelete: true},
		},
		{
			name:     "project owner can delete but not edit",
			callerID: "userB",
			want:     Capabilities{CanView: true, CanEdit: false, CanDelete: true},
		},
		{
			name:     "unrelated user can only view",
			callerID: "userC",
			want:     Capabilities{CanView: true, CanEdit: false, CanDelete: false},
		},
		{
			name:     "anonymous can only view",
			callerID: "",
			want:     Capabilities{CanView: true, CanEdit: false, CanDelete: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.callerID, "userA", owner)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUnsharedProject(t *testing.T) {
	owner := Ownership{ProjectID: "p1", OwnerID: "userB", SharingEnabled: false}

	tests := []struct {
		name     string
		callerID string
		wantView bool
	}{
		{name: "anonymous cannot view unshared project", callerID: "", wantView: false},
		{name: "unrelated user cannot view unshared project", callerID: "userC", wantView: false},
		{name: "author of comment cannot view unshared project", callerID: "userA", wantView: false},
		{name: "owner bypasses the visibility gate", callerID: "userB", wantView: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.callerID, "userA", owner)
			assert.Equal(t, tt.wantView, got.CanView)
		})
	}
}

func TestEvaluateAnonymousNeverMutates(t *testing.T) {
	// Even with a bogus empty author id, anonymous callers must never gain
	// edit or delete rights.
	owner := Ownership{ProjectID: "p1", OwnerID: "", SharingEnabled: true}

	got := Evaluate("", "", owner)
	assert.False(t, got.CanEdit)
	assert.False(t, got.CanDelete)
}

func TestEvaluateNoAuthorResource(t *testing.T) {
	// Resources without a distinct author (tracks, projects): only the owner
	// may delete, nobody may "edit" through this path.
	owner := Ownership{ProjectID: "p1", OwnerID: "userB", SharingEnabled: true}

	ownerCaps := Evaluate("userB", "", owner)
	assert.False(t, ownerCaps.CanEdit)
	assert.True(t, ownerCaps.CanDelete)

	otherCaps := Evaluate("userC", "", owner)
	assert.False(t, otherCaps.CanEdit)
	assert.False(t, otherCaps.CanDelete)
}

func TestCanViewTarget(t *testing.T) {
	shared := Ownership{OwnerID: "u1", SharingEnabled: true}
	unshared := Ownership{OwnerID: "u1", SharingEnabled: false}

	assert.True(t, CanViewTarget("", shared))
	assert.True(t, CanViewTarget("u2", shared))
	assert.False(t, CanViewTarget("", unshared))
	assert.False(t, CanViewTarget("u2", unshared))
	assert.True(t, CanViewTarget("u1", unshared))
}
