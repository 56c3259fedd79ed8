package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/service"
)

func float64p(v float64) *float64 { return &v }

func TestCommentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("project comment happy path", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)
		commenter := env.user(t, "commenter")

		comment, err := svc.Create(ctx, commenter.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "  love this mix  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "love this mix", comment.Content)
		require.NotNil(t, comment.ProjectID)
		assert.Nil(t, comment.TrackID)
	})

	t.Run("track comment requires a timestamp", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)
		track := env.track(t, project.ID)

		_, err := svc.Create(ctx, owner.ID, service.CreateCommentInput{
			TrackID: track.ID,
			Content: "drums come in late",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.Create(ctx, owner.ID, service.CreateCommentInput{
			TrackID:          track.ID,
			TimestampSeconds: float64p(-1),
			Content:          "drums come in late",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		comment, err := svc.Create(ctx, owner.ID, service.CreateCommentInput{
			TrackID:          track.ID,
			TimestampSeconds: float64p(42.5),
			Content:          "drums come in late",
		})
		require.NoError(t, err)
		require.NotNil(t, comment.TimestampSeconds)
		assert.Equal(t, 42.5, *comment.TimestampSeconds)
	})

	t.Run("project comment rejects a timestamp", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)

		_, err := svc.Create(ctx, owner.ID, service.CreateCommentInput{
			ProjectID:        project.ID,
			TimestampSeconds: float64p(3),
			Content:          "nice",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("exactly one target", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)
		track := env.track(t, project.ID)

		_, err := svc.Create(ctx, owner.ID, service.CreateCommentInput{Content: "nice"})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.Create(ctx, owner.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			TrackID:   track.ID,
			Content:   "nice",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unshared project is invisible to strangers", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, false)
		stranger := env.user(t, "stranger")

		_, err := svc.Create(ctx, stranger.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "hello?",
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		// The owner still reaches their own draft.
		_, err = svc.Create(ctx, owner.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "note to self",
		})
		assert.NoError(t, err)
	})

	t.Run("anonymous callers cannot comment", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)

		_, err := svc.Create(ctx, "", service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "drive-by",
		})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}

func TestCommentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("capability flags are caller-relative", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)
		author := env.user(t, "author")
		stranger := env.user(t, "stranger")

		_, err := svc.Create(ctx, author.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "great track",
		})
		require.NoError(t, err)

		// The author may edit and delete their own comment.
		views, err := svc.List(ctx, author.ID, project.ID, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.True(t, views[0].CanEdit)
		assert.True(t, views[0].CanDelete)
		assert.Equal(t, "author", views[0].AuthorDisplayName)

		// The project owner may delete (moderation) but never edit.
		views, err = svc.List(ctx, owner.ID, project.ID, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].CanEdit)
		assert.True(t, views[0].CanDelete)

		// A third party gets neither.
		views, err = svc.List(ctx, stranger.ID, project.ID, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].CanEdit)
		assert.False(t, views[0].CanDelete)

		// Anonymous readers see the comments but no capabilities.
		views, err = svc.List(ctx, "", project.ID, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].CanEdit)
		assert.False(t, views[0].CanDelete)
	})

	t.Run("unshared project reads as not found", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, false)

		_, err := svc.List(ctx, "", project.ID, "", 0, 0)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = svc.List(ctx, owner.ID, project.ID, "", 0, 0)
		assert.NoError(t, err)
	})
}

func TestCommentService_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, *service.CommentService, string, string, string, string) {
		env := newTestEnv(t)
		svc := service.NewCommentService(env.db, env.logger)
		owner := env.user(t, "owner")
		project := env.project(t, owner.ID, true)
		author := env.user(t, "author")

		comment, err := svc.Create(ctx, author.ID, service.CreateCommentInput{
			ProjectID: project.ID,
			Content:   "original",
		})
		require.NoError(t, err)

		return env, svc, owner.ID, author.ID, comment.ID, project.ID
	}

	t.Run("author edits their own comment", func(t *testing.T) {
		_, svc, _, authorID, commentID, _ := setup(t)

		updated, err := svc.Update(ctx, authorID, commentID, "revised")
		require.NoError(t, err)
		assert.Equal(t, "revised", updated.Content)
	})

	t.Run("owner cannot edit someone else's comment", func(t *testing.T) {
		_, svc, ownerID, _, commentID, _ := setup(t)

		_, err := svc.Update(ctx, ownerID, commentID, "rewritten by owner")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("owner can delete someone else's comment", func(t *testing.T) {
		_, svc, ownerID, _, commentID, projectID := setup(t)

		require.NoError(t, svc.Delete(ctx, ownerID, commentID))

		views, err := svc.List(ctx, ownerID, projectID, "", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("stranger can do neither and the comment survives", func(t *testing.T) {
		env, svc, _, _, commentID, projectID := setup(t)
		stranger := env.user(t, "stranger")

		_, err := svc.Update(ctx, stranger.ID, commentID, "vandalism")
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		err = svc.Delete(ctx, stranger.ID, commentID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		views, err := svc.List(ctx, stranger.ID, projectID, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "original", views[0].Content)
	})

	t.Run("anonymous writes are unauthenticated", func(t *testing.T) {
		_, svc, _, _, commentID, _ := setup(t)

		_, err := svc.Update(ctx, "", commentID, "x")
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

		err = svc.Delete(ctx, "", commentID)
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}
