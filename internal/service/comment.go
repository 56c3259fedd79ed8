package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/authz"
	"github.com/tahmid/trackroom/internal/metrics"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

const MaxCommentLength = 2000

// CommentStore is the slice of the repository the comment service needs.
type CommentStore interface {
	repository.CommentRepository
	repository.OwnershipResolver
}

// CommentService implements the comment rules. The check sequence is fixed
// and ordered — later steps assume earlier ones passed:
//
//  1. shape: exactly one target, sane content, timestamp iff track target;
//  2. resolve the target and apply the visibility gate (invisible reads as
//     NotFound before anything about the caller is considered, except the
//     owner's bypass);
//  3. for writes, require an authenticated caller;
//  4. for update/delete, load the comment and evaluate permissions;
//  5. perform the single mutation.
type CommentService struct {
	store  CommentStore
	logger *slog.Logger
}

func NewCommentService(store CommentStore, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

// CreateCommentInput is the validated-by-the-service shape of a new comment.
type CreateCommentInput struct {
	ProjectID        string
	TrackID          string
	TimestampSeconds *float64
	Content          string
}

// resolveTarget validates target exclusivity and resolves ownership in one
// lookup. Exactly one of projectID/trackID must be set.
func (s *CommentService) resolveTarget(ctx context.Context, projectID, trackID string) (authz.Ownership, error) {
	switch {
	case projectID != "" && trackID != "":
		return authz.Ownership{}, apperror.ValidationFailed("target",
			"a comment targets a project or a track, not both")
	case projectID != "":
		return s.store.ResolveProject(ctx, projectID)
	case trackID != "":
		return s.store.ResolveTrack(ctx, trackID)
	default:
		return authz.Ownership{}, apperror.ValidationFailed("target",
			"a project or track target is required")
	}
}

// List returns the comments on a target, newest first, annotated with the
// author display name and the caller-relative capability flags. callerID is
// "" for anonymous readers.
func (s *CommentService) List(ctx context.Context, callerID, projectID, trackID string, limit, offset int) ([]model.CommentView, error) {
	owner, err := s.resolveTarget(ctx, projectID, trackID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, notFoundTarget(projectID, trackID)
	}

	comments, err := s.store.ListComments(ctx, projectID, trackID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	views := make([]model.CommentView, 0, len(comments))
	for _, c := range comments {
		caps := authz.Evaluate(callerID, c.UserID, owner)
		views = append(views, model.CommentView{
			CommentWithAuthor: c,
			CanEdit:           caps.CanEdit,
			CanDelete:         caps.CanDelete,
		})
	}

	return views, nil
}

// Create posts a comment as callerID. The timestamp rules are strict: a
// track comment requires a non-negative timestamp, a project comment must
// not carry one.
func (s *CommentService) Create(ctx context.Context, callerID string, in CreateCommentInput) (*model.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if in.TrackID != "" {
		if in.TimestampSeconds == nil {
			return nil, apperror.ValidationFailed("timestamp_seconds",
				"a track comment requires a timestamp")
		}
		if *in.TimestampSeconds < 0 {
			return nil, apperror.ValidationFailed("timestamp_seconds",
				"timestamp must be non-negative")
		}
	} else if in.TimestampSeconds != nil {
		return nil, apperror.ValidationFailed("timestamp_seconds",
			"a project comment cannot carry a timestamp")
	}

	owner, err := s.resolveTarget(ctx, in.ProjectID, in.TrackID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, notFoundTarget(in.ProjectID, in.TrackID)
	}

	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to comment")
	}

	comment := &model.Comment{
		UserID:  callerID,
		Content: content,
	}
	targetLabel := "project"
	if in.ProjectID != "" {
		comment.ProjectID = &in.ProjectID
	} else {
		comment.TrackID = &in.TrackID
		comment.TimestampSeconds = in.TimestampSeconds
		targetLabel = "track"
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("userID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	metrics.CommentsCreated.WithLabelValues(targetLabel).Inc()
	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("userID", callerID),
	)

	return comment, nil
}

// Update edits a comment's content. Strictly author-only: the owner of the
// parent project cannot edit someone else's words.
func (s *CommentService) Update(ctx context.Context, callerID, commentID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to edit a comment")
	}

	comment, owner, err := s.loadWithOwnership(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return nil, apperror.NotFound("comment", commentID)
	}

	caps := authz.Evaluate(callerID, comment.UserID, owner)
	if !caps.CanEdit {
		return nil, apperror.Forbidden("only the author may edit a comment")
	}

	comment.Content = content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		s.logger.Error("failed to update comment",
			slog.String("id", commentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.logger.Info("comment updated", slog.String("id", commentID))

	return comment, nil
}

// Delete removes a comment. Author or effective owner of the target — the
// owner's moderation right.
func (s *CommentService) Delete(ctx context.Context, callerID, commentID string) error {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return apperror.ValidationFailed("id", "comment ID is required")
	}

	if callerID == "" {
		return apperror.Unauthenticated("authentication required to delete a comment")
	}

	comment, owner, err := s.loadWithOwnership(ctx, commentID)
	if err != nil {
		return err
	}
	if !authz.CanViewTarget(callerID, owner) {
		return apperror.NotFound("comment", commentID)
	}

	caps := authz.Evaluate(callerID, comment.UserID, owner)
	if !caps.CanDelete {
		return apperror.Forbidden("only the author or the project creator may delete a comment")
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.String("id", commentID),
		slog.String("deletedBy", callerID),
	)

	return nil
}

// loadWithOwnership fetches a comment and resolves its target's ownership.
// A comment whose target vanished underneath it reads as NotFound.
func (s *CommentService) loadWithOwnership(ctx context.Context, commentID string) (*model.Comment, authz.Ownership, error) {
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, authz.Ownership{}, err
	}

	var owner authz.Ownership
	if comment.ProjectID != nil {
		owner, err = s.store.ResolveProject(ctx, *comment.ProjectID)
	} else if comment.TrackID != nil {
		owner, err = s.store.ResolveTrack(ctx, *comment.TrackID)
	} else {
		return nil, authz.Ownership{}, fmt.Errorf("comment %s has no target", commentID)
	}
	if err != nil {
		return nil, authz.Ownership{}, err
	}

	return comment, owner, nil
}

func notFoundTarget(projectID, trackID string) error {
	if trackID != "" {
		return apperror.NotFound("track", trackID)
	}
	return apperror.NotFound("project", projectID)
}
