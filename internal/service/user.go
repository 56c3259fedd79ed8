package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

const (
	MaxDisplayNameLength = 60
	MaxBioLength         = 500
	MaxAvatarURLLength   = 500
)

// profileField is one entry in the closed set of mutable profile fields:
// its length cap, an optional format check, and the assignment into the
// record. Identity fields (github_id, password) are deliberately absent.
type profileField struct {
	name       string
	maxLen     int
	allowEmpty bool
	format     func(string) error
	assign     func(*model.User, string)
}

var profileFields = map[string]profileField{
	"display_name": {
		name:   "display_name",
		maxLen: MaxDisplayNameLength,
		assign: func(u *model.User, v string) { u.DisplayName = v },
	},
	"bio": {
		name:       "bio",
		maxLen:     MaxBioLength,
		allowEmpty: true,
		assign:     func(u *model.User, v string) { u.Bio = v },
	},
	"avatar_url": {
		name:       "avatar_url",
		maxLen:     MaxAvatarURLLength,
		allowEmpty: true,
		format:     validateHTTPURL,
		assign:     func(u *model.User, v string) { u.AvatarURL = v },
	},
	"email": {
		name:   "email",
		maxLen: 254,
		format: validateEmail,
		assign: func(u *model.User, v string) { u.Email = strings.ToLower(v) },
	},
}

func validateHTTPURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

func validateEmail(v string) error {
	if _, err := mail.ParseAddress(v); err != nil {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// applyProfileField validates one field against its table entry and assigns
// it on success.
func applyProfileField(user *model.User, field string, value string) error {
	rule, ok := profileFields[field]
	if !ok {
		return apperror.ValidationFailed(field, fmt.Sprintf("field %q is not editable", field))
	}

	value = strings.TrimSpace(value)
	if value == "" && !rule.allowEmpty {
		return apperror.ValidationFailed(rule.name, fmt.Sprintf("%s is required", rule.name))
	}
	if len(value) > rule.maxLen {
		return apperror.ValidationFailed(rule.name,
			fmt.Sprintf("%s must be %d characters or less", rule.name, rule.maxLen))
	}
	if value != "" && rule.format != nil {
		if err := rule.format(value); err != nil {
			return apperror.ValidationFailed(rule.name,
				fmt.Sprintf("%s %s", rule.name, err.Error()))
		}
	}

	rule.assign(user, value)
	return nil
}

// UserService serves public profiles and self-profile updates.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Get loads a user by id. Profiles are public; the model hides the password
// hash from serialization.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfileInput carries the mutable profile fields; nil means "leave
// as is". Each field is checked against the profileFields table.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Email       *string
}

func (in UpdateProfileInput) fields() map[string]*string {
	return map[string]*string{
		"display_name": in.DisplayName,
		"bio":          in.Bio,
		"avatar_url":   in.AvatarURL,
		"email":        in.Email,
	}
}

// UpdateProfile edits the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, callerID string, in UpdateProfileInput) (*model.User, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to edit a profile")
	}

	user, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	for field, value := range in.fields() {
		if value == nil {
			continue
		}
		if err := applyProfileField(user, field, *value); err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", callerID))

	return user, nil
}
