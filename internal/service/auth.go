// Package service contains the business logic layer: validation, ownership
// and permission checks, and orchestration between repositories. Services
// accept primitives and return domain errors — they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/model"
	"github.com/tahmid/trackroom/internal/repository"
)

// AuthService is the identity resolver: it maps verified external
// credentials (a GitHub OAuth exchange or an email/password pair) to the
// stable internal user record, creating one lazily on first sight.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued access token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub resolves a verified GitHub profile to a user record.
//
// First sight of a GitHub id creates the record. Creation is race-tolerant:
// two concurrent first logins may both attempt the insert, the loser hits
// the unique constraint and re-fetches the winner's row, so at most one
// effective row ever exists per external identity.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		// Known identity — nothing to create.

	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			GitHubID:    ghUser.ID,
			Email:       ghUser.Email,
			DisplayName: ghUser.Login,
			AvatarURL:   ghUser.AvatarURL,
		}
		if createErr := s.users.CreateUser(ctx, user); createErr != nil {
			if !errors.Is(createErr, apperror.ErrConflict) {
				return nil, fmt.Errorf("service/auth: creating user (githubID=%d): %w", ghUser.ID, createErr)
			}
			// Lost the first-login race; the other request's row wins.
			user, err = s.users.GetUserByGitHubID(ctx, ghUser.ID)
			if err != nil {
				return nil, fmt.Errorf("service/auth: refetching user after conflict (githubID=%d): %w", ghUser.ID, err)
			}
		} else {
			s.logger.Info("user created on first login",
				slog.String("userID", user.ID),
				slog.Int64("githubID", ghUser.ID),
			)
		}

	default:
		return nil, fmt.Errorf("service/auth: looking up user (githubID=%d): %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("displayName", user.DisplayName),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// RegisterWithPassword creates an email/password account and logs it in.
func (s *AuthService) RegisterWithPassword(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}
	if displayName == "" {
		return nil, apperror.ValidationFailed("display_name", "display name is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("user", email)
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithPassword verifies an email/password pair. Unknown email and wrong
// password return the same Unauthenticated error, so login probes cannot
// distinguish them.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	if user.PasswordHash == "" || !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via password",
		slog.String("userID", user.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}
