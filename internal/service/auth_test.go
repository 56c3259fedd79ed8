package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/service"
)

func newAuthService(t *testing.T, env *testEnv) *service.AuthService {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-test-secret")
	require.NoError(t, err)

	return service.NewAuthService(env.db, tokens, auth.NewPasswordService(), env.logger)
}

func TestAuthService_LoginOrRegisterGitHub(t *testing.T) {
	ctx := context.Background()

	t.Run("first sight creates, second reuses", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		gh := &auth.GitHubUser{ID: 777, Login: "octofan", Email: "octo@example.com"}

		first, err := svc.LoginOrRegisterGitHub(ctx, gh)
		require.NoError(t, err)
		assert.NotEmpty(t, first.User.ID)
		assert.NotEmpty(t, first.Token)
		assert.Equal(t, "octofan", first.User.DisplayName)

		second, err := svc.LoginOrRegisterGitHub(ctx, gh)
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
	})

	t.Run("different github ids get different users", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		a, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 1, Login: "a"})
		require.NoError(t, err)
		b, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 2, Login: "b"})
		require.NoError(t, err)
		assert.NotEqual(t, a.User.ID, b.User.ID)
	})
}

func TestAuthService_Password(t *testing.T) {
	ctx := context.Background()

	t.Run("register then login round-trips", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		reg, err := svc.RegisterWithPassword(ctx, "Alice@Example.com", "correct horse", "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", reg.User.Email)

		login, err := svc.LoginWithPassword(ctx, "alice@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, login.User.ID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		_, err := svc.RegisterWithPassword(ctx, "bob@example.com", "password123", "bob")
		require.NoError(t, err)

		_, errUnknown := svc.LoginWithPassword(ctx, "nobody@example.com", "password123")
		_, errWrong := svc.LoginWithPassword(ctx, "bob@example.com", "wrongwrong")

		assert.ErrorIs(t, errUnknown, apperror.ErrUnauthenticated)
		assert.ErrorIs(t, errWrong, apperror.ErrUnauthenticated)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("duplicate email registration conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		_, err := svc.RegisterWithPassword(ctx, "dup@example.com", "password123", "one")
		require.NoError(t, err)

		_, err = svc.RegisterWithPassword(ctx, "dup@example.com", "password456", "two")
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("short passwords are rejected", func(t *testing.T) {
		env := newTestEnv(t)
		svc := newAuthService(t, env)

		_, err := svc.RegisterWithPassword(ctx, "c@example.com", "short", "c")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}
