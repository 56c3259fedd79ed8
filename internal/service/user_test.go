package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahmid/trackroom/internal/apperror"
	"github.com/tahmid/trackroom/internal/service"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewUserService(env.db, env.logger)
		u := env.user(t, "original")

		updated, err := svc.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{
			Bio: stringp("makes lo-fi beats"),
		})
		require.NoError(t, err)
		assert.Equal(t, "original", updated.DisplayName)
		assert.Equal(t, "makes lo-fi beats", updated.Bio)
	})

	t.Run("display name cannot be blanked", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewUserService(env.db, env.logger)
		u := env.user(t, "original")

		_, err := svc.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{
			DisplayName: stringp("   "),
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("over-long bio is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewUserService(env.db, env.logger)
		u := env.user(t, "original")

		_, err := svc.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{
			Bio: stringp(strings.Repeat("x", service.MaxBioLength+1)),
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("avatar must be an http url", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewUserService(env.db, env.logger)
		u := env.user(t, "original")

		_, err := svc.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{
			AvatarURL: stringp("javascript:alert(1)"),
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		updated, err := svc.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{
			AvatarURL: stringp("https://cdn.example.com/me.png"),
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/me.png", updated.AvatarURL)
	})

	t.Run("anonymous callers cannot edit", func(t *testing.T) {
		env := newTestEnv(t)
		svc := service.NewUserService(env.db, env.logger)

		_, err := svc.UpdateProfile(ctx, "", service.UpdateProfileInput{
			Bio: stringp("x"),
		})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}
