package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

func newUserFixture() (*UserService, *memUserStore, *fakeFileStore, models.User) {
	oldAvatar := "https://files.test/user_avatars/old.png"
	u := models.User{ID: uuid.New(), Name: "Ece", Email: "ece@uni.test", Avatar: &oldAvatar, Role: models.RoleUser}
	users := newMemUserStore(u)
	files := &fakeFileStore{}
	return NewUserService(users, files, "user_avatars", 1<<20), users, files, u
}

func TestUserService_GetProfile(t *testing.T) {
	svc, _, _, u := newUserFixture()

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ece", got.Name)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("fields only", func(t *testing.T) {
		svc, _, files, u := newUserFixture()

		got, err := svc.UpdateProfile(ctx, Actor{UserID: u.ID}, u.ID, &dto.UpdateProfileRequest{Name: " Ece K. ", University: "Hacettepe"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Ece K.", got.Name)
		assert.Equal(t, "Hacettepe", got.University)
		assert.Equal(t, *u.Avatar, got.Avatar)
		assert.Empty(t, files.uploads)
		assert.Empty(t, files.deleted)
	})

	t.Run("avatar replaces the previous one", func(t *testing.T) {
		svc, _, files, u := newUserFixture()

		got, err := svc.UpdateProfile(ctx, Actor{UserID: u.ID}, u.ID, &dto.UpdateProfileRequest{}, newFileHeader(t, "me.png", pngBytes))
		require.NoError(t, err)

		require.Len(t, files.uploads, 1)
		assert.Equal(t, "user_avatars", files.uploads[0].Folder)
		assert.NotEqual(t, *u.Avatar, got.Avatar)
		assert.Equal(t, []string{*u.Avatar}, files.deleted)
	})

	t.Run("avatar must be an image", func(t *testing.T) {
		svc, _, _, u := newUserFixture()

		_, err := svc.UpdateProfile(ctx, Actor{UserID: u.ID}, u.ID, &dto.UpdateProfileRequest{}, newFileHeader(t, "me.pdf", pdfBytes))
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)
	})

	t.Run("failed update removes the new avatar", func(t *testing.T) {
		svc, users, files, u := newUserFixture()
		users.updateErr = apperrors.NewStoreError("update profile", errors.New("timeout"))

		_, err := svc.UpdateProfile(ctx, Actor{UserID: u.ID}, u.ID, &dto.UpdateProfileRequest{}, newFileHeader(t, "me.png", pngBytes))
		assert.ErrorIs(t, err, apperrors.ErrStore)
		require.Len(t, files.deleted, 1)
		assert.NotEqual(t, *u.Avatar, files.deleted[0])
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		svc, _, _, u := newUserFixture()

		_, err := svc.UpdateProfile(ctx, Actor{UserID: uuid.New()}, u.ID, &dto.UpdateProfileRequest{Name: "x"}, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin may edit anyone", func(t *testing.T) {
		svc, _, _, u := newUserFixture()

		got, err := svc.UpdateProfile(ctx, Actor{UserID: uuid.New(), Role: models.RoleAdmin}, u.ID, &dto.UpdateProfileRequest{Name: "Renamed"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})
}
