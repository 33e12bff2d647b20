package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/app/repositories"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/filestorage"
	"github.com/yigit/paperarchive/internal/pkg/logger"
	"github.com/yigit/paperarchive/internal/pkg/validation"
)

// UserService handles public profiles and profile editing
type UserService struct {
	users          UserStore
	files          filestorage.FileStore
	avatarFolder   string
	maxUploadBytes int64
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, files filestorage.FileStore, avatarFolder string, maxUploadBytes int64) *UserService {
	return &UserService{
		users:          users,
		files:          files,
		avatarFolder:   avatarFolder,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetProfile returns the public profile of a user
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes name, university and optionally the avatar of user id.
// Only the user themself or an admin may do so.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, id uuid.UUID, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error) {
	if !actor.CanManage(id) {
		return nil, apperrors.NewForbiddenError("You can only update your own profile")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	current, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var update repositories.UserProfileUpdate
	if name := strings.TrimSpace(req.Name); name != "" {
		update.Name = &name
	}
	if uni := strings.TrimSpace(req.University); uni != "" {
		update.University = &uni
	}

	if avatar != nil {
		data, mtype, err := readUpload(avatar, s.maxUploadBytes, avatarMimeTypes)
		if err != nil {
			return nil, err
		}
		stored, err := s.files.Upload(ctx, bytes.NewReader(data), filestorage.Upload{
			Folder:    s.avatarFolder,
			MimeType:  mtype.String(),
			Extension: mtype.Extension(),
			Size:      int64(len(data)),
		})
		if err != nil {
			logger.Error().Err(err).Str("userID", id.String()).Msg("Error storing avatar")
			return nil, apperrors.NewStoreError("store avatar", err)
		}
		update.Avatar = &stored.URL
	}

	updated, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		if update.Avatar != nil {
			s.removeAvatar(ctx, *update.Avatar)
		}
		return nil, err
	}

	if update.Avatar != nil && current.Avatar != nil && *current.Avatar != "" {
		s.removeAvatar(ctx, *current.Avatar)
	}

	resp := dto.NewUserResponse(updated)
	return &resp, nil
}

func (s *UserService) removeAvatar(ctx context.Context, fileURL string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fileCleanupTimeout)
	defer cancel()

	if err := s.files.Delete(ctx, fileURL); err != nil {
		logger.Warn().Err(err).Str("fileURL", fileURL).Msg("Failed to remove previous avatar")
	}
}
