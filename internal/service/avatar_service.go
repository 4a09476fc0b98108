package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gradtrack/internal/repository"
	"gradtrack/internal/storage"
)

var (
	ErrNoAvatar           = errors.New("no avatar set")
	ErrStorageUnavailable = errors.New("object storage not configured")
)

// AvatarService runs the read-modify-write sequence across the object
// store and the profile table. The two writes are not transactional: a
// failure between them can leave a dangling file or a dangling URL.
type AvatarService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
	store    storage.ObjectStore
}

func NewAvatarService(logger *zap.Logger, profiles repository.ProfileRepository, store storage.ObjectStore) *AvatarService {
	return &AvatarService{
		logger:   logger,
		profiles: profiles,
		store:    store,
	}
}

// Upload stores the file under a key derived from the user id and the
// original extension, overwriting any previous avatar, then persists the
// public URL on the profile.
func (s *AvatarService) Upload(ctx context.Context, userID, filename string, data []byte, contentType string) (string, error) {
	if s.store == nil {
		return "", ErrStorageUnavailable
	}

	ext := strings.ToLower(path.Ext(filename))
	key := "avatars/" + userID + ext
	if err := s.store.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}

	url := s.store.PublicURL(key)
	if err := s.profiles.UpdateAvatarURL(ctx, userID, &url); err != nil {
		return "", err
	}
	return url, nil
}

// Delete removes the current avatar object and nulls the profile field.
func (s *AvatarService) Delete(ctx context.Context, userID string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if profile.AvatarURL == nil || *profile.AvatarURL == "" {
		return ErrNoAvatar
	}

	if key, ok := s.store.KeyFromURL(*profile.AvatarURL); ok {
		if err := s.store.Remove(ctx, key); err != nil {
			return err
		}
	} else {
		s.logger.Warn("avatar url not under storage base, skipping object delete",
			zap.String("user_id", userID), zap.String("avatar_url", *profile.AvatarURL))
	}

	return s.profiles.UpdateAvatarURL(ctx, userID, nil)
}
