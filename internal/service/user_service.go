package service

import (
	"alcyxob/fittracker/internal/auth"
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"alcyxob/fittracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MaxPhotoSize bounds profile photo uploads.
const MaxPhotoSize = 5 << 20

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error)
	UploadPhoto(ctx context.Context, userID, contentType string, body io.Reader, size int64) (*domain.User, error)
	PhotoURL(ctx context.Context, userID string) (string, error)
	DeletePhoto(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// ProfileUpdate carries the fields of a partial profile update.
type ProfileUpdate struct {
	Name     domain.Optional[string]
	Email    domain.Optional[string]
	Password domain.Optional[string]
	Weight   domain.Optional[float64]
	Height   domain.Optional[float64]
	Age      domain.Optional[int]
}

type userService struct {
	store         repository.Store
	photos        storage.FileStorage // nil when no bucket is configured
	presignExpiry time.Duration
}

func NewUserService(store repository.Store, photos storage.FileStorage, presignExpiry time.Duration) UserService {
	return &userService{
		store:         store,
		photos:        photos,
		presignExpiry: presignExpiry,
	}
}

func validateBody(weight, height *float64, age *int) error {
	if weight != nil && *weight <= 0 {
		return validationError("weight must be positive")
	}
	if height != nil && *height <= 0 {
		return validationError("height must be positive")
	}
	if age != nil && (*age <= 0 || *age > 150) {
		return validationError("age must be between 1 and 150")
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name, ok := in.Name.Get(); ok {
		if strings.TrimSpace(name) == "" {
			return nil, validationError("name cannot be empty")
		}
		user.Name = strings.TrimSpace(name)
	}
	if email, ok := in.Email.Get(); ok {
		email = domain.NormalizeEmail(email)
		if email == "" {
			return nil, validationError("email cannot be empty")
		}
		user.Email = email
	}
	if password, ok := in.Password.Get(); ok {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = auth.HashPassword(password); err != nil {
			return nil, err
		}
	}
	in.Weight.Apply(&user.Weight)
	in.Height.Apply(&user.Height)
	in.Age.Apply(&user.Age)
	if err := validateBody(user.Weight, user.Height, user.Age); err != nil {
		return nil, err
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UploadPhoto stores a new photo and removes the previous one.
func (s *userService) UploadPhoto(ctx context.Context, userID, contentType string, body io.Reader, size int64) (*domain.User, error) {
	if s.photos == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := photoExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}
	if size <= 0 || size > MaxPhotoSize {
		return nil, validationError("photo must be between 1 byte and %d bytes", MaxPhotoSize)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	objectKey := path.Join("photos", userID, fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	if err := s.photos.PutObject(ctx, objectKey, contentType, body, size); err != nil {
		return nil, fmt.Errorf("put photo: %w", err)
	}

	previous := user.PhotoKey
	user.PhotoKey = objectKey
	if err := s.store.Users().Update(ctx, user); err != nil {
		// Don't leave an orphan behind
		if delErr := s.photos.DeleteObject(ctx, objectKey); delErr != nil {
			log.Warnf("delete orphan photo %s: %s", objectKey, delErr)
		}
		return nil, err
	}

	if previous != "" {
		if err := s.photos.DeleteObject(ctx, previous); err != nil {
			log.Warnf("delete previous photo %s: %s", previous, err)
		}
	}
	return user, nil
}

func (s *userService) PhotoURL(ctx context.Context, userID string) (string, error) {
	if s.photos == nil {
		return "", ErrStorageUnavailable
	}
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.HasPhoto() {
		return "", ErrPhotoNotFound
	}
	url, err := s.photos.GeneratePresignedDownloadURL(ctx, user.PhotoKey, s.presignExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrPhotoNotFound
		}
		return "", err
	}
	return url, nil
}

func (s *userService) DeletePhoto(ctx context.Context, userID string) error {
	if s.photos == nil {
		return ErrStorageUnavailable
	}
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPhoto() {
		return ErrPhotoNotFound
	}

	key := user.PhotoKey
	user.PhotoKey = ""
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	if err := s.photos.DeleteObject(ctx, key); err != nil {
		log.Warnf("delete photo %s: %s", key, err)
	}
	return nil
}

// DeleteAccount removes the user with everything they own. The photo object is
// removed after the rows are gone; failing that only leaves an orphan behind.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	var photoKey string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		photoKey = user.PhotoKey
		return tx.Users().Delete(ctx, userID)
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrAccountInUse
	case err != nil:
		return err
	}

	log.WithField("user_id", userID).Info("account deleted")
	if photoKey != "" && s.photos != nil {
		if err := s.photos.DeleteObject(ctx, photoKey); err != nil {
			log.Warnf("delete photo %s: %s", photoKey, err)
		}
	}
	return nil
}
