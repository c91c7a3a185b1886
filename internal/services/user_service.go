package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/storage"
	"github.com/arzan03/CampusKart/internal/validation"
)

// ProfileUpdate holds the editable profile fields. Empty fields are ignored.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Bio   string `json:"bio"`
}

type UserService struct {
	users  UserRepository
	images *imageSet
}

func NewUserService(users UserRepository, store ImageStore, maxImageSize int64) *UserService {
	return &UserService{
		users:  users,
		images: &imageSet{store: store, maxSize: maxImageSize, maxCount: 1},
	}
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Public returns another user's profile by hex id.
func (s *UserService) Public(ctx context.Context, userID string) (*models.User, error) {
	id, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, id)
}

// UpdateProfile applies the non-empty fields and, when picture is set,
// replaces the profile picture.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate, picture *storage.Upload) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Bio = strings.TrimSpace(in.Bio)
	if fields := validation.Struct(&in); fields != nil {
		return nil, newValidationError(fields)
	}

	current, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if in.Name != "" {
		set["name"] = in.Name
	}
	if in.Phone != "" {
		set["phone"] = in.Phone
	}
	if in.Bio != "" {
		set["bio"] = in.Bio
	}
	if in.Email != "" && in.Email != current.Email {
		other, err := s.users.FindByEmail(ctx, in.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, emailTaken()
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
		set["email"] = in.Email
	}

	var newPicture string
	if picture != nil {
		if newPicture, err = s.images.save(ctx, storage.FolderProfiles, *picture); err != nil {
			return nil, err
		}
		set["profile_picture"] = newPicture
	}

	if len(set) == 0 {
		return current, nil
	}

	user, err := s.update(ctx, id, set)
	if err != nil {
		if newPicture != "" {
			s.images.deleteAll(ctx, []string{newPicture})
		}
		return nil, err
	}
	if newPicture != "" && current.ProfilePicture != "" {
		s.images.deleteAll(ctx, []string{current.ProfilePicture})
	}
	return user, nil
}

// UpdateProfilePicture sets the picture from an upload or from a URL that the
// configured store produced. The previous picture is removed best-effort.
func (s *UserService) UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, upload *storage.Upload, url string) (*models.User, error) {
	url = strings.TrimSpace(url)
	if upload == nil && url == "" {
		return nil, ErrNoPicture
	}
	if upload == nil && !s.images.store.Owns(url) {
		return nil, ErrForeignPicture
	}

	current, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	uploaded := false
	if upload != nil {
		if url, err = s.images.save(ctx, storage.FolderProfiles, *upload); err != nil {
			return nil, err
		}
		uploaded = true
	}

	user, err := s.update(ctx, id, bson.M{"profile_picture": url})
	if err != nil {
		if uploaded {
			s.images.deleteAll(ctx, []string{url})
		}
		return nil, err
	}
	if current.ProfilePicture != "" && current.ProfilePicture != url {
		s.images.deleteAll(ctx, []string{current.ProfilePicture})
	}

	logging.Info().Str("user_id", id.Hex()).Msg("profile picture updated")
	return user, nil
}

func (s *UserService) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	user, err := s.users.Update(ctx, id, set)
	if err != nil {
		var dup *db.DuplicateKeyError
		switch {
		case errors.As(err, &dup):
			return nil, emailTaken()
		case errors.Is(err, db.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func emailTaken() *ValidationError {
	return &ValidationError{
		Message: "Email already registered",
		Fields:  map[string]string{"email": "Email already registered"},
		Err:     ErrUserExists,
	}
}
