package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/storage"
)

func newUserFixture() (*UserService, *MockUserRepository, *MockImageStore, *models.User) {
	users := new(MockUserRepository)
	store := new(MockImageStore)
	amy := &models.User{
		ID:             primitive.NewObjectID(),
		Name:           "Amy",
		Email:          "amy@campus.edu",
		Phone:          "5551234567",
		ProfilePicture: "/uploads/profiles/old.jpg",
	}
	return NewUserService(users, store, 1<<20), users, store, amy
}

func TestUserService_UpdateProfileOnlyNonEmptyFields(t *testing.T) {
	svc, users, _, amy := newUserFixture()
	users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
	users.On("Update", mock.Anything, amy.ID, bson.M{"bio": "Physics major"}).
		Return(&models.User{ID: amy.ID, Name: "Amy", Bio: "Physics major"}, nil)

	user, err := svc.UpdateProfile(context.Background(), amy.ID, ProfileUpdate{Bio: " Physics major "}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Physics major", user.Bio)
	users.AssertExpectations(t)
}

func TestUserService_UpdateProfileEmailTaken(t *testing.T) {
	svc, users, _, amy := newUserFixture()
	users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
	users.On("FindByEmail", mock.Anything, "rory@campus.edu").
		Return(&models.User{ID: primitive.NewObjectID(), Email: "rory@campus.edu"}, nil)

	_, err := svc.UpdateProfile(context.Background(), amy.ID, ProfileUpdate{Email: "Rory@campus.edu"}, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email already registered", verr.Fields["email"])
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfileValidates(t *testing.T) {
	svc, users, _, amy := newUserFixture()

	_, err := svc.UpdateProfile(context.Background(), amy.ID, ProfileUpdate{Phone: "123", Email: "nope"}, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
	assert.Contains(t, verr.Fields, "email")
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfilePicture(t *testing.T) {
	t.Run("upload replaces and deletes the old picture", func(t *testing.T) {
		svc, users, store, amy := newUserFixture()
		users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
		store.On("Save", mock.Anything, storage.FolderProfiles, byFilename("me.png")).Return("/uploads/profiles/me.png", nil)
		users.On("Update", mock.Anything, amy.ID, bson.M{"profile_picture": "/uploads/profiles/me.png"}).
			Return(&models.User{ID: amy.ID, ProfilePicture: "/uploads/profiles/me.png"}, nil)
		store.On("Delete", mock.Anything, "/uploads/profiles/old.jpg").Return(nil)

		up := upload("me.png", "image/png")
		user, err := svc.UpdateProfilePicture(context.Background(), amy.ID, &up, "")

		require.NoError(t, err)
		assert.Equal(t, "/uploads/profiles/me.png", user.ProfilePicture)
		store.AssertExpectations(t)
	})

	t.Run("url from the store is accepted", func(t *testing.T) {
		svc, users, store, amy := newUserFixture()
		users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
		users.On("Update", mock.Anything, amy.ID, bson.M{"profile_picture": "/uploads/profiles/other.jpg"}).
			Return(&models.User{ID: amy.ID, ProfilePicture: "/uploads/profiles/other.jpg"}, nil)
		store.On("Delete", mock.Anything, "/uploads/profiles/old.jpg").Return(nil)

		_, err := svc.UpdateProfilePicture(context.Background(), amy.ID, nil, "/uploads/profiles/other.jpg")
		require.NoError(t, err)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign url", func(t *testing.T) {
		svc, _, _, amy := newUserFixture()
		_, err := svc.UpdateProfilePicture(context.Background(), amy.ID, nil, "https://example.com/me.jpg")
		assert.ErrorIs(t, err, ErrForeignPicture)
	})

	t.Run("nothing supplied", func(t *testing.T) {
		svc, _, _, amy := newUserFixture()
		_, err := svc.UpdateProfilePicture(context.Background(), amy.ID, nil, " ")
		assert.ErrorIs(t, err, ErrNoPicture)
	})

	t.Run("non-image upload", func(t *testing.T) {
		svc, users, _, amy := newUserFixture()
		users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
		up := upload("me.txt", "text/plain")
		_, err := svc.UpdateProfilePicture(context.Background(), amy.ID, &up, "")
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestUserService_Public(t *testing.T) {
	svc, users, _, amy := newUserFixture()
	missing := primitive.NewObjectID()
	users.On("FindByID", mock.Anything, amy.ID).Return(amy, nil)
	users.On("FindByID", mock.Anything, missing).Return(nil, db.ErrNotFound)

	user, err := svc.Public(context.Background(), amy.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Amy", user.Name)

	_, err = svc.Public(context.Background(), missing.Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
