package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserTypeNormal    = "normal"
	UserTypeAdmin     = "admin"
	UserTypeDeveloper = "developer"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Name           string             `bson:"name" json:"name"`
	Phone          string             `bson:"phone" json:"phone"`
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture"`
	Bio            string             `bson:"bio,omitempty" json:"bio"`
	UserType       string             `bson:"user_type" json:"user_type"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsModerator reports whether userType may remove other users' listings.
func IsModerator(userType string) bool {
	return userType == UserTypeAdmin || userType == UserTypeDeveloper
}

// SellerSummary is the part of a user embedded in product responses.
type SellerSummary struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	ProfilePicture string             `json:"profile_picture"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Participant is the part of a user embedded in chat responses.
type Participant struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	ProfilePicture string             `json:"profile_picture"`
}

func (u *User) Seller() *SellerSummary {
	return &SellerSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

func (u *User) Participant() *Participant {
	return &Participant{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
