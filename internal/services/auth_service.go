package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/validation"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
}

type AuthService struct {
	users  UserRepository
	tokens *TokenService
}

func NewAuthService(users UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// Register creates a normal user and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.normalize()
	if fields := validation.Struct(&in); fields != nil {
		return nil, "", newValidationError(fields)
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, "", userExists(existing.Username == in.Username, existing.Email == in.Email)
	case !errors.Is(err, db.ErrNotFound):
		return nil, "", fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Name:     in.Name,
		Phone:    in.Phone,
		UserType: models.UserTypeNormal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var dup *db.DuplicateKeyError
		if errors.As(err, &dup) {
			return nil, "", userExists(dup.Field == "username", dup.Field == "email")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	logging.Info().Str("user_id", user.ID.Hex()).Str("username", user.Username).Msg("user registered")
	return user, token, nil
}

func userExists(username, email bool) *ValidationError {
	fields := map[string]string{}
	if username {
		fields["username"] = "Username already taken"
	}
	if email {
		fields["email"] = "Email already registered"
	}
	return &ValidationError{Message: "User already exists", Fields: fields, Err: ErrUserExists}
}

// Login accepts a username, or an email when identifier contains "@".
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify loads the user behind an already validated token.
func (s *AuthService) Verify(ctx context.Context, userID string) (*models.User, error) {
	id, err := ParseID(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
