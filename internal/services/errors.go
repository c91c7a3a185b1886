package services

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrForbidden          = errors.New("not authorized")
	ErrSelfChat           = errors.New("cannot create a chat with yourself")
	ErrInvalidID          = errors.New("invalid id")
	ErrEmptyQuery         = errors.New("search query is required")
	ErrInvalidImage       = errors.New("only image files are allowed")
	ErrImageTooLarge      = errors.New("image exceeds the maximum upload size")
	ErrTooManyImages      = errors.New("too many images")
	ErrNoPicture          = errors.New("no profile picture provided")
	ErrForeignPicture     = errors.New("profile picture url is not from the configured image store")
)

// ValidationError is a 400 with per-field messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "Validation failed", Fields: fields}
}
