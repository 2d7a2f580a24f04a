package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Validation errors for registration.
var (
	ErrUsernameRequired = errors.New("username required")
	ErrPasswordMismatch = errors.New("password and confirm password do not match")
)

// PasswordTooShortError indicates a password below MinPasswordLength.
type PasswordTooShortError struct {
	Length int
}

func (e *PasswordTooShortError) Error() string {
	return fmt.Sprintf("password must be at least %d characters, got %d", MinPasswordLength, e.Length)
}

// CreateRequest holds the registration input.
type CreateRequest struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// Validate checks the registration rules. Length is checked before the
// confirmation match.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrUsernameRequired
	}
	if len(r.Password) < MinPasswordLength {
		return &PasswordTooShortError{Length: len(r.Password)}
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// IsValidationError reports whether err is a client input error from Create.
func IsValidationError(err error) bool {
	var short *PasswordTooShortError
	return errors.As(err, &short) ||
		errors.Is(err, ErrUsernameRequired) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrUsernameTaken)
}

// Service handles registration and account lookups.
type Service struct {
	users  Repository
	hasher Hasher
}

// NewService creates a user Service.
func NewService(users Repository, hasher Hasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Create validates the request, hashes the password and persists the user
// with an empty cart. The plaintext password is never stored.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	lg := zctx.From(ctx)
	if err := req.Validate(); err != nil {
		lg.Info("Rejected user registration", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			lg.Info("Username already taken", zap.String("username", req.Username))
			return nil, ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "create user")
	}

	lg.Info("User created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get user %d", id)
	}
	return u, nil
}

// ByUsername returns a user by username.
func (s *Service) ByUsername(ctx context.Context, username string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get user %q", username)
	}
	return u, nil
}
