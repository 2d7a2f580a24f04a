package user

import (
	"context"

	"github.com/go-faster/errors"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 7

var (
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// User is a registered account. The cart it owns is referenced by key.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CartID       int64
}

// Repository defines user persistence.
type Repository interface {
	// Create inserts the user together with an empty cart and sets both ID
	// and CartID. It returns ErrUsernameTaken on a username conflict.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Hasher turns a plaintext password into a one-way salted hash.
type Hasher interface {
	Hash(password string) (string, error)
}
