package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (username, password_hash) VALUES (?, ?)`

	createCartSQL = `INSERT INTO carts (user_id) VALUES (?)`

	getUserByIDSQL = `SELECT u.id, u.username, u.password_hash, c.id
		FROM users u JOIN carts c ON c.user_id = u.id WHERE u.id = ?`

	getUserByUsernameSQL = `SELECT u.id, u.username, u.password_hash, c.id
		FROM users u JOIN carts c ON c.user_id = u.id WHERE u.username = ?`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns a UserRepository using conn.
func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{db: conn}
}

// Create inserts the user and its empty cart in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, createUserSQL, u.Username, u.PasswordHash)
		if err != nil {
			return err
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, createCartSQL, u.ID)
		if err != nil {
			return err
		}
		u.CartID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetByID returns a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByUsername returns a user by its unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByUsernameSQL, username))
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
