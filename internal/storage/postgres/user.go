package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-api/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`

	createCartSQL = `INSERT INTO carts (user_id) VALUES ($1) RETURNING id`

	getUserByIDSQL = `SELECT u.id, u.username, u.password_hash, c.id
		FROM users u JOIN carts c ON c.user_id = u.id WHERE u.id = $1`

	getUserByUsernameSQL = `SELECT u.id, u.username, u.password_hash, c.id
		FROM users u JOIN carts c ON c.user_id = u.id WHERE u.username = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and its empty cart in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, createUserSQL, u.Username, u.PasswordHash).Scan(&u.ID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, createCartSQL, u.ID).Scan(&u.CartID)
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
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return collectUser(rows)
}

// GetByUsername returns a user by its unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByUsernameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return collectUser(rows)
}

func collectUser(rows pgx.Rows) (*user.User, error) {
	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.User, error) {
		var u user.User
		err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CartID)
		return u, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}
