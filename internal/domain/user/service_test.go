package user

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockUserRepo struct {
	users     []*User
	createErr error
	getErr    error
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	u.ID = int64(len(m.users) + 1)
	u.CartID = u.ID + 100
	m.users = append(m.users, u)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

type fakeHasher struct {
	calls int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	h.calls++
	return "hashed:" + password, nil
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := &mockUserRepo{}
	hasher := &fakeHasher{}
	svc := NewService(repo, hasher)

	u, err := svc.Create(context.Background(), CreateRequest{
		Username:        "username",
		Password:        "password",
		ConfirmPassword: "password",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, int64(101), u.CartID)
	assert.Equal(t, "username", u.Username)
	assert.Equal(t, "hashed:password", u.PasswordHash)
	assert.Equal(t, 1, hasher.calls)
}

func TestCreate_ValidationErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		req  CreateRequest
	}{
		{name: "ShortMatching", req: CreateRequest{Username: "u", Password: "pass", ConfirmPassword: "pass"}},
		{name: "ShortMismatch", req: CreateRequest{Username: "u", Password: "pass", ConfirmPassword: "other"}},
		{name: "SixChars", req: CreateRequest{Username: "u", Password: "abcdef", ConfirmPassword: "abcdef"}},
		{name: "Mismatch", req: CreateRequest{Username: "u", Password: "password", ConfirmPassword: "passWord"}},
		{name: "NoUsername", req: CreateRequest{Username: " ", Password: "password", ConfirmPassword: "password"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUserRepo{}
			hasher := &fakeHasher{}
			svc := NewService(repo, hasher)

			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "unexpected error kind: %v", err)
			assert.Empty(t, repo.users)
			assert.Zero(t, hasher.calls)
		})
	}
}

func TestCreate_ShortPasswordReportedBeforeMismatch(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &fakeHasher{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Username: "username", Password: "pass", ConfirmPassword: "different",
	})
	var short *PasswordTooShortError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 4, short.Length)
}

func TestCreate_MinimumLengthAccepted(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &fakeHasher{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Username: "username", Password: "1234567", ConfirmPassword: "1234567",
	})
	require.NoError(t, err)
}

func TestCreate_UsernameTaken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &fakeHasher{})
	req := CreateRequest{Username: "username", Password: "password", ConfirmPassword: "password"}

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrUsernameTaken)
	assert.True(t, IsValidationError(err))
}

func TestCreate_RepositoryError(t *testing.T) {
	svc := NewService(&mockUserRepo{createErr: errors.New("db down")}, &fakeHasher{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Username: "username", Password: "password", ConfirmPassword: "password",
	})
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "create user")
}

func TestGet(t *testing.T) {
	repo := &mockUserRepo{users: []*User{{ID: 1, Username: "username"}}}
	svc := NewService(repo, &fakeHasher{})

	u, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "username", u.Username)

	_, err = svc.Get(context.Background(), 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByUsername(t *testing.T) {
	repo := &mockUserRepo{users: []*User{{ID: 1, Username: "username"}}}
	svc := NewService(repo, &fakeHasher{})

	u, err := svc.ByUsername(context.Background(), "username")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = svc.ByUsername(context.Background(), "testuser")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByUsername_RepositoryError(t *testing.T) {
	svc := NewService(&mockUserRepo{getErr: errors.New("timeout")}, &fakeHasher{})

	_, err := svc.ByUsername(context.Background(), "username")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	first, err := h.Hash("password")
	require.NoError(t, err)
	second, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, "password", first)
	assert.NotEqual(t, first, second, "hashes must be salted")
	assert.True(t, CheckPassword(first, "password"))
	assert.False(t, CheckPassword(first, "passWord"))
}
