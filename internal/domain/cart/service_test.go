package cart

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byName map[string]*user.User
}

func (m *mockUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, _ int64) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type mockItemRepo struct {
	byID map[int64]*item.Item
}

func (m *mockItemRepo) List(_ context.Context) ([]item.Item, error) { return nil, nil }

func (m *mockItemRepo) GetByID(_ context.Context, id int64) (*item.Item, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	return it, nil
}

func (m *mockItemRepo) FindByName(_ context.Context, _ string) ([]item.Item, error) { return nil, nil }

func (m *mockItemRepo) Create(_ context.Context, _ *item.Item) error { return nil }

type mockCartRepo struct {
	cart    *Cart
	saved   []int64
	saveErr error
}

func (m *mockCartRepo) GetByUserID(_ context.Context, userID int64) (*Cart, error) {
	if m.cart == nil || m.cart.UserID != userID {
		return nil, ErrNotFound
	}
	return m.cart, nil
}

func (m *mockCartRepo) Save(_ context.Context, c *Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, c.ID)
	return nil
}

// --- Helpers ---

type fixture struct {
	carts *mockCartRepo
	svc   *Service
}

func newFixture() *fixture {
	u := &user.User{ID: 7, Username: "username", CartID: 3}
	it := newTestItem(1, "10")
	f := &fixture{
		carts: &mockCartRepo{cart: &Cart{ID: 3, UserID: 7}},
	}
	f.svc = NewService(
		&mockUserRepo{byName: map[string]*user.User{u.Username: u}},
		&mockItemRepo{byID: map[int64]*item.Item{it.ID: &it}},
		f.carts,
	)
	return f
}

// --- Tests ---

func TestAdd(t *testing.T) {
	f := newFixture()

	c, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Len(t, c.Items, 5)
	assert.True(t, decimal.RequireFromString("50").Equal(c.Total()))
	assert.Equal(t, []int64{3}, f.carts.saved)
}

func TestAdd_UnknownUser(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "nobody", ItemID: 1, Quantity: 1})
	require.ErrorIs(t, err, user.ErrNotFound)
	assert.Empty(t, f.carts.saved)
}

func TestAdd_UnknownItem(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 42, Quantity: 1})
	require.ErrorIs(t, err, item.ErrNotFound)
	assert.Empty(t, f.carts.saved)
}

func TestModify_InvalidQuantity(t *testing.T) {
	for _, q := range []int{-2, MaxQuantity + 1, math.MaxInt32} {
		t.Run(strconv.Itoa(q), func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: q})
			var iqErr *InvalidQuantityError
			require.ErrorAs(t, err, &iqErr)
			assert.Equal(t, q, iqErr.Quantity)

			_, err = f.svc.Remove(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: q})
			require.ErrorAs(t, err, &iqErr)
			assert.Empty(t, f.carts.saved)
			assert.Empty(t, f.carts.cart.Items)
		})
	}
}

func TestModify_MaxQuantity(t *testing.T) {
	f := newFixture()

	c, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: MaxQuantity})
	require.NoError(t, err)
	assert.Len(t, c.Items, MaxQuantity)
}

func TestModify_NotFoundBeforeQuantity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "nobody", ItemID: 1, Quantity: -1})
	require.ErrorIs(t, err, user.ErrNotFound)

	_, err = f.svc.Remove(context.Background(), ModifyRequest{Username: "username", ItemID: 42, Quantity: MaxQuantity + 1})
	require.ErrorIs(t, err, item.ErrNotFound)
}

func TestAdd_SaveError(t *testing.T) {
	f := newFixture()
	f.carts.saveErr = errors.New("db down")

	_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")
}

func TestRemove(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Add(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: 2})
	require.NoError(t, err)

	c, err := f.svc.Remove(context.Background(), ModifyRequest{Username: "username", ItemID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, decimal.Zero.Equal(c.Total()))
	assert.Len(t, f.carts.saved, 2)
}

func TestRemove_UnknownItem(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Remove(context.Background(), ModifyRequest{Username: "username", ItemID: 42, Quantity: 1})
	require.ErrorIs(t, err, item.ErrNotFound)
}

func TestRemove_UnknownUser(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Remove(context.Background(), ModifyRequest{Username: "nobody", ItemID: 1, Quantity: 1})
	require.ErrorIs(t, err, user.ErrNotFound)
}
