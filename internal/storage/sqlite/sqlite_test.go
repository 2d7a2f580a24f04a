package sqlite

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
	"github.com/xenking/shop-api/internal/domain/user"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, RunMigrations(ctx, conn))
	return conn
}

func createItem(t *testing.T, repo *ItemRepository, name, price string) item.Item {
	t.Helper()

	it := item.Item{Name: name, Description: name + " description", Price: decimal.RequireFromString(price)}
	require.NoError(t, repo.Create(context.Background(), &it))
	return it
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(openTestDB(t))

	first := createItem(t, repo, "Round Widget", "2.99")
	second := createItem(t, repo, "Square Widget", "1.99")
	third := createItem(t, repo, "Round Widget", "3.49")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Square Widget", got.Name)
	assert.True(t, decimal.RequireFromString("1.99").Equal(got.Price))

	_, err = repo.GetByID(ctx, 999)
	require.ErrorIs(t, err, item.ErrNotFound)

	byName, err := repo.FindByName(ctx, "Round Widget")
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, first.ID, byName[0].ID)
	assert.Equal(t, third.ID, byName[1].ID)

	none, err := repo.FindByName(ctx, "Missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	u := &user.User{Username: "username", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)
	assert.NotZero(t, u.CartID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, *u, *byID)

	byName, err := repo.GetByUsername(ctx, "username")
	require.NoError(t, err)
	assert.Equal(t, *u, *byName)

	_, err = repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, user.ErrNotFound)
	_, err = repo.GetByID(ctx, u.ID+1)
	require.ErrorIs(t, err, user.ErrNotFound)

	err = repo.Create(ctx, &user.User{Username: "username", PasswordHash: "other"})
	require.ErrorIs(t, err, user.ErrUsernameTaken)
}

func TestCartRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	items := NewItemRepository(conn)
	users := NewUserRepository(conn)
	carts := NewCartRepository(conn)

	a := createItem(t, items, "A", "10")
	b := createItem(t, items, "B", "20")

	u := &user.User{Username: "username", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, u))

	c, err := carts.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.CartID, c.ID)
	assert.Empty(t, c.Items)

	require.NoError(t, c.AddItem(a, 1))
	require.NoError(t, c.AddItem(b, 1))
	require.NoError(t, c.AddItem(a, 1))
	require.NoError(t, carts.Save(ctx, c))

	loaded, err := carts.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 3)
	assert.Equal(t, []int64{a.ID, b.ID, a.ID}, []int64{loaded.Items[0].ID, loaded.Items[1].ID, loaded.Items[2].ID})
	assert.True(t, decimal.RequireFromString("40").Equal(loaded.Total()))

	require.NoError(t, loaded.RemoveItem(a, 5))
	require.NoError(t, carts.Save(ctx, loaded))

	loaded, err = carts.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, b.ID, loaded.Items[0].ID)

	_, err = carts.GetByUserID(ctx, u.ID+1)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	items := NewItemRepository(conn)
	users := NewUserRepository(conn)
	orders := NewOrderRepository(conn)

	a := createItem(t, items, "A", "10")
	b := createItem(t, items, "B", "20")

	u := &user.User{Username: "username", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, u))
	other := &user.User{Username: "other", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, other))

	c := &cart.Cart{ID: u.CartID, UserID: u.ID, Items: []item.Item{a, b, a}}
	first := order.NewFromCart(u, c)
	require.NoError(t, orders.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := order.NewFromCart(u, &cart.Cart{ID: u.CartID, UserID: u.ID})
	require.NoError(t, orders.Create(ctx, second))

	history, err := orders.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, "username", history[0].Username)
	require.Len(t, history[0].Items, 3)
	assert.Equal(t, a.ID, history[0].Items[0].ID)
	assert.Equal(t, b.ID, history[0].Items[1].ID)
	assert.Equal(t, "A", history[0].Items[2].Name)
	assert.True(t, decimal.RequireFromString("40").Equal(history[0].Total))

	assert.Equal(t, second.ID, history[1].ID)
	assert.Empty(t, history[1].Items)
	assert.True(t, decimal.Zero.Equal(history[1].Total))

	none, err := orders.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItemRepository_QueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta(listItemsSQL)).WillReturnError(errors.New("disk I/O error"))

	_, err = NewItemRepository(conn).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing items")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(createUserSQL)).
		WithArgs("username", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta(createCartSQL)).
		WithArgs(int64(5)).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewUserRepository(conn).Create(context.Background(), &user.User{Username: "username", PasswordHash: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(clearCartSQL)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare(regexp.QuoteMeta(insertCartItemSQL)).
		ExpectExec().
		WithArgs(int64(3), 0, int64(1)).
		WillReturnError(errors.New("foreign key mismatch"))
	mock.ExpectRollback()

	c := &cart.Cart{ID: 3, UserID: 7, Items: []item.Item{{ID: 1, Price: decimal.NewFromInt(1)}}}
	err = NewCartRepository(conn).Save(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving cart 3")
	require.NoError(t, mock.ExpectationsWereMet())
}
