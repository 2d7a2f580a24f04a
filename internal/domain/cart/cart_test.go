package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-api/internal/domain/item"
)

func newTestItem(id int64, price string) item.Item {
	return item.Item{ID: id, Name: "Item", Price: decimal.RequireFromString(price)}
}

func itemIDs(c *Cart) []int64 {
	ids := make([]int64, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ID
	}
	return ids
}

func TestCart_AddItem(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 1))
	require.NoError(t, c.AddItem(newTestItem(2, "20"), 1))
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 1))

	assert.Equal(t, []int64{1, 2, 1}, itemIDs(c))
	assert.True(t, decimal.RequireFromString("40").Equal(c.Total()))
}

func TestCart_AddItemQuantity(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "2.50"), 4))

	assert.Len(t, c.Items, 4)
	assert.True(t, decimal.RequireFromString("10").Equal(c.Total()))
}

func TestCart_AddItemZeroQuantity(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 0))
	assert.Empty(t, c.Items)
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCart_NegativeQuantity(t *testing.T) {
	c := &Cart{Items: []item.Item{newTestItem(1, "10")}}

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, c.AddItem(newTestItem(1, "10"), -1), &iqErr)
	assert.Equal(t, -1, iqErr.Quantity)
	require.ErrorAs(t, c.RemoveItem(newTestItem(1, "10"), -3), &iqErr)
	assert.Equal(t, []int64{1}, itemIDs(c))
}

func TestCart_QuantityAboveMax(t *testing.T) {
	c := &Cart{Items: []item.Item{newTestItem(1, "10")}}

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, c.AddItem(newTestItem(1, "10"), MaxQuantity+1), &iqErr)
	assert.Equal(t, MaxQuantity+1, iqErr.Quantity)
	require.ErrorAs(t, c.RemoveItem(newTestItem(1, "10"), MaxQuantity+1), &iqErr)
	assert.Equal(t, []int64{1}, itemIDs(c))

	require.NoError(t, c.AddItem(newTestItem(1, "10"), MaxQuantity))
	assert.Len(t, c.Items, MaxQuantity+1)
}

func TestCart_RemoveItem(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 3))
	require.NoError(t, c.AddItem(newTestItem(2, "20"), 1))

	require.NoError(t, c.RemoveItem(newTestItem(1, "10"), 2))
	assert.Equal(t, []int64{1, 2}, itemIDs(c))
	assert.True(t, decimal.RequireFromString("30").Equal(c.Total()))
}

func TestCart_RemoveMoreThanPresent(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 2))
	require.NoError(t, c.AddItem(newTestItem(2, "20"), 1))

	require.NoError(t, c.RemoveItem(newTestItem(1, "10"), 5))
	assert.Equal(t, []int64{2}, itemIDs(c))
	assert.True(t, decimal.RequireFromString("20").Equal(c.Total()))
}

func TestCart_RemoveAbsentItem(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(newTestItem(1, "10"), 1))

	require.NoError(t, c.RemoveItem(newTestItem(9, "1"), 1))
	assert.Equal(t, []int64{1}, itemIDs(c))
}

func TestCart_AddThenRemoveRestoresCart(t *testing.T) {
	for _, tc := range []struct {
		name     string
		initial  []item.Item
		quantity int
	}{
		{name: "Empty", quantity: 5},
		{name: "Interleaved", initial: []item.Item{newTestItem(1, "10"), newTestItem(2, "20")}, quantity: 2},
		{name: "Zero", initial: []item.Item{newTestItem(1, "10")}, quantity: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &Cart{Items: append([]item.Item(nil), tc.initial...)}
			before := itemIDs(c)
			total := c.Total()

			x := newTestItem(1, "10")
			require.NoError(t, c.AddItem(x, tc.quantity))
			require.NoError(t, c.RemoveItem(x, tc.quantity))

			assert.Equal(t, before, itemIDs(c))
			assert.True(t, total.Equal(c.Total()))
		})
	}
}
