package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func price(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(amount, valueobject.EUR)
	require.NoError(t, err)
	return m
}

func TestCart_AddItem_MergesQuantity(t *testing.T) {
	c := NewUserCart(uuid.New())
	productID := uuid.New()

	require.NoError(t, c.AddItem(productID, "SKU-1", "Cup", price(t, "12.50"), 2))
	require.NoError(t, c.AddItem(productID, "SKU-1", "Cup", price(t, "12.50"), 3))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.TotalQuantity())
}

func TestCart_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	c := NewUserCart(uuid.New())

	assert.Error(t, c.AddItem(uuid.New(), "SKU-1", "Cup", price(t, "1.00"), 0))
	assert.Error(t, c.AddItem(uuid.New(), "SKU-1", "Cup", price(t, "1.00"), -1))
	assert.True(t, c.IsEmpty())
}

func TestCart_Subtotal(t *testing.T) {
	c := NewUserCart(uuid.New())
	require.NoError(t, c.AddItem(uuid.New(), "SKU-1", "Cup", price(t, "20.00"), 1))
	require.NoError(t, c.AddItem(uuid.New(), "SKU-2", "Saucer", price(t, "2.75"), 2))

	total, err := c.Subtotal()
	require.NoError(t, err)
	assert.Equal(t, "25.50 EUR", total.String())
}

func TestCart_Subtotal_Empty(t *testing.T) {
	c := NewUserCart(uuid.New())
	total, err := c.Subtotal()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := NewUserCart(uuid.New())
	productID := uuid.New()
	require.NoError(t, c.AddItem(productID, "SKU-1", "Cup", price(t, "1.00"), 2))

	require.NoError(t, c.UpdateQuantity(productID, 7))
	assert.Equal(t, 7, c.Items[0].Quantity)

	require.NoError(t, c.UpdateQuantity(productID, 0))
	assert.True(t, c.IsEmpty())

	assert.Error(t, c.UpdateQuantity(uuid.New(), 1))
}

func TestCart_Clear(t *testing.T) {
	c := NewUserCart(uuid.New())
	require.NoError(t, c.AddItem(uuid.New(), "SKU-1", "Cup", price(t, "1.00"), 1))

	c.Clear()
	assert.True(t, c.IsEmpty())
}

func TestNewGuestCart_RequiresToken(t *testing.T) {
	_, err := NewGuestCart("")
	assert.Error(t, err)

	c, err := NewGuestCart("guest-abc")
	require.NoError(t, err)
	assert.Nil(t, c.UserID)
}

func TestIdentity_Matches(t *testing.T) {
	userID := uuid.New()
	userCart := NewUserCart(userID)
	guestCart, err := NewGuestCart("guest-abc")
	require.NoError(t, err)

	assert.True(t, UserIdentity(userID).Matches(userCart))
	assert.False(t, UserIdentity(uuid.New()).Matches(userCart))

	guest, err := GuestIdentity("guest-abc")
	require.NoError(t, err)
	assert.True(t, guest.Matches(guestCart))
	assert.False(t, guest.Matches(userCart))
}
