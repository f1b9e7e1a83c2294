package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RequiresCurrency(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(10), "")
	assert.Error(t, err)
}

func TestMoney_Add(t *testing.T) {
	a, _ := NewMoneyFromString("10.00", EUR)
	b, _ := NewMoneyFromString("5.50", EUR)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "15.50 EUR", sum.String())
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	a, _ := NewMoneyFromString("10.00", EUR)
	b, _ := NewMoneyFromString("5.50", USD)

	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestMoney_MinorUnits_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"10.00", 1000},
		{"0.005", 1},
		{"25.50", 2550},
		{"31.11", 3111},
		{"31.114999", 3111},
		{"31.115", 3112},
	}
	for _, tt := range tests {
		m, err := NewMoneyFromString(tt.amount, EUR)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.MinorUnits(), "amount %s", tt.amount)
	}
}

func TestMoney_MulRate_NoIntermediateRounding(t *testing.T) {
	// 25.50 * 1.22 = 31.11 exactly in decimal arithmetic
	subtotal, _ := NewMoneyFromString("25.50", EUR)
	rate, _ := decimal.NewFromString("1.22")

	total := subtotal.MulRate(rate)
	assert.Equal(t, int64(3111), total.MinorUnits())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m, _ := NewMoneyFromString("12.34", USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equals(got))
}
