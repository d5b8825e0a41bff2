package medicine

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMedicine(t *testing.T) {
	m, err := NewMedicine(" P1 ", "Paracetamol 500mg", "analgesic", "box", decimal.RequireFromString("3.50"))
	require.NoError(t, err)
	assert.Equal(t, "P1", m.ProductID)
	assert.False(t, m.CreatedAt.IsZero())

	_, err = NewMedicine("", "x", "", "", decimal.Zero)
	assert.Equal(t, ErrInvalidProductID, err)

	_, err = NewMedicine(strings.Repeat("p", 65), "x", "", "", decimal.Zero)
	assert.Equal(t, ErrInvalidProductID, err)

	_, err = NewMedicine("P1", "", "", "", decimal.Zero)
	assert.Equal(t, ErrInvalidName, err)

	_, err = NewMedicine("P1", "x", "", "", decimal.NewFromInt(-1))
	assert.Equal(t, ErrInvalidPrice, err)
}

func TestApply(t *testing.T) {
	m, err := NewMedicine("P1", "Paracetamol", "analgesic", "box", decimal.NewFromInt(3))
	require.NoError(t, err)

	name := "Paracetamol 500mg"
	price := decimal.RequireFromString("4.25")
	require.NoError(t, m.Apply(Patch{Name: &name, Price: &price}))

	assert.Equal(t, "Paracetamol 500mg", m.Name)
	assert.Equal(t, "analgesic", m.Category)
	assert.True(t, price.Equal(m.Price))

	negative := decimal.NewFromInt(-1)
	assert.Equal(t, ErrInvalidPrice, m.Apply(Patch{Price: &negative}))
}
