package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string          `json:"name" binding:"required,max=5"`
	Quantity int             `json:"quantity" binding:"min=1"`
	Price    decimal.Decimal `json:"price" binding:"dgte0"`
	Amount   decimal.Decimal `json:"amount" binding:"dgt0"`
	Expire   string          `json:"expire_date" binding:"omitempty,date"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	Setup(v)
	return v
}

func TestValidRequest(t *testing.T) {
	err := newValidate().Struct(sample{
		Name:     "abc",
		Quantity: 1,
		Price:    decimal.Zero,
		Amount:   decimal.RequireFromString("0.01"),
		Expire:   "2025-06-30",
	})
	assert.NoError(t, err)
}

func TestFieldMessages(t *testing.T) {
	err := newValidate().Struct(sample{
		Name:     "toolong",
		Quantity: 0,
		Price:    decimal.NewFromInt(-1),
		Amount:   decimal.Zero,
		Expire:   "30/06/2025",
	})
	require.Error(t, err)

	fields := Fields(err)
	assert.Equal(t, "The name may not be greater than 5 characters.", fields["name"])
	assert.Equal(t, "The quantity must be at least 1.", fields["quantity"])
	assert.Equal(t, "The price must be at least 0.", fields["price"])
	assert.Equal(t, "The amount must be greater than 0.", fields["amount"])
	assert.Equal(t, "The expire_date is not a valid date (YYYY-MM-DD).", fields["expire_date"])
}

func TestRequired(t *testing.T) {
	err := newValidate().Struct(sample{Quantity: 1, Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"name": "The name field is required."}, Fields(err))
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(assert.AnError))
}
