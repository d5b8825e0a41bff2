package dispense

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{ProductID: "P1", Quantity: 1, PaymentID: "PAY-1", TotalPrice: decimal.NewFromInt(5)}
	assert.NoError(t, valid.Validate())

	r := valid
	r.ProductID = " "
	assert.Equal(t, ErrProductRequired, r.Validate())

	r = valid
	r.Quantity = 0
	assert.Equal(t, ErrInvalidQuantity, r.Validate())

	r = valid
	r.PaymentID = ""
	assert.Equal(t, ErrPaymentIDRequired, r.Validate())

	r = valid
	r.TotalPrice = decimal.NewFromInt(-1)
	assert.Equal(t, ErrInvalidTotalPrice, r.Validate())
}

func TestNewSale(t *testing.T) {
	req := Request{
		ProductID:  "P1",
		Quantity:   5,
		PaymentID:  "PAY-1",
		PatientID:  "PT-9",
		TotalPrice: decimal.RequireFromString("26"),
		CreatedBy:  "amina",
	}
	allocations := []stock.Allocation{
		{BatchNo: "B1", Quantity: 3, BuyingPrice: decimal.NewFromInt(2), ProductPrice: decimal.NewFromInt(5)},
		{BatchNo: "B2", Quantity: 2, BuyingPrice: decimal.NewFromInt(3), ProductPrice: decimal.NewFromInt(6)},
	}

	saleNo := GenerateSaleNo()
	s := NewSale(saleNo, req, allocations)

	assert.True(t, strings.HasPrefix(s.SaleNo, "DSP"))
	assert.Equal(t, saleNo, s.SaleNo)
	assert.Len(t, s.Items, 2)
	// (3*5 + 2*6) / 5 = 5.4
	assert.True(t, decimal.RequireFromString("5.4").Equal(s.UnitPrice))
	assert.True(t, decimal.RequireFromString("12").Equal(s.CostOfGoods()))
	assert.True(t, req.TotalPrice.Equal(s.TotalPrice))

	approval := s.Approval()
	assert.Equal(t, "PAY-1", approval.PaymentID)
	assert.Equal(t, "PT-9", approval.PatientID)
	assert.Equal(t, s.SaleNo, approval.SaleNo)
}
