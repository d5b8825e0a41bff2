package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func batch(id uint, no string, qty int, expire string) *Batch {
	b := &Batch{
		ID:              id,
		ProductID:       "P1",
		BatchNo:         no,
		CurrentQuantity: qty,
		BuyingPrice:     decimal.NewFromInt(2),
		ProductPrice:    decimal.NewFromInt(5),
	}
	if expire != "" {
		b.ExpireDate = day(expire)
	}
	return b
}

func TestPlanFEFO(t *testing.T) {
	t.Run("先到期的批次先扣", func(t *testing.T) {
		batches := []*Batch{
			batch(2, "B2", 10, "2025-06-01"),
			batch(1, "B1", 3, "2025-01-01"),
		}

		allocations, err := PlanFEFO(batches, 5)
		require.NoError(t, err)
		require.Len(t, allocations, 2)

		assert.Equal(t, "B1", allocations[0].BatchNo)
		assert.Equal(t, 3, allocations[0].Quantity)
		assert.Equal(t, "B2", allocations[1].BatchNo)
		assert.Equal(t, 2, allocations[1].Quantity)
		assert.Equal(t, 5, SumAllocated(allocations))

		// 纯函数,不修改入参
		assert.Equal(t, 10, batches[0].CurrentQuantity)
		assert.Equal(t, "B2", batches[0].BatchNo)
	})

	t.Run("单批足够时只扣一个批次", func(t *testing.T) {
		batches := []*Batch{
			batch(1, "B1", 3, "2025-01-01"),
			batch(2, "B2", 10, "2025-06-01"),
		}
		allocations, err := PlanFEFO(batches, 2)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, "B1", allocations[0].BatchNo)
	})

	t.Run("无有效期排最后,同日按批号", func(t *testing.T) {
		batches := []*Batch{
			batch(1, "NOEXP", 5, ""),
			batch(2, "B-Z", 1, "2025-03-01"),
			batch(3, "B-A", 1, "2025-03-01"),
		}
		allocations, err := PlanFEFO(batches, 4)
		require.NoError(t, err)

		var order []string
		for _, a := range allocations {
			order = append(order, a.BatchNo)
		}
		assert.Equal(t, []string{"B-A", "B-Z", "NOEXP"}, order)
	})

	t.Run("跳过空批次", func(t *testing.T) {
		batches := []*Batch{
			batch(1, "B1", 0, "2025-01-01"),
			batch(2, "B2", 4, "2025-06-01"),
		}
		allocations, err := PlanFEFO(batches, 4)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, "B2", allocations[0].BatchNo)
	})

	t.Run("库存不足不给出任何分配", func(t *testing.T) {
		batches := []*Batch{
			batch(1, "B1", 3, "2025-01-01"),
			batch(2, "B2", 10, "2025-06-01"),
		}
		allocations, err := PlanFEFO(batches, 14)
		assert.Nil(t, allocations)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		appErr := apperrors.GetAppError(err)
		assert.Contains(t, appErr.Message, "requested 14, available 13")
	})

	t.Run("数量必须大于0", func(t *testing.T) {
		_, err := PlanFEFO([]*Batch{batch(1, "B1", 3, "")}, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestBatchClampDelta(t *testing.T) {
	b := batch(1, "B1", 3, "")

	assert.Equal(t, -3, b.ClampDelta(-5))
	assert.Equal(t, -2, b.ClampDelta(-2))
	assert.Equal(t, 7, b.ClampDelta(7))
}

func TestBatchIsExpired(t *testing.T) {
	b := batch(1, "B1", 3, "2025-01-01")

	assert.False(t, b.IsExpired(day("2025-01-01").Add(23*time.Hour)), "有效期当天仍可用")
	assert.True(t, b.IsExpired(day("2025-01-02")))
	assert.False(t, batch(2, "B2", 1, "").IsExpired(day("2099-01-01")))
}

func TestNewBatch(t *testing.T) {
	_, err := NewBatch("", "B1", 1, decimal.Zero, decimal.Zero, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidBatch)

	_, err = NewBatch("P1", "B1", -1, decimal.Zero, decimal.Zero, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewBatch("P1", "B1", 1, decimal.NewFromInt(-1), decimal.Zero, time.Time{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))

	b, err := NewBatch("P1", "B1", 1, decimal.NewFromInt(1), decimal.NewFromInt(2), day("2026-01-01"))
	require.NoError(t, err)
	assert.True(t, b.HasExpiry())
}
