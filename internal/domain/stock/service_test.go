package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/memory"
)

type fixture struct {
	store     *memory.Store
	batches   *memory.BatchRepository
	movements *memory.MovementRepository
	svc       *stock.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		batches:   memory.NewBatchRepository(store),
		movements: memory.NewMovementRepository(store),
	}
	f.svc = stock.NewService(f.batches, f.movements)
	return f
}

func (f *fixture) seed(t *testing.T, batchNo string, qty int, expire string) {
	t.Helper()
	var exp time.Time
	if expire != "" {
		var err error
		exp, err = time.Parse("2006-01-02", expire)
		require.NoError(t, err)
	}
	b, err := stock.NewBatch("P1", batchNo, qty, decimal.NewFromInt(2), decimal.NewFromInt(5), exp)
	require.NoError(t, err)
	require.NoError(t, f.batches.Create(context.Background(), b))
}

func (f *fixture) quantity(t *testing.T, batchNo string) int {
	t.Helper()
	b, err := f.batches.FindByBatchNo(context.Background(), "P1", batchNo)
	require.NoError(t, err)
	return b.CurrentQuantity
}

var ref = stock.Reference{Type: "sale", ID: "DSP1", CreatedBy: "amina"}

func TestServiceDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("跨批次按FEFO扣减", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "B1", 3, "2025-01-01")
		f.seed(t, "B2", 10, "2025-06-01")

		var d *stock.Deduction
		err := f.store.Transaction(ctx, func(ctx context.Context) error {
			var err error
			d, err = f.svc.Deduct(ctx, "P1", 5, stock.ChangeDispense, ref)
			return err
		})
		require.NoError(t, err)

		assert.Equal(t, 0, f.quantity(t, "B1"))
		assert.Equal(t, 8, f.quantity(t, "B2"))
		assert.Equal(t, 8, d.Remaining)
		assert.Equal(t, 5, stock.SumAllocated(d.Allocations))

		moves, total, err := f.movements.ListByProduct(ctx, "P1", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, m := range moves {
			assert.Equal(t, stock.ChangeDispense, m.ChangeType)
			assert.Equal(t, m.BeforeQuantity+m.Quantity, m.AfterQuantity)
			assert.Equal(t, "DSP1", m.ReferenceID)
		}
	})

	t.Run("库存不足时不做任何修改", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "B1", 3, "2025-01-01")
		f.seed(t, "B2", 10, "2025-06-01")

		err := f.store.Transaction(ctx, func(ctx context.Context) error {
			_, err := f.svc.Deduct(ctx, "P1", 14, stock.ChangeDispense, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrInsufficientStock)
		assert.Equal(t, 3, f.quantity(t, "B1"))
		assert.Equal(t, 10, f.quantity(t, "B2"))

		_, total, err := f.movements.ListByProduct(ctx, "P1", 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("没有批次的药品", func(t *testing.T) {
		f := newFixture(t)
		err := f.store.Transaction(ctx, func(ctx context.Context) error {
			_, err := f.svc.Deduct(ctx, "NOPE", 1, stock.ChangeDispense, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "product NOPE")
	})
}

func TestServiceRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "B1", 3, "2025-01-01")
	f.seed(t, "B2", 10, "2025-06-01")

	err := f.store.Transaction(ctx, func(ctx context.Context) error {
		d, err := f.svc.Deduct(ctx, "P1", 6, stock.ChangeWholesale, ref)
		if err != nil {
			return err
		}
		return f.svc.Release(ctx, "P1", d.Allocations, ref)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, f.quantity(t, "B1"))
	assert.Equal(t, 10, f.quantity(t, "B2"))
}

func TestServiceAdjust(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "B1", 3, "")

	var applied int
	err := f.store.Transaction(ctx, func(ctx context.Context) error {
		b, err := f.batches.LockByBatchNo(ctx, "P1", "B1")
		if err != nil {
			return err
		}
		applied, err = f.svc.Adjust(ctx, b, -5, stock.ChangeAdjust, ref)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, -3, applied, "减少量截断到现有库存")
	assert.Equal(t, 0, f.quantity(t, "B1"))
}

func TestServiceReceive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt := stock.Receipt{
		ProductID:    "P1",
		BatchNo:      "B9",
		Quantity:     20,
		BuyingPrice:  decimal.NewFromInt(2),
		ProductPrice: decimal.NewFromInt(4),
	}
	err := f.store.Transaction(ctx, func(ctx context.Context) error {
		_, err := f.svc.Receive(ctx, receipt, ref)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 20, f.quantity(t, "B9"))

	// 同批号再次入库累加并刷新售价
	receipt.Quantity = 5
	receipt.ProductPrice = decimal.NewFromInt(6)
	var b *stock.Batch
	err = f.store.Transaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = f.svc.Receive(ctx, receipt, ref)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 25, b.CurrentQuantity)
	assert.Equal(t, 25, f.quantity(t, "B9"))

	stored, err := f.batches.FindByBatchNo(ctx, "P1", "B9")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6).Equal(stored.ProductPrice))
}

func TestServiceStockTake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "B1", 10, "")

	var diff int
	err := f.store.Transaction(ctx, func(ctx context.Context) error {
		var err error
		_, diff, err = f.svc.StockTake(ctx, "P1", "B1", 7, ref)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, -3, diff)
	assert.Equal(t, 7, f.quantity(t, "B1"))

	err = f.store.Transaction(ctx, func(ctx context.Context) error {
		_, _, err := f.svc.StockTake(ctx, "P1", "MISSING", 1, ref)
		return err
	})
	assert.ErrorIs(t, err, stock.ErrBatchNotFound)
}

func TestServiceQuantityLimits(t *testing.T) {
	ctx := context.Background()
	inTx := func(f *fixture, fn func(ctx context.Context) error) error {
		return f.store.Transaction(ctx, fn)
	}

	t.Run("单次数量超过上限", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "B1", 10, "")

		err := inTx(f, func(ctx context.Context) error {
			_, err := f.svc.Receive(ctx, stock.Receipt{ProductID: "P1", BatchNo: "B1", Quantity: stock.MaxQuantity + 1}, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrQuantityTooLarge)

		err = inTx(f, func(ctx context.Context) error {
			_, err := f.svc.Deduct(ctx, "P1", stock.MaxQuantity+1, stock.ChangeDispense, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrQuantityTooLarge)
		assert.Equal(t, 10, f.quantity(t, "B1"))
	})

	t.Run("累加超过单批次上限", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "B1", stock.MaxBatchQuantity-5, "")

		err := inTx(f, func(ctx context.Context) error {
			_, err := f.svc.Receive(ctx, stock.Receipt{ProductID: "P1", BatchNo: "B1", Quantity: 10}, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrBatchCapacity)
		assert.Equal(t, stock.MaxBatchQuantity-5, f.quantity(t, "B1"))

		err = inTx(f, func(ctx context.Context) error {
			b, err := f.batches.LockByBatchNo(ctx, "P1", "B1")
			if err != nil {
				return err
			}
			_, err = f.svc.Adjust(ctx, b, 6, stock.ChangeAdjust, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrBatchCapacity)

		err = inTx(f, func(ctx context.Context) error {
			_, _, err := f.svc.StockTake(ctx, "P1", "B1", stock.MaxBatchQuantity+1, ref)
			return err
		})
		assert.ErrorIs(t, err, stock.ErrBatchCapacity)

		// 正好到上限可以
		err = inTx(f, func(ctx context.Context) error {
			_, err := f.svc.Receive(ctx, stock.Receipt{ProductID: "P1", BatchNo: "B1", Quantity: 5}, ref)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, stock.MaxBatchQuantity, f.quantity(t, "B1"))
	})
}
