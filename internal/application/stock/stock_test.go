package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/memory"
)

type keyRecorder struct{ keys []string }

func (r *keyRecorder) Publish(_ context.Context, key string, _ any) error {
	r.keys = append(r.keys, key)
	return nil
}

type env struct {
	store     *memory.Store
	medicines *memory.MedicineRepository
	batches   *memory.BatchRepository
	movements *memory.MovementRepository
	svc       *stock.Service
	publisher *keyRecorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		store:     store,
		medicines: memory.NewMedicineRepository(store),
		batches:   memory.NewBatchRepository(store),
		movements: memory.NewMovementRepository(store),
		publisher: &keyRecorder{},
	}
	e.svc = stock.NewService(e.batches, e.movements)

	m, err := medicine.NewMedicine("P1", "Paracetamol 500mg", "analgesic", "box", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, e.medicines.Create(context.Background(), m))
	return e
}

func TestReceive(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	uc := NewReceiveUseCase(e.medicines, e.svc, e.store, e.publisher)
	expire := time.Now().AddDate(0, 0, 10)

	dto, err := uc.Execute(ctx, ReceiveRequest{
		ProductID:    "P1",
		BatchNo:      "B1",
		Quantity:     10,
		BuyingPrice:  decimal.NewFromInt(2),
		ProductPrice: decimal.NewFromInt(5),
		ExpireDate:   expire,
		CreatedBy:    "amina",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, dto.CurrentQuantity)
	require.NotNil(t, dto.DaysToExpiry)
	assert.Equal(t, 10, *dto.DaysToExpiry)
	assert.False(t, dto.Expired)

	// 同批号再次入库累加
	dto, err = uc.Execute(ctx, ReceiveRequest{
		ProductID:    "P1",
		BatchNo:      "B1",
		Quantity:     5,
		BuyingPrice:  decimal.NewFromInt(3),
		ProductPrice: decimal.NewFromInt(6),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, dto.CurrentQuantity)
	assert.True(t, decimal.NewFromInt(6).Equal(dto.ProductPrice))
	assert.Equal(t, []string{event.StockReceived, event.StockReceived}, e.publisher.keys)

	_, err = uc.Execute(ctx, ReceiveRequest{ProductID: "UNKNOWN", BatchNo: "B1", Quantity: 1})
	assert.ErrorIs(t, err, medicine.ErrMedicineNotFound)

	_, err = uc.Execute(ctx, ReceiveRequest{ProductID: "P1", BatchNo: "B2", Quantity: 0})
	assert.ErrorIs(t, err, stock.ErrInvalidQuantity)
}

func TestStockTake(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b, err := stock.NewBatch("P1", "B1", 10, decimal.NewFromInt(2), decimal.NewFromInt(5), time.Time{})
	require.NoError(t, err)
	require.NoError(t, e.batches.Create(ctx, b))

	uc := NewStockTakeUseCase(e.svc, e.batches, e.store, e.publisher, 5)

	resp, err := uc.Execute(ctx, StockTakeRequest{ProductID: "P1", BatchNo: "B1", CountedQuantity: 4, Reason: "monthly count"})
	require.NoError(t, err)
	assert.Equal(t, -6, resp.Difference)
	assert.Equal(t, 4, resp.Batch.CurrentQuantity)
	assert.Equal(t, []string{event.StockReceived, event.StockLow}, e.publisher.keys)

	// 账实相符不写流水
	resp, err = uc.Execute(ctx, StockTakeRequest{ProductID: "P1", BatchNo: "B1", CountedQuantity: 4})
	require.NoError(t, err)
	assert.Zero(t, resp.Difference)

	moves, err := NewMovementsUseCase(e.movements).Execute(ctx, "P1", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moves.Total)
	assert.Equal(t, string(stock.ChangeStockTake), moves.List[0].ChangeType)
	assert.Equal(t, 10, moves.List[0].BeforeQuantity)
	assert.Equal(t, 4, moves.List[0].AfterQuantity)

	_, err = uc.Execute(ctx, StockTakeRequest{ProductID: "P1", BatchNo: "NOPE", CountedQuantity: 1})
	assert.ErrorIs(t, err, stock.ErrBatchNotFound)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	now := time.Now()

	seed := func(batchNo string, qty int, expire time.Time) {
		b, err := stock.NewBatch("P1", batchNo, qty, decimal.NewFromInt(2), decimal.NewFromInt(5), expire)
		require.NoError(t, err)
		require.NoError(t, e.batches.Create(ctx, b))
	}
	seed("LATE", 4, now.AddDate(0, 6, 0))
	seed("SOON", 3, now.AddDate(0, 0, 5))
	seed("GONE", 2, now.AddDate(0, 0, -3))
	seed("EMPTY", 0, now.AddDate(0, 0, 1))

	t.Run("药品库存按FEFO返回", func(t *testing.T) {
		ps, err := NewProductStockUseCase(e.medicines, e.batches).Execute(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, 9, ps.TotalQuantity)
		assert.Equal(t, "Paracetamol 500mg", ps.Name)
		require.Len(t, ps.Batches, 4)
		assert.Equal(t, "GONE", ps.Batches[0].BatchNo)
		assert.True(t, ps.Batches[0].Expired)

		_, err = NewProductStockUseCase(e.medicines, e.batches).Execute(ctx, "UNKNOWN")
		assert.ErrorIs(t, err, medicine.ErrMedicineNotFound)
	})

	t.Run("临期批次含已过期,不含空批次", func(t *testing.T) {
		list, err := NewExpiringUseCase(e.batches, 30).Execute(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "GONE", list[0].BatchNo)
		assert.Equal(t, "SOON", list[1].BatchNo)
	})

	t.Run("批次列表默认不含空批次", func(t *testing.T) {
		resp, err := NewListBatchesUseCase(e.batches).Execute(ctx, ListBatchesRequest{ProductID: "P1"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, resp.Total)

		resp, err = NewListBatchesUseCase(e.batches).Execute(ctx, ListBatchesRequest{ProductID: "P1", IncludeEmpty: true})
		require.NoError(t, err)
		assert.EqualValues(t, 4, resp.Total)
	})
}
