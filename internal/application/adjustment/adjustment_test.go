package adjustment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/memory"
)

type keyRecorder struct{ keys []string }

func (r *keyRecorder) Publish(_ context.Context, key string, _ any) error {
	r.keys = append(r.keys, key)
	return nil
}

type env struct {
	batches   *memory.BatchRepository
	movements *memory.MovementRepository
	repo      *memory.AdjustmentRepository
	publisher *keyRecorder
	create    *CreateAdjustmentUseCase
	delete    *DeleteAdjustmentUseCase
}

func newEnv(t *testing.T, qty int) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		batches:   memory.NewBatchRepository(store),
		movements: memory.NewMovementRepository(store),
		repo:      memory.NewAdjustmentRepository(store),
		publisher: &keyRecorder{},
	}
	svc := stock.NewService(e.batches, e.movements)
	e.create = NewCreateAdjustmentUseCase(e.repo, e.batches, svc, store, e.publisher, 5)
	e.delete = NewDeleteAdjustmentUseCase(e.repo, e.batches, svc, store, e.publisher)

	b, err := stock.NewBatch("P1", "B1", qty, decimal.NewFromInt(1), decimal.NewFromInt(2), time.Time{})
	require.NoError(t, err)
	require.NoError(t, e.batches.Create(context.Background(), b))
	return e
}

func (e *env) quantity(t *testing.T) int {
	t.Helper()
	b, err := e.batches.FindByBatchNo(context.Background(), "P1", "B1")
	require.NoError(t, err)
	return b.CurrentQuantity
}

func req(typ string, qty int) CreateAdjustmentRequest {
	return CreateAdjustmentRequest{
		ProductID:        "P1",
		BatchNo:          "B1",
		AdjustmentType:   typ,
		QuantityAdjusted: qty,
		Reason:           "count",
		CreatedBy:        "amina",
	}
}

func TestCreateAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("增加", func(t *testing.T) {
		e := newEnv(t, 3)
		dto, err := e.create.Execute(ctx, req("increase", 4))
		require.NoError(t, err)
		assert.Equal(t, 4, dto.AppliedDelta)
		assert.False(t, dto.Clamped)
		require.NotNil(t, dto.CurrentQuantity)
		assert.Equal(t, 7, *dto.CurrentQuantity)
		assert.Equal(t, 7, e.quantity(t))
	})

	t.Run("减少超过库存时截断到0", func(t *testing.T) {
		e := newEnv(t, 3)
		dto, err := e.create.Execute(ctx, req("decrease", 5))
		require.NoError(t, err)
		assert.Equal(t, -3, dto.AppliedDelta)
		assert.True(t, dto.Clamped)
		assert.Equal(t, 0, e.quantity(t))

		stored, err := e.repo.FindByID(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, -3, stored.AppliedDelta)
		assert.Equal(t, []string{event.StockAdjusted, event.StockLow}, e.publisher.keys)
	})

	t.Run("调拨必须有目的地", func(t *testing.T) {
		e := newEnv(t, 3)
		_, err := e.create.Execute(ctx, req("transfer", 1))
		assert.ErrorIs(t, err, adjustment.ErrDestinationRequired)
		assert.Equal(t, 3, e.quantity(t))
	})

	t.Run("批次不存在", func(t *testing.T) {
		e := newEnv(t, 3)
		r := req("decrease", 1)
		r.BatchNo = "NOPE"
		_, err := e.create.Execute(ctx, r)
		assert.ErrorIs(t, err, stock.ErrBatchNotFound)

		_, total, err := e.repo.List(ctx, adjustment.ListParams{})
		require.NoError(t, err)
		assert.Zero(t, total, "失败时不留下调整记录")
	})

	t.Run("非法类型", func(t *testing.T) {
		e := newEnv(t, 3)
		_, err := e.create.Execute(ctx, req("theft", 1))
		assert.ErrorIs(t, err, adjustment.ErrInvalidType)
	})
}

func TestDeleteAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("按实际生效量回补", func(t *testing.T) {
		e := newEnv(t, 3)
		dto, err := e.create.Execute(ctx, req("decrease", 5))
		require.NoError(t, err)

		resp, err := e.delete.Execute(ctx, dto.ID, "")
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Reversed)
		assert.Equal(t, 3, e.quantity(t))

		_, err = e.repo.FindByID(ctx, dto.ID)
		assert.ErrorIs(t, err, adjustment.ErrAdjustmentNotFound)

		_, err = e.delete.Execute(ctx, dto.ID, "")
		assert.ErrorIs(t, err, adjustment.ErrAdjustmentNotFound, "不能重复撤销")
	})

	t.Run("撤销增加时库存已被用掉则截断", func(t *testing.T) {
		e := newEnv(t, 0)
		dto, err := e.create.Execute(ctx, req("increase", 5))
		require.NoError(t, err)
		_, err = e.create.Execute(ctx, req("decrease", 4))
		require.NoError(t, err)

		resp, err := e.delete.Execute(ctx, dto.ID, "juma")
		require.NoError(t, err)
		assert.Equal(t, -1, resp.Reversed)
		assert.Equal(t, 0, e.quantity(t))
	})

	t.Run("流水记录每次变动", func(t *testing.T) {
		e := newEnv(t, 10)
		dto, err := e.create.Execute(ctx, req("donation", 2))
		require.NoError(t, err)
		_, err = e.delete.Execute(ctx, dto.ID, "")
		require.NoError(t, err)

		moves, total, err := e.movements.ListByProduct(ctx, "P1", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, 2, moves[0].Quantity)
		assert.Equal(t, "adjustment_reversal", moves[0].ReferenceType)
		assert.Equal(t, -2, moves[1].Quantity)
	})
}

func TestListAdjustments(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 10)
	_, err := e.create.Execute(ctx, req("increase", 1))
	require.NoError(t, err)
	second, err := e.create.Execute(ctx, req("donation", 1))
	require.NoError(t, err)

	resp, err := NewListAdjustmentsUseCase(e.repo).Execute(ctx, ListAdjustmentsRequest{Type: "donation"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)
	assert.Nil(t, resp.List[0].CurrentQuantity)

	got, err := NewGetAdjustmentUseCase(e.repo).Execute(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "donation", got.AdjustmentType)

	_, err = NewListAdjustmentsUseCase(e.repo).Execute(ctx, ListAdjustmentsRequest{Type: "bogus"})
	assert.ErrorIs(t, err, adjustment.ErrInvalidType)
}
