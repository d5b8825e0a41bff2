package stock

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxQuantity 单次入库/扣减/调整的数量上限
	MaxQuantity = 1_000_000
	// MaxBatchQuantity 单批次库存上限,对应INT列的安全范围
	MaxBatchQuantity = 100_000_000
)

// Service 库存领域服务
// 所有方法都会修改库存,调用方必须在事务中调用(TxManager.Transaction),
// 保证锁定、扣减、记流水要么全部生效要么全部回滚
type Service struct {
	batches   BatchRepository
	movements MovementRepository
}

// NewService 创建库存服务
func NewService(batches BatchRepository, movements MovementRepository) *Service {
	return &Service{batches: batches, movements: movements}
}

// Deduction 一次FEFO扣减的结果
type Deduction struct {
	ProductID   string
	Quantity    int
	Allocations []Allocation
	Remaining   int // 扣减后该药品剩余总库存
}

// Deduct 按FEFO从药品的全部批次扣减quantity
// 1. 锁定该药品全部批次(按药品串行化,FEFO需要看到所有批次)
// 2. 计算分配方案,总量不足直接返回,不做任何修改
// 3. 逐批条件更新并记流水
func (s *Service) Deduct(ctx context.Context, productID string, quantity int, changeType ChangeType, ref Reference) (*Deduction, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	batches, err := s.batches.LockByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	allocations, err := PlanFEFO(batches, quantity)
	if err != nil {
		if len(batches) == 0 {
			return nil, InsufficientStock(productID, 0, quantity)
		}
		return nil, err
	}

	byID := make(map[uint]*Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	for _, a := range allocations {
		b := byID[a.BatchID]
		if err := s.apply(ctx, b, -a.Quantity, changeType, ref); err != nil {
			return nil, err
		}
	}

	return &Deduction{
		ProductID:   productID,
		Quantity:    quantity,
		Allocations: allocations,
		Remaining:   TotalQuantity(batches),
	}, nil
}

// Release 把之前的分配加回各自批次(批发订单取消)
// 批次在此期间被删除时返回ErrBatchNotFound,整体回滚
func (s *Service) Release(ctx context.Context, productID string, allocations []Allocation, ref Reference) error {
	batches, err := s.batches.LockByProduct(ctx, productID)
	if err != nil {
		return err
	}
	byNo := make(map[string]*Batch, len(batches))
	for _, b := range batches {
		byNo[b.BatchNo] = b
	}

	for _, a := range allocations {
		b, ok := byNo[a.BatchNo]
		if !ok {
			return ErrBatchNotFound
		}
		if err := s.apply(ctx, b, a.Quantity, ChangeRelease, ref); err != nil {
			return err
		}
	}
	return nil
}

// Adjust 对单个已锁定批次做有符号调整,减少时截断到0
// 返回实际生效的变动量
func (s *Service) Adjust(ctx context.Context, b *Batch, delta int, changeType ChangeType, ref Reference) (int, error) {
	applied := b.ClampDelta(delta)
	if applied == 0 {
		return 0, nil
	}
	if err := s.apply(ctx, b, applied, changeType, ref); err != nil {
		return 0, err
	}
	return applied, nil
}

// Receipt 入库参数
type Receipt struct {
	ProductID    string
	BatchNo      string
	Quantity     int
	BuyingPrice  decimal.Decimal
	ProductPrice decimal.Decimal
	ExpireDate   time.Time
}

// Receive 入库:批次不存在则新建,存在则累加数量并刷新价格与有效期
func (s *Service) Receive(ctx context.Context, r Receipt, ref Reference) (*Batch, error) {
	if err := checkQuantity(r.Quantity); err != nil {
		return nil, err
	}

	b, err := s.batches.LockByBatchNo(ctx, r.ProductID, r.BatchNo)
	switch {
	case err == nil:
		b.BuyingPrice = r.BuyingPrice
		b.ProductPrice = r.ProductPrice
		if !r.ExpireDate.IsZero() {
			b.ExpireDate = r.ExpireDate
		}
		if err := s.batches.UpdatePrices(ctx, b); err != nil {
			return nil, err
		}
	case isNotFound(err):
		b, err = NewBatch(r.ProductID, r.BatchNo, 0, r.BuyingPrice, r.ProductPrice, r.ExpireDate)
		if err != nil {
			return nil, err
		}
		if err := s.batches.Create(ctx, b); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.apply(ctx, b, r.Quantity, ChangeReceive, ref); err != nil {
		return nil, err
	}
	return b, nil
}

// StockTake 盘点:把批次数量改为实盘数,返回差异(实盘-账面)
func (s *Service) StockTake(ctx context.Context, productID, batchNo string, counted int, ref Reference) (*Batch, int, error) {
	if counted < 0 {
		return nil, 0, ErrInvalidQuantity
	}
	if counted > MaxBatchQuantity {
		return nil, 0, ErrBatchCapacity
	}
	b, err := s.batches.LockByBatchNo(ctx, productID, batchNo)
	if err != nil {
		return nil, 0, err
	}

	diff := counted - b.CurrentQuantity
	if diff != 0 {
		if err := s.apply(ctx, b, diff, ChangeStockTake, ref); err != nil {
			return nil, 0, err
		}
	}
	return b, diff, nil
}

// apply 条件更新库存并写流水,成功后同步内存中的批次
func (s *Service) apply(ctx context.Context, b *Batch, delta int, changeType ChangeType, ref Reference) error {
	if delta > 0 && b.CurrentQuantity > MaxBatchQuantity-delta {
		return ErrBatchCapacity
	}
	if err := s.batches.UpdateQuantity(ctx, b.ID, delta); err != nil {
		return err
	}
	if err := s.movements.Create(ctx, newMovement(b, changeType, delta, ref)); err != nil {
		return err
	}
	b.CurrentQuantity += delta
	b.UpdatedAt = time.Now()
	return nil
}

func checkQuantity(quantity int) error {
	switch {
	case quantity <= 0:
		return ErrInvalidQuantity
	case quantity > MaxQuantity:
		return ErrQuantityTooLarge
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}
