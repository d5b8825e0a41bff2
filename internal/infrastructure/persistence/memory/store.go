// Package memory 进程内仓储实现
// 用于本地开发(database.driver=memory)和用例测试。
// 所有仓储共享一个Store;事务期间持有全局锁,失败时恢复快照,
// 语义上等价于把所有行都FOR UPDATE,比MySQL实现更严格。
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/staff"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
)

type txKey struct{}

// Store 内存数据库
type Store struct {
	mu sync.Mutex
	st *state
}

type state struct {
	seq map[string]uint

	staff       map[uint]*staff.Staff
	medicines   map[string]*medicine.Medicine
	batches     map[uint]*stock.Batch
	movements   []*stock.Movement
	validations map[string]struct{}
	sales       []*dispense.Sale
	adjustments map[uint]*adjustment.Adjustment
	deleted     map[uint]struct{} // 软删除的调整记录
	orders      map[uint]*wholesale.Order
}

// NewStore 创建空的内存数据库
func NewStore() *Store {
	return &Store{st: &state{
		seq:         map[string]uint{},
		staff:       map[uint]*staff.Staff{},
		medicines:   map[string]*medicine.Medicine{},
		batches:     map[uint]*stock.Batch{},
		validations: map[string]struct{}{},
		adjustments: map[uint]*adjustment.Adjustment{},
		deleted:     map[uint]struct{}{},
		orders:      map[uint]*wholesale.Order{},
	}}
}

// Transaction 实现application.TxManager
// 嵌套调用直接复用外层事务
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// do 在锁内访问状态;事务内调用时锁已由Transaction持有
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if inTx(ctx) {
		return fn(s.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (st *state) next(name string) uint {
	st.seq[name]++
	return st.seq[name]
}

func (st *state) clone() *state {
	c := &state{
		seq:         make(map[string]uint, len(st.seq)),
		staff:       make(map[uint]*staff.Staff, len(st.staff)),
		medicines:   make(map[string]*medicine.Medicine, len(st.medicines)),
		batches:     make(map[uint]*stock.Batch, len(st.batches)),
		movements:   slices.Clone(st.movements),
		validations: make(map[string]struct{}, len(st.validations)),
		sales:       slices.Clone(st.sales),
		adjustments: make(map[uint]*adjustment.Adjustment, len(st.adjustments)),
		deleted:     make(map[uint]struct{}, len(st.deleted)),
		orders:      make(map[uint]*wholesale.Order, len(st.orders)),
	}
	for k, v := range st.seq {
		c.seq[k] = v
	}
	for k, v := range st.staff {
		cp := *v
		c.staff[k] = &cp
	}
	for k, v := range st.medicines {
		cp := *v
		c.medicines[k] = &cp
	}
	for k, v := range st.batches {
		cp := *v
		c.batches[k] = &cp
	}
	for k := range st.validations {
		c.validations[k] = struct{}{}
	}
	for k, v := range st.adjustments {
		cp := *v
		c.adjustments[k] = &cp
	}
	for k := range st.deleted {
		c.deleted[k] = struct{}{}
	}
	for k, v := range st.orders {
		c.orders[k] = cloneOrder(v)
	}
	// 流水和发药记录只追加不修改,共享指针即可
	return c
}

// paginate 按页截取
func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
