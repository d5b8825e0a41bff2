package stock

import "time"

// ChangeType 库存流水类型
type ChangeType string

const (
	ChangeDispense  ChangeType = "DISPENSE"  // 发药扣减
	ChangeAdjust    ChangeType = "ADJUST"    // 手工调整(及其撤销)
	ChangeReceive   ChangeType = "RECEIVE"   // 入库
	ChangeStockTake ChangeType = "STOCKTAKE" // 盘点
	ChangeWholesale ChangeType = "WHOLESALE" // 批发订单预留
	ChangeRelease   ChangeType = "RELEASE"   // 批发订单取消回补
)

// Reference 引起库存变动的业务单据
type Reference struct {
	Type      string // sale | adjustment | wholesale_order | receipt | stock_taking
	ID        string
	CreatedBy string
}

// Movement 库存流水(只追加,不修改)
type Movement struct {
	ID             uint
	ProductID      string
	BatchNo        string
	ChangeType     ChangeType
	Quantity       int // 有符号变动量
	BeforeQuantity int
	AfterQuantity  int
	ReferenceType  string
	ReferenceID    string
	CreatedBy      string
	CreatedAt      time.Time
}

func newMovement(b *Batch, changeType ChangeType, delta int, ref Reference) *Movement {
	return &Movement{
		ProductID:      b.ProductID,
		BatchNo:        b.BatchNo,
		ChangeType:     changeType,
		Quantity:       delta,
		BeforeQuantity: b.CurrentQuantity,
		AfterQuantity:  b.CurrentQuantity + delta,
		ReferenceType:  ref.Type,
		ReferenceID:    ref.ID,
		CreatedBy:      ref.CreatedBy,
		CreatedAt:      time.Now(),
	}
}
