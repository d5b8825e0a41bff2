package adjustment

import (
	"strings"
	"time"
)

// Type 调整类型
type Type string

const (
	TypeIncrease Type = "increase" // 盘盈、退货入库
	TypeDecrease Type = "decrease" // 破损、过期报废
	TypeTransfer Type = "transfer" // 调拨到其他门店
	TypeDonation Type = "donation" // 捐赠
)

// ParseType 解析调整类型(大小写不敏感)
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeIncrease, TypeDecrease, TypeTransfer, TypeDonation:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// Sign 调整方向:只有increase增加库存
func (t Type) Sign() int {
	if t == TypeIncrease {
		return 1
	}
	return -1
}

// Adjustment 手工库存调整(审计记录)
// AppliedDelta是截断后实际作用到批次上的变动量,撤销时按它反向回补
type Adjustment struct {
	ID               uint
	ProductID        string
	BatchNo          string
	Type             Type
	QuantityAdjusted int
	AppliedDelta     int
	Reason           string
	Destination      string // 调拨目的地(transfer)
	CreatedBy        string
	CreatedAt        time.Time
}

// MaxQuantity 单次调整数量上限
const MaxQuantity = 1_000_000

// New 创建调整记录(尚未作用到库存)
func New(productID, batchNo string, t Type, quantity int, reason, destination, createdBy string) (*Adjustment, error) {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(batchNo) == "" {
		return nil, ErrBatchRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return nil, ErrQuantityTooLarge
	}
	if t == TypeTransfer && strings.TrimSpace(destination) == "" {
		return nil, ErrDestinationRequired
	}
	return &Adjustment{
		ProductID:        productID,
		BatchNo:          batchNo,
		Type:             t,
		QuantityAdjusted: quantity,
		Reason:           reason,
		Destination:      destination,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}, nil
}

// RequestedDelta 请求的有符号变动量(截断前)
func (a *Adjustment) RequestedDelta() int {
	return a.Type.Sign() * a.QuantityAdjusted
}

// Clamped 减少量是否因库存不足被截断
func (a *Adjustment) Clamped() bool {
	return a.AppliedDelta != a.RequestedDelta()
}

// ReversalDelta 撤销时应作用的变动量
func (a *Adjustment) ReversalDelta() int {
	return -a.AppliedDelta
}
