package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 以下是infrastructure层的数据模型,包含GORM tag
// domain层实体不依赖GORM,由各Repository负责转换
// 金额统一用decimal(12,2),shopspring/decimal实现了Scanner/Valuer

// StaffModel 员工
type StaffModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Name      string    `gorm:"size:50;not null;comment:姓名"`
	Role      string    `gorm:"size:20;not null;default:cashier;comment:角色"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (StaffModel) TableName() string { return "staff" }

// MedicineModel 药品目录
type MedicineModel struct {
	ID          uint            `gorm:"primaryKey"`
	ProductID   string          `gorm:"uniqueIndex;size:64;not null;comment:药品编号"`
	Name        string          `gorm:"index;size:200;not null;comment:名称"`
	Category    string          `gorm:"index;size:100;comment:分类"`
	Unit        string          `gorm:"size:20;comment:计量单位"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:目录售价"`
	Description string          `gorm:"type:text;comment:说明"`
	CreatedAt   time.Time       `gorm:"comment:创建时间"`
	UpdatedAt   time.Time       `gorm:"comment:更新时间"`
}

func (MedicineModel) TableName() string { return "medicines" }

// BatchModel 批次库存
// idx_fefo覆盖按药品加锁并按有效期排序的查询
type BatchModel struct {
	ID              uint            `gorm:"primaryKey"`
	ProductID       string          `gorm:"uniqueIndex:uk_product_batch,priority:1;index:idx_fefo,priority:1;size:64;not null;comment:药品编号"`
	BatchNo         string          `gorm:"uniqueIndex:uk_product_batch,priority:2;index:idx_fefo,priority:3;size:64;not null;comment:批号"`
	CurrentQuantity int             `gorm:"not null;default:0;comment:当前库存"`
	BuyingPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:进价"`
	ProductPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:售价"`
	ExpireDate      *time.Time      `gorm:"type:date;index:idx_fefo,priority:2;index;comment:有效期"`
	CreatedAt       time.Time       `gorm:"comment:创建时间"`
	UpdatedAt       time.Time       `gorm:"comment:更新时间"`
}

func (BatchModel) TableName() string { return "medicine_batches" }

// MovementModel 库存流水(只追加)
type MovementModel struct {
	ID             uint      `gorm:"primaryKey"`
	ProductID      string    `gorm:"index:idx_product_time,priority:1;size:64;not null;comment:药品编号"`
	BatchNo        string    `gorm:"size:64;not null;comment:批号"`
	ChangeType     string    `gorm:"size:20;not null;comment:变动类型"`
	Quantity       int       `gorm:"not null;comment:有符号变动量"`
	BeforeQuantity int       `gorm:"not null;comment:变动前数量"`
	AfterQuantity  int       `gorm:"not null;comment:变动后数量"`
	ReferenceType  string    `gorm:"size:32;comment:关联单据类型"`
	ReferenceID    string    `gorm:"index;size:64;comment:关联单据号"`
	CreatedBy      string    `gorm:"size:100;comment:操作人"`
	CreatedAt      time.Time `gorm:"index:idx_product_time,priority:2;comment:创建时间"`
}

func (MovementModel) TableName() string { return "stock_movements" }

// PaymentValidationModel (product_id, payment_id)一次性标记
// 唯一索引保证同一付款只能对同一药品发一次药
type PaymentValidationModel struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID string    `gorm:"uniqueIndex:uk_product_payment,priority:1;size:64;not null;comment:药品编号"`
	PaymentID string    `gorm:"uniqueIndex:uk_product_payment,priority:2;size:100;not null;comment:付款编号"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (PaymentValidationModel) TableName() string { return "payment_validations" }

// SaleModel 发药记录
type SaleModel struct {
	ID                    uint            `gorm:"primaryKey"`
	SaleNo                string          `gorm:"uniqueIndex;size:32;not null;comment:发药单号"`
	ProductID             string          `gorm:"index;size:64;not null;comment:药品编号"`
	PaymentID             string          `gorm:"index;size:100;not null;comment:付款编号"`
	PatientID             string          `gorm:"index;size:100;comment:患者编号"`
	TransactionID         string          `gorm:"size:100;comment:交易号"`
	TransactionStatus     string          `gorm:"size:50;comment:交易状态"`
	PaymentMethod         string          `gorm:"size:50;comment:付款方式"`
	ApprovedPaymentMethod string          `gorm:"size:50;comment:审批的付款方式"`
	Quantity              int             `gorm:"not null;comment:数量"`
	UnitPrice             decimal.Decimal `gorm:"type:decimal(12,2);comment:加权单价"`
	TotalPrice            decimal.Decimal `gorm:"type:decimal(12,2);comment:实收金额"`
	CreatedBy             string          `gorm:"size:100;comment:操作人"`
	Items                 []SaleItemModel `gorm:"foreignKey:SaleID"`
	CreatedAt             time.Time       `gorm:"index;comment:创建时间"`
}

func (SaleModel) TableName() string { return "sales" }

// SaleItemModel 发药批次明细
type SaleItemModel struct {
	ID          uint            `gorm:"primaryKey"`
	SaleID      uint            `gorm:"index;not null;comment:发药记录ID"`
	BatchNo     string          `gorm:"size:64;not null;comment:批号"`
	Quantity    int             `gorm:"not null;comment:数量"`
	BuyingPrice decimal.Decimal `gorm:"type:decimal(12,2);comment:进价"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);comment:批次售价"`
	ExpireDate  *time.Time      `gorm:"type:date;comment:有效期"`
}

func (SaleItemModel) TableName() string { return "sale_items" }

// AdjustmentModel 库存调整(软删除即撤销)
type AdjustmentModel struct {
	ID               uint           `gorm:"primaryKey"`
	ProductID        string         `gorm:"index;size:64;not null;comment:药品编号"`
	BatchNo          string         `gorm:"size:64;not null;comment:批号"`
	AdjustmentType   string         `gorm:"index;size:20;not null;comment:调整类型"`
	QuantityAdjusted int            `gorm:"not null;comment:调整数量"`
	AppliedDelta     int            `gorm:"not null;comment:实际生效的变动量"`
	Reason           string         `gorm:"size:255;comment:原因"`
	Destination      string         `gorm:"size:200;comment:调拨目的地"`
	CreatedBy        string         `gorm:"size:100;comment:操作人"`
	CreatedAt        time.Time      `gorm:"comment:创建时间"`
	DeletedAt        gorm.DeletedAt `gorm:"index;comment:撤销时间"`
}

func (AdjustmentModel) TableName() string { return "stock_adjustments" }

// WholesaleOrderModel 批发订单
type WholesaleOrderModel struct {
	ID            uint                     `gorm:"primaryKey"`
	OrderNo       string                   `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	CustomerName  string                   `gorm:"index;size:200;not null;comment:客户名"`
	CustomerPhone string                   `gorm:"size:50;comment:客户电话"`
	Status        string                   `gorm:"index;size:32;not null;comment:状态"`
	TotalAmount   decimal.Decimal          `gorm:"type:decimal(12,2);not null;comment:订单金额"`
	PaidAmount    decimal.Decimal          `gorm:"type:decimal(12,2);not null;default:0;comment:已付金额"`
	BalanceAmount decimal.Decimal          `gorm:"type:decimal(12,2);not null;comment:未付余额"`
	Notes         string                   `gorm:"type:text;comment:备注"`
	CreatedBy     string                   `gorm:"size:100;comment:操作人"`
	Items         []WholesaleItemModel     `gorm:"foreignKey:OrderID"`
	Payments      []WholesalePaymentModel  `gorm:"foreignKey:OrderID"`
	Deliveries    []WholesaleDeliveryModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time                `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time                `gorm:"comment:更新时间"`
}

func (WholesaleOrderModel) TableName() string { return "wholesale_orders" }

// WholesaleItemModel 订单明细
type WholesaleItemModel struct {
	ID          uint                       `gorm:"primaryKey"`
	OrderID     uint                       `gorm:"index;not null;comment:订单ID"`
	ProductID   string                     `gorm:"size:64;not null;comment:药品编号"`
	Quantity    int                        `gorm:"not null;comment:数量"`
	UnitPrice   decimal.Decimal            `gorm:"type:decimal(12,2);not null;comment:单价"`
	Subtotal    decimal.Decimal            `gorm:"type:decimal(12,2);not null;comment:小计"`
	Allocations []WholesaleAllocationModel `gorm:"foreignKey:ItemID"`
}

func (WholesaleItemModel) TableName() string { return "wholesale_order_items" }

// WholesaleAllocationModel 明细在批次上的预留
type WholesaleAllocationModel struct {
	ID           uint            `gorm:"primaryKey"`
	ItemID       uint            `gorm:"index;not null;comment:明细ID"`
	BatchID      uint            `gorm:"not null;comment:批次ID"`
	BatchNo      string          `gorm:"size:64;not null;comment:批号"`
	Quantity     int             `gorm:"not null;comment:数量"`
	BuyingPrice  decimal.Decimal `gorm:"type:decimal(12,2);comment:进价"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(12,2);comment:售价"`
	ExpireDate   *time.Time      `gorm:"type:date;comment:有效期"`
}

func (WholesaleAllocationModel) TableName() string { return "wholesale_allocations" }

// WholesalePaymentModel 收款记录
type WholesalePaymentModel struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"index;not null;comment:订单ID"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:金额"`
	Method     string          `gorm:"size:50;comment:付款方式"`
	Reference  string          `gorm:"size:100;comment:付款凭证"`
	ReceivedBy string          `gorm:"size:100;comment:收款人"`
	CreatedAt  time.Time       `gorm:"comment:创建时间"`
}

func (WholesalePaymentModel) TableName() string { return "wholesale_payments" }

// WholesaleDeliveryModel 配送记录
type WholesaleDeliveryModel struct {
	ID          uint       `gorm:"primaryKey"`
	OrderID     uint       `gorm:"index;not null;comment:订单ID"`
	DeliveryNo  string     `gorm:"uniqueIndex;size:32;not null;comment:配送单号"`
	Address     string     `gorm:"size:255;not null;comment:地址"`
	DeliveredBy string     `gorm:"size:100;comment:配送人"`
	Status      string     `gorm:"size:20;not null;comment:配送状态"`
	ScheduledAt time.Time  `gorm:"comment:计划时间"`
	DeliveredAt *time.Time `gorm:"comment:送达时间"`
}

func (WholesaleDeliveryModel) TableName() string { return "wholesale_deliveries" }

func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func dateOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
