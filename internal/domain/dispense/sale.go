package dispense

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// Sale 发药事件(唯一的销售记录)
// 发药明细、收款明细、付款审批都是它的只读投影,不再分表重复保存
type Sale struct {
	ID                    uint
	SaleNo                string
	ProductID             string
	PaymentID             string
	PatientID             string
	TransactionID         string
	TransactionStatus     string
	PaymentMethod         string
	ApprovedPaymentMethod string
	Quantity              int
	UnitPrice             decimal.Decimal // 按批次售价加权得出
	TotalPrice            decimal.Decimal // 客户端上报的实收金额
	CreatedBy             string
	Items                 []SaleItem
	CreatedAt             time.Time
}

// SaleItem 发药在某个批次上的扣减
type SaleItem struct {
	BatchNo     string
	Quantity    int
	BuyingPrice decimal.Decimal
	UnitPrice   decimal.Decimal
	ExpireDate  time.Time
}

// Request 发药请求
type Request struct {
	ProductID             string
	Quantity              int
	PaymentID             string
	PatientID             string
	TransactionID         string
	TransactionStatus     string
	PaymentMethod         string
	ApprovedPaymentMethod string
	TotalPrice            decimal.Decimal
	CreatedBy             string
}

// Validate 业务校验(字段格式由HTTP层校验)
func (r Request) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return ErrProductRequired
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(r.PaymentID) == "" {
		return ErrPaymentIDRequired
	}
	if r.TotalPrice.IsNegative() {
		return ErrInvalidTotalPrice
	}
	return nil
}

// NewSale 由请求和FEFO分配结果构建发药记录
// saleNo由调用方在扣减前生成,库存流水引用同一个单号
func NewSale(saleNo string, req Request, allocations []stock.Allocation) *Sale {
	items := make([]SaleItem, len(allocations))
	gross := decimal.Zero
	for i, a := range allocations {
		items[i] = SaleItem{
			BatchNo:     a.BatchNo,
			Quantity:    a.Quantity,
			BuyingPrice: a.BuyingPrice,
			UnitPrice:   a.ProductPrice,
			ExpireDate:  a.ExpireDate,
		}
		gross = gross.Add(a.ProductPrice.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}

	unit := decimal.Zero
	if req.Quantity > 0 {
		unit = gross.Div(decimal.NewFromInt(int64(req.Quantity))).Round(2)
	}

	return &Sale{
		SaleNo:                saleNo,
		ProductID:             req.ProductID,
		PaymentID:             req.PaymentID,
		PatientID:             req.PatientID,
		TransactionID:         req.TransactionID,
		TransactionStatus:     req.TransactionStatus,
		PaymentMethod:         req.PaymentMethod,
		ApprovedPaymentMethod: req.ApprovedPaymentMethod,
		Quantity:              req.Quantity,
		UnitPrice:             unit,
		TotalPrice:            req.TotalPrice,
		CreatedBy:             req.CreatedBy,
		Items:                 items,
		CreatedAt:             time.Now(),
	}
}

// CostOfGoods 按批次进价计算的成本
func (s *Sale) CostOfGoods() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.BuyingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// PaymentApproval 付款审批视图
type PaymentApproval struct {
	SaleNo                string          `json:"sale_no"`
	ProductID             string          `json:"product_id"`
	PaymentID             string          `json:"Payment_ID"`
	PatientID             string          `json:"Patient_ID"`
	TransactionID         string          `json:"transaction_id"`
	TransactionStatus     string          `json:"transaction_status"`
	PaymentMethod         string          `json:"payment_method"`
	ApprovedPaymentMethod string          `json:"approved_payment_method"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	CreatedBy             string          `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Approval 投影为付款审批视图
func (s *Sale) Approval() PaymentApproval {
	return PaymentApproval{
		SaleNo:                s.SaleNo,
		ProductID:             s.ProductID,
		PaymentID:             s.PaymentID,
		PatientID:             s.PatientID,
		TransactionID:         s.TransactionID,
		TransactionStatus:     s.TransactionStatus,
		PaymentMethod:         s.PaymentMethod,
		ApprovedPaymentMethod: s.ApprovedPaymentMethod,
		TotalPrice:            s.TotalPrice,
		CreatedBy:             s.CreatedBy,
		CreatedAt:             s.CreatedAt,
	}
}

// GenerateSaleNo 生成发药单号
// 格式:DSP + 时间戳(秒) + 6位随机数
func GenerateSaleNo() string {
	return fmt.Sprintf("DSP%d%06d", time.Now().Unix(), rand.Intn(1000000))
}
