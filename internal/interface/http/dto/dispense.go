package dto

import "github.com/shopspring/decimal"

// DispenseRequest 发药
// 字段名与收银前端保持一致(Payment_ID、Patient_ID)
type DispenseRequest struct {
	Quantity              int             `json:"quantity" binding:"required,min=1,max=1000000" example:"2"`
	PaymentID             string          `json:"Payment_ID" binding:"required,max=100" example:"PAY-20250101-0001"`
	PatientID             string          `json:"Patient_ID" binding:"max=100" example:"PT-1001"`
	TransactionID         string          `json:"transaction_id" binding:"max=100"`
	TransactionStatus     string          `json:"transaction_status" binding:"max=50" example:"completed"`
	PaymentMethod         string          `json:"payment_method" binding:"max=50" example:"mpesa"`
	ApprovedPaymentMethod string          `json:"approved_payment_method" binding:"max=50"`
	TotalPrice            decimal.Decimal `json:"total_price" binding:"dgte0" swaggertype:"number" example:"11.00"`
	CreatedBy             string          `json:"created_by" binding:"max=100"`
}

// ListSalesQuery 发药记录 / 付款审批查询
// to为结束日期(含当天)
type ListSalesQuery struct {
	PageQuery
	ProductID string `form:"product_id" binding:"max=64"`
	PatientID string `form:"patient_id" binding:"max=100"`
	PaymentID string `form:"payment_id" binding:"max=100"`
	From      string `form:"from" binding:"omitempty,date" example:"2025-01-01"`
	To        string `form:"to" binding:"omitempty,date" example:"2025-01-31"`
}
