package dto

import "github.com/shopspring/decimal"

// CreateOrderRequest 批发下单
type CreateOrderRequest struct {
	CustomerName  string            `json:"customer_name" binding:"required,max=200" example:"Mercy Clinic"`
	CustomerPhone string            `json:"customer_phone" binding:"max=30" example:"+254700000000"`
	Notes         string            `json:"notes" binding:"max=1000"`
	CreatedBy     string            `json:"created_by" binding:"max=100"`
	Items         []CreateOrderItem `json:"items" binding:"required,min=1,max=100,dive"`
}

// CreateOrderItem 订单明细,unit_price为空时使用目录价
type CreateOrderItem struct {
	ProductID string           `json:"product_id" binding:"required,max=64" example:"PRD-0001"`
	Quantity  int              `json:"quantity" binding:"required,min=1,max=1000000" example:"50"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,dgte0" swaggertype:"number" example:"4.80"`
}

// TransitionRequest 状态变更
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed processing ready_for_delivery delivered cancelled" example:"confirmed"`
}

// RecordPaymentRequest 收款
type RecordPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"dgt0" swaggertype:"number" example:"100.00"`
	Method     string          `json:"method" binding:"required,max=50" example:"bank_transfer"`
	Reference  string          `json:"reference" binding:"max=100"`
	ReceivedBy string          `json:"received_by" binding:"max=100"`
}

// ScheduleDeliveryRequest 安排配送
type ScheduleDeliveryRequest struct {
	Address     string `json:"address" binding:"required,max=500" example:"Moi Avenue, Nairobi"`
	DeliveredBy string `json:"delivered_by" binding:"max=100"`
	ScheduledAt string `json:"scheduled_at" binding:"omitempty,date" example:"2025-02-01"`
}

// ListOrdersQuery 订单列表
type ListOrdersQuery struct {
	PageQuery
	Status  string `form:"status" binding:"omitempty,oneof=draft confirmed processing ready_for_delivery delivered cancelled"`
	Keyword string `form:"keyword" binding:"max=100"`
}
