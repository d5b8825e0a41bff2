package dto

import "github.com/shopspring/decimal"

// ListBatchesQuery 批次列表
type ListBatchesQuery struct {
	PageQuery
	ProductID    string `form:"product_id" binding:"max=64"`
	IncludeEmpty bool   `form:"include_empty"`
}

// ExpiringQuery 临期批次,days为空时使用配置
type ExpiringQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=3650" example:"30"`
}

// ReceiveRequest 入库
type ReceiveRequest struct {
	ProductID    string          `json:"product_id" binding:"required,max=64" example:"PRD-0001"`
	BatchNo      string          `json:"batch_no" binding:"required,max=64" example:"LOT-2025-01"`
	Quantity     int             `json:"quantity" binding:"required,min=1,max=1000000" example:"100"`
	BuyingPrice  decimal.Decimal `json:"buying_price" binding:"dgte0" swaggertype:"number" example:"3.20"`
	ProductPrice decimal.Decimal `json:"product_price" binding:"dgte0" swaggertype:"number" example:"5.50"`
	ExpireDate   string          `json:"expire_date" binding:"omitempty,date" example:"2026-06-30"`
	CreatedBy    string          `json:"created_by" binding:"max=100"`
}

// StockTakeRequest 盘点
type StockTakeRequest struct {
	ProductID       string `json:"product_id" binding:"required,max=64"`
	BatchNo         string `json:"batch_no" binding:"required,max=64"`
	CountedQuantity *int   `json:"counted_quantity" binding:"required,min=0,max=100000000" example:"42"`
	Reason          string `json:"reason" binding:"max=255"`
	CreatedBy       string `json:"created_by" binding:"max=100"`
}
