package dto

import "github.com/shopspring/decimal"

// CreateMedicineRequest 新建药品
type CreateMedicineRequest struct {
	ProductID   string          `json:"product_id" binding:"required,max=64" example:"PRD-0001"`
	Name        string          `json:"name" binding:"required,max=200" example:"Paracetamol 500mg"`
	Category    string          `json:"category" binding:"max=100" example:"Analgesic"`
	Unit        string          `json:"unit" binding:"max=20" example:"tablet"`
	Price       decimal.Decimal `json:"price" binding:"dgte0" swaggertype:"number" example:"5.50"`
	Description string          `json:"description" binding:"max=2000"`
}

// UpdateMedicineRequest 只修改传入的字段
type UpdateMedicineRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	Price       *decimal.Decimal `json:"price" binding:"omitempty,dgte0" swaggertype:"number"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
}

// ListMedicinesQuery 药品列表查询
type ListMedicinesQuery struct {
	PageQuery
	Keyword  string `form:"keyword" binding:"max=100"`
	Category string `form:"category" binding:"max=100"`
}
