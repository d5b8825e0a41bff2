package dto

// CreateAdjustmentRequest 手工库存调整
type CreateAdjustmentRequest struct {
	ProductID        string `json:"product_id" binding:"required,max=64" example:"PRD-0001"`
	BatchNo          string `json:"batch_no" binding:"required,max=64" example:"LOT-2025-01"`
	AdjustmentType   string `json:"adjustment_type" binding:"required,oneof=increase decrease transfer donation" example:"decrease"`
	QuantityAdjusted int    `json:"quantity_adjusted" binding:"required,min=1,max=1000000" example:"3"`
	Reason           string `json:"reason" binding:"max=255" example:"damaged"`
	Destination      string `json:"destination" binding:"required_if=AdjustmentType transfer,max=255"`
	CreatedBy        string `json:"created_by" binding:"max=100"`
}

// ListAdjustmentsQuery 调整记录查询
type ListAdjustmentsQuery struct {
	PageQuery
	ProductID string `form:"product_id" binding:"max=64"`
	Type      string `form:"type" binding:"omitempty,oneof=increase decrease transfer donation"`
}
