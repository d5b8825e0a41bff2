package handler

import (
	"github.com/gin-gonic/gin"

	appadjustment "github.com/xiebiao/pharmacy/internal/application/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// AdjustmentHandler 手工库存调整
type AdjustmentHandler struct {
	createUseCase *appadjustment.CreateAdjustmentUseCase
	deleteUseCase *appadjustment.DeleteAdjustmentUseCase
	listUseCase   *appadjustment.ListAdjustmentsUseCase
	getUseCase    *appadjustment.GetAdjustmentUseCase
}

// NewAdjustmentHandler 创建调整处理器
func NewAdjustmentHandler(
	createUseCase *appadjustment.CreateAdjustmentUseCase,
	deleteUseCase *appadjustment.DeleteAdjustmentUseCase,
	listUseCase *appadjustment.ListAdjustmentsUseCase,
	getUseCase *appadjustment.GetAdjustmentUseCase,
) *AdjustmentHandler {
	return &AdjustmentHandler{
		createUseCase: createUseCase,
		deleteUseCase: deleteUseCase,
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
	}
}

// Create 新建调整
// @Summary      新建库存调整
// @Description  increase增加库存;decrease/transfer/donation减少库存,超过现有库存时扣到0
// @Tags         库存调整
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAdjustmentRequest true "调整信息"
// @Success      200 {object} response.Response{data=appadjustment.AdjustmentDTO}
// @Failure      404 {object} response.Response "批次不存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/stock-adjustments [post]
func (h *AdjustmentHandler) Create(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.createUseCase.Execute(c.Request.Context(), appadjustment.CreateAdjustmentRequest{
		ProductID:        req.ProductID,
		BatchNo:          req.BatchNo,
		AdjustmentType:   req.AdjustmentType,
		QuantityAdjusted: req.QuantityAdjusted,
		Reason:           req.Reason,
		Destination:      req.Destination,
		CreatedBy:        actor(c, req.CreatedBy),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// List 调整记录
// @Summary      库存调整记录
// @Tags         库存调整
// @Produce      json
// @Param        product_id query string false "药品编号"
// @Param        type query string false "调整类型"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appadjustment.AdjustmentDTO}}
// @Router       /api/stock-adjustments [get]
func (h *AdjustmentHandler) List(c *gin.Context) {
	var q dto.ListAdjustmentsQuery
	if !bindQuery(c, &q) {
		return
	}

	resp, err := h.listUseCase.Execute(c.Request.Context(), appadjustment.ListAdjustmentsRequest{
		ProductID: q.ProductID,
		Type:      q.Type,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// Get 调整详情
// @Summary      库存调整详情
// @Tags         库存调整
// @Produce      json
// @Param        id path int true "调整ID"
// @Success      200 {object} response.Response{data=appadjustment.AdjustmentDTO}
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/stock-adjustments/{id} [get]
func (h *AdjustmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", adjustment.ErrAdjustmentNotFound)
	if !ok {
		return
	}

	a, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// Delete 撤销调整
// @Summary      撤销库存调整
// @Description  按实际生效数量反向调整库存;反向扣减不允许扣成负数
// @Tags         库存调整
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "调整ID"
// @Success      200 {object} response.Response{data=appadjustment.DeleteAdjustmentResponse}
// @Failure      400 {object} response.Response "库存不足无法撤销"
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/stock-adjustments/{id} [delete]
func (h *AdjustmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", adjustment.ErrAdjustmentNotFound)
	if !ok {
		return
	}

	resp, err := h.deleteUseCase.Execute(c.Request.Context(), id, actor(c, ""))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}
