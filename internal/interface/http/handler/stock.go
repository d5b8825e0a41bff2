package handler

import (
	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/pharmacy/internal/application/stock"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// StockHandler 批次库存
type StockHandler struct {
	listUseCase      *appstock.ListBatchesUseCase
	expiringUseCase  *appstock.ExpiringUseCase
	productUseCase   *appstock.ProductStockUseCase
	movementsUseCase *appstock.MovementsUseCase
	receiveUseCase   *appstock.ReceiveUseCase
	stockTakeUseCase *appstock.StockTakeUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(
	listUseCase *appstock.ListBatchesUseCase,
	expiringUseCase *appstock.ExpiringUseCase,
	productUseCase *appstock.ProductStockUseCase,
	movementsUseCase *appstock.MovementsUseCase,
	receiveUseCase *appstock.ReceiveUseCase,
	stockTakeUseCase *appstock.StockTakeUseCase,
) *StockHandler {
	return &StockHandler{
		listUseCase:      listUseCase,
		expiringUseCase:  expiringUseCase,
		productUseCase:   productUseCase,
		movementsUseCase: movementsUseCase,
		receiveUseCase:   receiveUseCase,
		stockTakeUseCase: stockTakeUseCase,
	}
}

// ListBatches 批次列表
// @Summary      批次列表
// @Description  按FEFO顺序返回,默认不含库存为0的批次
// @Tags         库存
// @Produce      json
// @Param        product_id query string false "药品编号"
// @Param        include_empty query bool false "包含空批次"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appstock.BatchDTO}}
// @Router       /api/medicines-cache [get]
func (h *StockHandler) ListBatches(c *gin.Context) {
	var q dto.ListBatchesQuery
	if !bindQuery(c, &q) {
		return
	}

	resp, err := h.listUseCase.Execute(c.Request.Context(), appstock.ListBatchesRequest{
		ProductID:    q.ProductID,
		IncludeEmpty: q.IncludeEmpty,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// Expiring 临期批次
// @Summary      临期批次
// @Tags         库存
// @Produce      json
// @Param        days query int false "天数,默认取配置"
// @Success      200 {object} response.Response{data=[]appstock.BatchDTO}
// @Router       /api/medicines-cache/expiring [get]
func (h *StockHandler) Expiring(c *gin.Context) {
	var q dto.ExpiringQuery
	if !bindQuery(c, &q) {
		return
	}

	list, err := h.expiringUseCase.Execute(c.Request.Context(), q.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ProductStock 单个药品的批次库存
// @Summary      药品库存
// @Tags         库存
// @Produce      json
// @Param        product_id path string true "药品编号"
// @Success      200 {object} response.Response{data=appstock.ProductStock}
// @Failure      404 {object} response.Response "药品不存在"
// @Router       /api/medicines-cache/{product_id} [get]
func (h *StockHandler) ProductStock(c *gin.Context) {
	ps, err := h.productUseCase.Execute(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ps)
}

// Movements 库存流水
// @Summary      库存流水
// @Tags         库存
// @Produce      json
// @Param        product_id path string true "药品编号"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appstock.MovementDTO}}
// @Router       /api/medicines-cache/{product_id}/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	resp, err := h.movementsUseCase.Execute(c.Request.Context(), c.Param("product_id"), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// Receive 入库
// @Summary      采购入库
// @Description  批次不存在则新建,已存在则累加数量并更新价格
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReceiveRequest true "入库信息"
// @Success      200 {object} response.Response{data=appstock.BatchDTO}
// @Failure      404 {object} response.Response "药品不存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/stock-receipts [post]
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.receiveUseCase.Execute(c.Request.Context(), appstock.ReceiveRequest{
		ProductID:    req.ProductID,
		BatchNo:      req.BatchNo,
		Quantity:     req.Quantity,
		BuyingPrice:  req.BuyingPrice,
		ProductPrice: req.ProductPrice,
		ExpireDate:   dto.ParseDate(req.ExpireDate),
		CreatedBy:    actor(c, req.CreatedBy),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// StockTake 盘点
// @Summary      库存盘点
// @Description  以实盘数量覆盖账面数量,差异写入库存流水
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.StockTakeRequest true "盘点信息"
// @Success      200 {object} response.Response{data=appstock.StockTakeResponse}
// @Failure      404 {object} response.Response "批次不存在"
// @Router       /api/stock-takings [post]
func (h *StockHandler) StockTake(c *gin.Context) {
	var req dto.StockTakeRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.stockTakeUseCase.Execute(c.Request.Context(), appstock.StockTakeRequest{
		ProductID:       req.ProductID,
		BatchNo:         req.BatchNo,
		CountedQuantity: *req.CountedQuantity,
		Reason:          req.Reason,
		CreatedBy:       actor(c, req.CreatedBy),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}
