package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appwholesale "github.com/xiebiao/pharmacy/internal/application/wholesale"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// WholesaleHandler 批发订单
type WholesaleHandler struct {
	createUseCase     *appwholesale.CreateOrderUseCase
	getUseCase        *appwholesale.GetOrderUseCase
	listUseCase       *appwholesale.ListOrdersUseCase
	transitionUseCase *appwholesale.TransitionUseCase
	paymentUseCase    *appwholesale.RecordPaymentUseCase
	scheduleUseCase   *appwholesale.ScheduleDeliveryUseCase
	completeUseCase   *appwholesale.CompleteDeliveryUseCase
}

// NewWholesaleHandler 创建批发处理器
func NewWholesaleHandler(
	createUseCase *appwholesale.CreateOrderUseCase,
	getUseCase *appwholesale.GetOrderUseCase,
	listUseCase *appwholesale.ListOrdersUseCase,
	transitionUseCase *appwholesale.TransitionUseCase,
	paymentUseCase *appwholesale.RecordPaymentUseCase,
	scheduleUseCase *appwholesale.ScheduleDeliveryUseCase,
	completeUseCase *appwholesale.CompleteDeliveryUseCase,
) *WholesaleHandler {
	return &WholesaleHandler{
		createUseCase:     createUseCase,
		getUseCase:        getUseCase,
		listUseCase:       listUseCase,
		transitionUseCase: transitionUseCase,
		paymentUseCase:    paymentUseCase,
		scheduleUseCase:   scheduleUseCase,
		completeUseCase:   completeUseCase,
	}
}

// Create 批发下单
// @Summary      批发下单
// @Description  下单即按FEFO预留库存,订单状态为draft
// @Tags         批发
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=appwholesale.OrderDTO}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/wholesale-orders [post]
func (h *WholesaleHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]appwholesale.CreateOrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = appwholesale.CreateOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	o, err := h.createUseCase.Execute(c.Request.Context(), appwholesale.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		CreatedBy:     actor(c, req.CreatedBy),
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// List 订单列表
// @Summary      批发订单列表
// @Tags         批发
// @Produce      json
// @Param        status query string false "订单状态"
// @Param        keyword query string false "订单号或客户名"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appwholesale.OrderDTO}}
// @Router       /api/wholesale-orders [get]
func (h *WholesaleHandler) List(c *gin.Context) {
	var q dto.ListOrdersQuery
	if !bindQuery(c, &q) {
		return
	}

	resp, err := h.listUseCase.Execute(c.Request.Context(), appwholesale.ListOrdersRequest{
		Status:   q.Status,
		Keyword:  q.Keyword,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// Get 订单详情
// @Summary      批发订单详情
// @Tags         批发
// @Produce      json
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=appwholesale.OrderDTO}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/wholesale-orders/{id} [get]
func (h *WholesaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", wholesale.ErrOrderNotFound)
	if !ok {
		return
	}

	o, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// Transition 变更订单状态
// @Summary      变更订单状态
// @Description  draft→confirmed→processing→ready_for_delivery→delivered;delivered之前可取消,取消时退回预留库存
// @Tags         批发
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.TransitionRequest true "目标状态"
// @Success      200 {object} response.Response{data=appwholesale.OrderDTO}
// @Failure      400 {object} response.Response "非法的状态变更"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/wholesale-orders/{id}/status [post]
func (h *WholesaleHandler) Transition(c *gin.Context) {
	id, ok := pathID(c, "id", wholesale.ErrOrderNotFound)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.transitionUseCase.Execute(c.Request.Context(), id, req.Status, actor(c, ""))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// RecordPayment 收款
// @Summary      订单收款
// @Tags         批发
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.RecordPaymentRequest true "收款信息"
// @Success      200 {object} response.Response{data=appwholesale.OrderDTO}
// @Failure      400 {object} response.Response "超过未付余额或订单已取消"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/wholesale-orders/{id}/payments [post]
func (h *WholesaleHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id", wholesale.ErrOrderNotFound)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.paymentUseCase.Execute(c.Request.Context(), appwholesale.RecordPaymentRequest{
		OrderID:    id,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceivedBy: actor(c, req.ReceivedBy),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// ScheduleDelivery 安排配送
// @Summary      安排配送
// @Tags         批发
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.ScheduleDeliveryRequest true "配送信息"
// @Success      200 {object} response.Response{data=appwholesale.DeliveryDTO}
// @Failure      400 {object} response.Response "订单状态不允许配送"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/wholesale-orders/{id}/deliveries [post]
func (h *WholesaleHandler) ScheduleDelivery(c *gin.Context) {
	id, ok := pathID(c, "id", wholesale.ErrOrderNotFound)
	if !ok {
		return
	}
	var req dto.ScheduleDeliveryRequest
	if !bindJSON(c, &req) {
		return
	}

	scheduledAt := dto.ParseDate(req.ScheduledAt)
	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}
	d, err := h.scheduleUseCase.Execute(c.Request.Context(), appwholesale.ScheduleDeliveryRequest{
		OrderID:     id,
		Address:     req.Address,
		DeliveredBy: req.DeliveredBy,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, d)
}

// CompleteDelivery 确认送达
// @Summary      确认送达
// @Description  所有配送完成后订单自动变为delivered
// @Tags         批发
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        delivery_id path int true "配送ID"
// @Success      200 {object} response.Response{data=appwholesale.OrderDTO}
// @Failure      404 {object} response.Response "订单或配送不存在"
// @Router       /api/wholesale-orders/{id}/deliveries/{delivery_id}/complete [post]
func (h *WholesaleHandler) CompleteDelivery(c *gin.Context) {
	id, ok := pathID(c, "id", wholesale.ErrOrderNotFound)
	if !ok {
		return
	}
	deliveryID, ok := pathID(c, "delivery_id", wholesale.ErrDeliveryNotFound)
	if !ok {
		return
	}

	o, err := h.completeUseCase.Execute(c.Request.Context(), id, deliveryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}
