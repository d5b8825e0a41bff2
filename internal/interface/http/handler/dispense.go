package handler

import (
	"github.com/gin-gonic/gin"

	appdispense "github.com/xiebiao/pharmacy/internal/application/dispense"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// DispenseHandler 发药与付款审批
type DispenseHandler struct {
	dispenseUseCase  *appdispense.DispenseUseCase
	listUseCase      *appdispense.ListSalesUseCase
	getUseCase       *appdispense.GetSaleUseCase
	approvalsUseCase *appdispense.ListApprovalsUseCase
}

// NewDispenseHandler 创建发药处理器
func NewDispenseHandler(
	dispenseUseCase *appdispense.DispenseUseCase,
	listUseCase *appdispense.ListSalesUseCase,
	getUseCase *appdispense.GetSaleUseCase,
	approvalsUseCase *appdispense.ListApprovalsUseCase,
) *DispenseHandler {
	return &DispenseHandler{
		dispenseUseCase:  dispenseUseCase,
		listUseCase:      listUseCase,
		getUseCase:       getUseCase,
		approvalsUseCase: approvalsUseCase,
	}
}

// Dispense 发药
// @Summary      发药(按FEFO扣减批次)
// @Description  同一药品同一Payment_ID只能发药一次;库存不足或重复付款返回400,库存不变
// @Tags         发药
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path string true "药品编号"
// @Param        request body dto.DispenseRequest true "发药信息"
// @Success      200 {object} response.Response{data=appdispense.DispenseResponse}
// @Failure      400 {object} response.Response "库存不足或付款已使用"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/medicines-cache/{product_id} [put]
func (h *DispenseHandler) Dispense(c *gin.Context) {
	var req dto.DispenseRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.dispenseUseCase.Execute(c.Request.Context(), dispense.Request{
		ProductID:             c.Param("product_id"),
		Quantity:              req.Quantity,
		PaymentID:             req.PaymentID,
		PatientID:             req.PatientID,
		TransactionID:         req.TransactionID,
		TransactionStatus:     req.TransactionStatus,
		PaymentMethod:         req.PaymentMethod,
		ApprovedPaymentMethod: req.ApprovedPaymentMethod,
		TotalPrice:            req.TotalPrice,
		CreatedBy:             actor(c, req.CreatedBy),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// ListSales 发药记录
// @Summary      发药记录
// @Tags         发药
// @Produce      json
// @Param        product_id query string false "药品编号"
// @Param        patient_id query string false "患者编号"
// @Param        payment_id query string false "付款编号"
// @Param        from query string false "开始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD(含当天)"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appdispense.SaleDTO}}
// @Router       /api/dispensed [get]
func (h *DispenseHandler) ListSales(c *gin.Context) {
	req, ok := salesQuery(c)
	if !ok {
		return
	}

	resp, err := h.listUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// GetSale 发药记录详情
// @Summary      发药记录详情
// @Tags         发药
// @Produce      json
// @Param        sale_no path string true "发药单号"
// @Success      200 {object} response.Response{data=appdispense.SaleDTO}
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/dispensed/{sale_no} [get]
func (h *DispenseHandler) GetSale(c *gin.Context) {
	s, err := h.getUseCase.Execute(c.Request.Context(), c.Param("sale_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}

// ListApprovals 付款审批
// @Summary      付款审批记录
// @Tags         发药
// @Produce      json
// @Param        product_id query string false "药品编号"
// @Param        patient_id query string false "患者编号"
// @Param        payment_id query string false "付款编号"
// @Param        from query string false "开始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD(含当天)"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dispense.PaymentApproval}}
// @Router       /api/payment-approvals [get]
func (h *DispenseHandler) ListApprovals(c *gin.Context) {
	req, ok := salesQuery(c)
	if !ok {
		return
	}

	resp, err := h.approvalsUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// salesQuery to转为次日零点,查询区间左闭右开
func salesQuery(c *gin.Context) (appdispense.ListSalesRequest, bool) {
	var q dto.ListSalesQuery
	if !bindQuery(c, &q) {
		return appdispense.ListSalesRequest{}, false
	}

	to := dto.ParseDate(q.To)
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	return appdispense.ListSalesRequest{
		ProductID: q.ProductID,
		PatientID: q.PatientID,
		PaymentID: q.PaymentID,
		From:      dto.ParseDate(q.From),
		To:        to,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}, true
}
