package handler

import (
	"github.com/gin-gonic/gin"

	appmedicine "github.com/xiebiao/pharmacy/internal/application/medicine"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
	"github.com/xiebiao/pharmacy/pkg/tabular"
)

// 导入文件大小上限
const maxImportSize = 10 << 20

// MedicineHandler 药品目录
type MedicineHandler struct {
	createUseCase *appmedicine.CreateMedicineUseCase
	getUseCase    *appmedicine.GetMedicineUseCase
	updateUseCase *appmedicine.UpdateMedicineUseCase
	listUseCase   *appmedicine.ListMedicinesUseCase
	importUseCase *appmedicine.ImportMedicinesUseCase
}

// NewMedicineHandler 创建药品处理器
func NewMedicineHandler(
	createUseCase *appmedicine.CreateMedicineUseCase,
	getUseCase *appmedicine.GetMedicineUseCase,
	updateUseCase *appmedicine.UpdateMedicineUseCase,
	listUseCase *appmedicine.ListMedicinesUseCase,
	importUseCase *appmedicine.ImportMedicinesUseCase,
) *MedicineHandler {
	return &MedicineHandler{
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		updateUseCase: updateUseCase,
		listUseCase:   listUseCase,
		importUseCase: importUseCase,
	}
}

// Create 新建药品
// @Summary      新建药品
// @Tags         药品目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateMedicineRequest true "药品信息"
// @Success      200 {object} response.Response{data=appmedicine.MedicineDTO}
// @Failure      400 {object} response.Response "药品编号已存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/medicines [post]
func (h *MedicineHandler) Create(c *gin.Context) {
	var req dto.CreateMedicineRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.createUseCase.Execute(c.Request.Context(), appmedicine.CreateMedicineRequest{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// Get 药品详情
// @Summary      药品详情
// @Tags         药品目录
// @Produce      json
// @Param        product_id path string true "药品编号"
// @Success      200 {object} response.Response{data=appmedicine.MedicineDTO}
// @Failure      404 {object} response.Response "药品不存在"
// @Router       /api/medicines/{product_id} [get]
func (h *MedicineHandler) Get(c *gin.Context) {
	m, err := h.getUseCase.Execute(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// Update 修改药品
// @Summary      修改药品
// @Tags         药品目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path string true "药品编号"
// @Param        request body dto.UpdateMedicineRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appmedicine.MedicineDTO}
// @Failure      404 {object} response.Response "药品不存在"
// @Router       /api/medicines/{product_id} [put]
func (h *MedicineHandler) Update(c *gin.Context) {
	var req dto.UpdateMedicineRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.updateUseCase.Execute(c.Request.Context(), appmedicine.UpdateMedicineRequest{
		ProductID:   c.Param("product_id"),
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// List 药品列表
// @Summary      药品列表
// @Tags         药品目录
// @Produce      json
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        keyword query string false "编号或名称"
// @Param        category query string false "分类"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appmedicine.MedicineDTO}}
// @Router       /api/medicines [get]
func (h *MedicineHandler) List(c *gin.Context) {
	var q dto.ListMedicinesQuery
	if !bindQuery(c, &q) {
		return
	}

	resp, err := h.listUseCase.Execute(c.Request.Context(), appmedicine.ListMedicinesRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
		Keyword:  q.Keyword,
		Category: q.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, resp.List, resp.Total, resp.Page, resp.PageSize)
}

// Import 导入药品目录
// @Summary      导入药品目录
// @Description  CSV或XLSX,表头 product_id,name,category,unit,price;按product_id插入或更新
// @Tags         药品目录
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "CSV/XLSX文件"
// @Success      200 {object} response.Response{data=appmedicine.ImportResult}
// @Failure      422 {object} response.Response "文件格式错误或缺少必需列"
// @Router       /api/medicines/import [post]
func (h *MedicineHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperrors.Validation(map[string]string{"file": "The file field is required."}))
		return
	}
	if header.Size > maxImportSize {
		response.Error(c, apperrors.Validation(map[string]string{"file": "The file may not be greater than 10MB."}))
		return
	}

	f, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "打开上传文件失败"))
		return
	}
	defer f.Close()

	table, err := tabular.Read(header.Filename, f)
	if err != nil {
		response.Error(c, apperrors.Validation(map[string]string{"file": err.Error()}))
		return
	}

	result, err := h.importUseCase.Execute(c.Request.Context(), table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
