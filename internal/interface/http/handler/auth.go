package handler

import (
	"github.com/gin-gonic/gin"

	appstaff "github.com/xiebiao/pharmacy/internal/application/staff"
	"github.com/xiebiao/pharmacy/internal/interface/http/dto"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// AuthHandler 员工认证
type AuthHandler struct {
	registerUseCase    *appstaff.RegisterUseCase
	createStaffUseCase *appstaff.CreateStaffUseCase
	loginUseCase       *appstaff.LoginUseCase
	logoutUseCase      *appstaff.LogoutUseCase
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(
	registerUseCase *appstaff.RegisterUseCase,
	createStaffUseCase *appstaff.CreateStaffUseCase,
	loginUseCase *appstaff.LoginUseCase,
	logoutUseCase *appstaff.LogoutUseCase,
) *AuthHandler {
	return &AuthHandler{
		registerUseCase:    registerUseCase,
		createStaffUseCase: createStaffUseCase,
		loginUseCase:       loginUseCase,
		logoutUseCase:      logoutUseCase,
	}
}

// Register 员工自助注册,角色固定为收银员
// @Summary      员工注册
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=appstaff.StaffInfo}
// @Failure      400 {object} response.Response "邮箱已存在或密码强度不足"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.registerUseCase.Execute(c.Request.Context(), appstaff.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// CreateStaff 管理员创建员工
// @Summary      创建员工并指定角色
// @Tags         认证
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateStaffRequest true "员工信息"
// @Success      200 {object} response.Response{data=appstaff.StaffInfo}
// @Failure      403 {object} response.Response "非管理员"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/staff [post]
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.createStaffUseCase.Execute(c.Request.Context(), appstaff.CreateStaffRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// Login 员工登录
// @Summary      员工登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appstaff.LoginResponse}
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.loginUseCase.Execute(c.Request.Context(), appstaff.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Logout 登出,当前Access Token加入黑名单
// @Summary      员工登出
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), middleware.GetStaffID(c), middleware.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Logged out"})
}
