package staff

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/staff"
)

// RegisterUseCase 员工注册用例
type RegisterUseCase struct {
	staffService staff.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(staffService staff.Service) *RegisterUseCase {
	return &RegisterUseCase{staffService: staffService}
}

// Execute 自助注册只能得到收银员角色
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*StaffInfo, error) {
	st, err := uc.staffService.Register(ctx, req.Email, req.Password, req.Name, staff.RoleCashier)
	if err != nil {
		return nil, err
	}
	return toStaffInfo(st), nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// CreateStaffUseCase 管理员创建员工并指定角色
type CreateStaffUseCase struct {
	staffService staff.Service
}

// NewCreateStaffUseCase 创建员工用例
func NewCreateStaffUseCase(staffService staff.Service) *CreateStaffUseCase {
	return &CreateStaffUseCase{staffService: staffService}
}

// Execute 执行创建,权限由路由上的RequireRole保证
func (uc *CreateStaffUseCase) Execute(ctx context.Context, req CreateStaffRequest) (*StaffInfo, error) {
	st, err := uc.staffService.Register(ctx, req.Email, req.Password, req.Name, staff.Role(req.Role))
	if err != nil {
		return nil, err
	}
	return toStaffInfo(st), nil
}

// CreateStaffRequest 创建员工请求
type CreateStaffRequest struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// StaffInfo 员工信息(不含密码)
type StaffInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toStaffInfo(st *staff.Staff) *StaffInfo {
	return &StaffInfo{
		ID:    st.ID,
		Email: st.Email,
		Name:  st.Name,
		Role:  string(st.Role),
	}
}
