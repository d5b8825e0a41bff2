package dto

// RegisterRequest 员工注册
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100" example:"pharmacist@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Name     string `json:"name" binding:"required,max=50" example:"Amina"`
}

// CreateStaffRequest 管理员创建员工
type CreateStaffRequest struct {
	Email    string `json:"email" binding:"required,email,max=100" example:"pharmacist@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Name     string `json:"name" binding:"required,max=50" example:"Amina"`
	Role     string `json:"role" binding:"required,oneof=admin pharmacist cashier" example:"pharmacist"`
}

// LoginRequest 员工登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"pharmacist@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}
