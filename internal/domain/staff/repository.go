package staff

import (
	"context"
)

// Repository 员工仓储接口
type Repository interface {
	// Create 创建员工,邮箱重复返回ErrEmailDuplicate
	Create(ctx context.Context, s *Staff) error

	FindByID(ctx context.Context, id uint) (*Staff, error)

	FindByEmail(ctx context.Context, email string) (*Staff, error)
}
