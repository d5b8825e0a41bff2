package staff

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

var (
	// ErrStaffNotFound 员工不存在
	ErrStaffNotFound = apperrors.New(apperrors.ErrCodeStaffNotFound, "Staff not found")

	// ErrEmailDuplicate 邮箱已注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "The email must be a valid email address.")
	ErrInvalidName  = apperrors.New(apperrors.ErrCodeInvalidParams, "name must be 2-50 characters")
	ErrInvalidRole  = apperrors.New(apperrors.ErrCodeInvalidParams, "role must be one of admin, pharmacist, cashier")
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// Service 员工领域服务
type Service interface {
	Register(ctx context.Context, email, password, name string, role Role) (*Staff, error)
	Authenticate(ctx context.Context, email, password string) (*Staff, error)
	EnsureAdmin(ctx context.Context, email, password, name string) (bool, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建员工服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: 12}
}

// NewServiceWithCost 指定bcrypt cost(测试用较小值)
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 员工注册
// 1. 邮箱格式、姓名长度、角色校验
// 2. 密码8-20位且包含字母和数字
// 3. bcrypt加密后保存,邮箱唯一由数据库唯一索引保证
func (s *service) Register(ctx context.Context, email, password, name string, role Role) (*Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 50 {
		return nil, ErrInvalidName
	}
	if role == "" {
		role = RoleCashier
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	st := NewStaff(email, string(hashed), name, role)
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Authenticate 校验邮箱密码
// 邮箱不存在与密码错误返回同一个错误,不暴露账号是否存在
func (s *service) Authenticate(ctx context.Context, email, password string) (*Staff, error) {
	st, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(st.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "failed to verify password")
	}
	return st, nil
}

// EnsureAdmin 初始管理员,邮箱已存在时不做修改
func (s *service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrStaffNotFound):
		return false, err
	}
	if _, err := s.Register(ctx, email, password, name, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
