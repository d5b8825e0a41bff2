package staff

import (
	"context"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/staff"
	"github.com/xiebiao/pharmacy/pkg/jwt"
	"github.com/xiebiao/pharmacy/pkg/logger"
)

// SessionStore 会话与Token黑名单存储(Redis实现)
type SessionStore interface {
	SaveSession(ctx context.Context, staffID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, staffID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// LoginUseCase 员工登录用例
// 1. 校验邮箱密码
// 2. 签发JWT Token对
// 3. 会话写入Redis(失败只记日志,不影响登录)
type LoginUseCase struct {
	staffService staff.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(staffService staff.Service, jwtManager *jwt.Manager, sessionStore SessionStore) *LoginUseCase {
	return &LoginUseCase{
		staffService: staffService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	st, err := uc.staffService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(jwt.Identity{
		StaffID: st.ID,
		Email:   st.Email,
		Name:    st.Name,
		Role:    string(st.Role),
	})
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"staff_id": st.ID,
		"email":    st.Email,
		"role":     string(st.Role),
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, st.ID, session, uc.jwtManager.RefreshTokenExpire()); err != nil {
		logger.L().WithError(err).WithField("staff_id", st.ID).Warn("save session failed")
	}

	return &LoginResponse{
		Staff:        *toStaffInfo(st),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 员工登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 删除会话并把Access Token加入黑名单(TTL与Token有效期一致)
func (uc *LogoutUseCase) Execute(ctx context.Context, staffID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, staffID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenExpire())
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Staff        StaffInfo `json:"staff"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
}
