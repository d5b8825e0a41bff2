package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/jwt"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/response"
)

// Context键
const (
	KeyStaffID     = "staff_id"
	KeyEmail       = "email"
	KeyName        = "name"
	KeyRole        = "role"
	KeyAccessToken = "access_token"
)

// TokenBlacklist 已注销Token查询
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist}
}

// RequireAuth 要求登录
// 1. Authorization: Bearer <token>
// 2. 黑名单检查(已登出)
// 3. 校验签名和有效期,Refresh Token不能用来访问接口
// 4. 员工信息写入Context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			// Redis故障时拒绝请求,已登出的Token不能因此复活
			logger.L().WithError(err).WithField("request_id", GetRequestID(c)).Error("check token blacklist failed")
			response.Error(c, apperrors.ErrInternal)
			c.Abort()
			return
		}
		if revoked {
			response.Error(c, apperrors.ErrInvalidToken.WithMessage("Token has been revoked"))
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if claims.Refresh {
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(KeyStaffID, claims.StaffID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyName, claims.Name)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyAccessToken, token)
		c.Next()
	}
}

// RequireRole 限定角色,必须放在RequireAuth之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, apperrors.ErrForbidden)
		c.Abort()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetStaffID 当前登录员工ID,未登录返回0
func GetStaffID(c *gin.Context) uint {
	if v, ok := c.Get(KeyStaffID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetStaffName 当前登录员工姓名
func GetStaffName(c *gin.Context) string {
	return c.GetString(KeyName)
}

// GetAccessToken 当前请求的Access Token(登出时加入黑名单)
func GetAccessToken(c *gin.Context) string {
	return c.GetString(KeyAccessToken)
}
