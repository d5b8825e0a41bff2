package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// SessionStore 员工会话与JWT黑名单
// Key:session:{staff_id}、blacklist:{token}
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(staffID uint) string {
	return fmt.Sprintf("session:%d", staffID)
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// SaveSession 保存登录会话,TTL与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, staffID uint, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(staffID)

	// HSet和Expire放进同一个pipeline
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取会话,不存在视为未登录
func (s *SessionStore) GetSession(ctx context.Context, staffID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(staffID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 登出时删除会话
func (s *SessionStore) DeleteSession(ctx context.Context, staffID uint) error {
	if err := s.client.Del(ctx, sessionKey(staffID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist Token加入黑名单,TTL取Access Token有效期,过期自动清理
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否已注销
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}
