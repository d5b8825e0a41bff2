package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// MedicineCache 药品目录缓存(cache-aside)
// 写路径只删不写,由下一次读回填
type MedicineCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMedicineCache 创建药品缓存,ttl<=0时使用10分钟
func NewMedicineCache(client *redis.Client, ttl time.Duration) *MedicineCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MedicineCache{client: client, ttl: ttl}
}

func medicineKey(productID string) string {
	return "medicine:" + productID
}

// Get 未命中返回nil, nil
func (c *MedicineCache) Get(ctx context.Context, productID string) (*medicine.Medicine, error) {
	raw, err := c.client.Get(ctx, medicineKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "读取药品缓存失败")
	}

	var m medicine.Medicine
	if err := json.Unmarshal(raw, &m); err != nil {
		// 脏数据直接删掉
		c.client.Del(ctx, medicineKey(productID))
		return nil, apperrors.Wrap(err, "解析药品缓存失败")
	}
	return &m, nil
}

func (c *MedicineCache) Set(ctx context.Context, m *medicine.Medicine) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return apperrors.Wrap(err, "序列化药品失败")
	}
	if err := c.client.Set(ctx, medicineKey(m.ProductID), raw, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入药品缓存失败")
	}
	return nil
}

func (c *MedicineCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, medicineKey(productID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除药品缓存失败")
	}
	return nil
}
