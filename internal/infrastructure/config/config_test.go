package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, 10, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 30, cfg.Inventory.ExpiryAlertDays)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL)
	assert.True(t, cfg.Lock.Enabled)
	assert.Empty(t, cfg.Admin.Email)
	assert.False(t, cfg.MQ.Enabled)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, "config.yaml", `
server:
  port: 9090
database:
  driver: memory
inventory:
  low_stock_threshold: 3
`)
	t.Setenv("PHARMACY_SERVER_PORT", "7070")
	t.Setenv("PHARMACY_INVENTORY_EXPIRY_ALERT_DAYS", "60")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Database.InMemory())
	assert.Equal(t, 3, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 60, cfg.Inventory.ExpiryAlertDays)
}

func TestLoadEnvSpecificFile(t *testing.T) {
	dir := writeConfig(t, "config.prod.yaml", `
server:
  port: 8443
  mode: release
jwt:
  secret: prod-secret
`)
	t.Setenv("PHARMACY_ENV", "prod")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 8443, cfg.Server.Port)
	assert.Equal(t, "prod-secret", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	t.Run("生产环境必须修改JWT密钥", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "server:\n  mode: release\n")
		_, err := LoadFrom(dir)
		assert.Error(t, err)
	})

	t.Run("启用锁时TTL必须为正", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "lock:\n  enabled: true\n  ttl: 0s\n")
		_, err := LoadFrom(dir)
		assert.ErrorContains(t, err, "lock.ttl")

		dir = writeConfig(t, "config.yaml", "lock:\n  enabled: false\n  ttl: 0s\n")
		cfg, err := LoadFrom(dir)
		require.NoError(t, err)
		assert.False(t, cfg.Lock.Enabled)
	})

	t.Run("初始管理员必须配置密码", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "admin:\n  email: root@example.com\n")
		_, err := LoadFrom(dir)
		assert.ErrorContains(t, err, "admin.password")
	})

	t.Run("不支持的驱动", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "database:\n  driver: sqlite\n")
		_, err := LoadFrom(dir)
		assert.ErrorContains(t, err, "sqlite")
	})

	t.Run("非法端口", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "server:\n  port: 70000\n")
		_, err := LoadFrom(dir)
		assert.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		User: "root", Password: "pw", Host: "db", Port: 3306, DBName: "pharmacy",
		Charset: "utf8mb4", ParseTime: true, Loc: "Africa/Nairobi",
	}
	assert.Equal(t, "root:pw@tcp(db:3306)/pharmacy?charset=utf8mb4&parseTime=true&loc=Africa%2FNairobi", d.DSN())
}
