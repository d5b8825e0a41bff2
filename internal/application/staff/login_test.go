package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/pharmacy/internal/domain/staff"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/jwt"
)

type fakeSessions struct {
	sessions  map[uint]map[string]interface{}
	blacklist map[string]time.Duration
	saveErr   error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions:  map[uint]map[string]interface{}{},
		blacklist: map[string]time.Duration{},
	}
}

func (f *fakeSessions) SaveSession(_ context.Context, id uint, data map[string]interface{}, _ time.Duration) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessions[id] = data
	return nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id uint) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	f.blacklist[token] = ttl
	return nil
}

func (f *fakeSessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	_, ok := f.blacklist[token]
	return ok, nil
}

func setup(t *testing.T) (staff.Service, *jwt.Manager, *fakeSessions) {
	t.Helper()
	svc := staff.NewServiceWithCost(memory.NewStaffRepository(memory.NewStore()), bcrypt.MinCost)
	_, err := NewCreateStaffUseCase(svc).Execute(context.Background(), CreateStaffRequest{
		Email:    "amina@example.com",
		Password: "secret123",
		Name:     "Amina",
		Role:     "pharmacist",
	})
	require.NoError(t, err)
	return svc, jwt.NewManager("test-secret", time.Hour, 24*time.Hour), newFakeSessions()
}

func TestRegisterUseCase(t *testing.T) {
	ctx := context.Background()
	svc := staff.NewServiceWithCost(memory.NewStaffRepository(memory.NewStore()), bcrypt.MinCost)

	info, err := NewRegisterUseCase(svc).Execute(ctx, RegisterRequest{
		Email: "self@example.com", Password: "secret123", Name: "Juma",
	})
	require.NoError(t, err)
	assert.Equal(t, "cashier", info.Role)

	info, err = NewCreateStaffUseCase(svc).Execute(ctx, CreateStaffRequest{
		Email: "boss@example.com", Password: "secret123", Name: "Neema", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Role)
}

func TestLoginUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("登录成功并保存会话", func(t *testing.T) {
		svc, jm, sessions := setup(t)
		resp, err := NewLoginUseCase(svc, jm, sessions).Execute(ctx, LoginRequest{
			Email: "amina@example.com", Password: "secret123", ClientIP: "10.0.0.1",
		})
		require.NoError(t, err)

		assert.Equal(t, "pharmacist", resp.Staff.Role)
		assert.EqualValues(t, 3600, resp.ExpiresIn)
		assert.Contains(t, sessions.sessions, resp.Staff.ID)

		claims, err := jm.ParseToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "Amina", claims.Name)
	})

	t.Run("会话保存失败不影响登录", func(t *testing.T) {
		svc, jm, sessions := setup(t)
		sessions.saveErr = errors.New("redis down")
		_, err := NewLoginUseCase(svc, jm, sessions).Execute(ctx, LoginRequest{
			Email: "amina@example.com", Password: "secret123",
		})
		assert.NoError(t, err)
	})

	t.Run("密码错误", func(t *testing.T) {
		svc, jm, sessions := setup(t)
		_, err := NewLoginUseCase(svc, jm, sessions).Execute(ctx, LoginRequest{
			Email: "amina@example.com", Password: "wrong1234",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})
}

func TestLogoutUseCase(t *testing.T) {
	ctx := context.Background()
	svc, jm, sessions := setup(t)
	resp, err := NewLoginUseCase(svc, jm, sessions).Execute(ctx, LoginRequest{
		Email: "amina@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, NewLogoutUseCase(sessions, jm).Execute(ctx, resp.Staff.ID, resp.AccessToken))

	assert.NotContains(t, sessions.sessions, resp.Staff.ID)
	assert.Equal(t, time.Hour, sessions.blacklist[resp.AccessToken])
}
