package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/config"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func testConfig() config.Valkey {
	return config.Valkey{
		IdempotencyEnabled:  true,
		IdempotencyFailOpen: true,
		IdempotencyTTLSec:   3600,
	}
}

func TestChecker_FirstSeen(t *testing.T) {
	store := new(MockStore)
	checker := NewChecker(store, testConfig(), zap.NewNop())

	store.On("SetNX", mock.Anything, "evt:abc", 1, time.Hour).
		Return(redis.NewBoolResult(true, nil))

	first, err := checker.FirstSeen(context.Background(), "abc")

	assert.NoError(t, err)
	assert.True(t, first)
	store.AssertExpectations(t)
}

func TestChecker_Duplicate(t *testing.T) {
	store := new(MockStore)
	checker := NewChecker(store, testConfig(), zap.NewNop())

	store.On("SetNX", mock.Anything, "evt:abc", 1, time.Hour).
		Return(redis.NewBoolResult(false, nil))

	first, err := checker.FirstSeen(context.Background(), "abc")

	assert.NoError(t, err)
	assert.False(t, first)
}

func TestChecker_FailOpenAdmitsOnError(t *testing.T) {
	store := new(MockStore)
	checker := NewChecker(store, testConfig(), zap.NewNop())

	store.On("SetNX", mock.Anything, "evt:abc", 1, time.Hour).
		Return(redis.NewBoolResult(false, errors.New("connection refused")))

	first, err := checker.FirstSeen(context.Background(), "abc")

	assert.NoError(t, err)
	assert.True(t, first)
}

func TestChecker_FailClosedSurfacesError(t *testing.T) {
	store := new(MockStore)
	cfg := testConfig()
	cfg.IdempotencyFailOpen = false
	checker := NewChecker(store, cfg, zap.NewNop())

	store.On("SetNX", mock.Anything, "evt:abc", 1, time.Hour).
		Return(redis.NewBoolResult(false, errors.New("connection refused")))

	first, err := checker.FirstSeen(context.Background(), "abc")

	assert.Error(t, err)
	assert.False(t, first)
}

func TestChecker_DisabledAdmitsEverything(t *testing.T) {
	store := new(MockStore)
	cfg := testConfig()
	cfg.IdempotencyEnabled = false
	checker := NewChecker(store, cfg, zap.NewNop())

	first, err := checker.FirstSeen(context.Background(), "abc")

	assert.NoError(t, err)
	assert.True(t, first)
	store.AssertNotCalled(t, "SetNX")
}
