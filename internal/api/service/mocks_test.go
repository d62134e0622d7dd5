package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/outbox"
	"github.com/membership-loyalty-core/internal/domain/tier"
)

// fakeTxExecutor runs the transactional function directly. The repositories
// under test are mocks, so no real transaction is needed.
type fakeTxExecutor struct{}

func (fakeTxExecutor) ExecuteTxWithRetry(ctx context.Context, cfg *config.RetryConfig, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	m.Called(tx)
	return m
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Insert(ctx context.Context, entry *ledger.Entry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) GetBySource(ctx context.Context, entryType ledger.EntryType, sourceID string) (*ledger.Entry, error) {
	args := m.Called(ctx, entryType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, tr, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByUser(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange) (int64, error) {
	args := m.Called(ctx, userID, tr)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	m.Called(tx)
	return m
}

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) ListActive(ctx context.Context, now time.Time) ([]*coupon.Coupon, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) DecrementStock(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) InsertClaim(ctx context.Context, claim *coupon.UserCoupon) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockCouponRepository) ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*coupon.UserCoupon), args.Error(1)
}

func (m *MockCouponRepository) CountClaims(ctx context.Context, couponID uuid.UUID) (int64, error) {
	args := m.Called(ctx, couponID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCouponRepository) WithTx(tx pgx.Tx) coupon.Repository {
	m.Called(tx)
	return m
}

type MockTierRepository struct {
	mock.Mock
}

func (m *MockTierRepository) Create(ctx context.Context, t *tier.Tier) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTierRepository) GetByID(ctx context.Context, id uuid.UUID) (*tier.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tier.Tier), args.Error(1)
}

func (m *MockTierRepository) ListOrdered(ctx context.Context) ([]*tier.Tier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tier.Tier), args.Error(1)
}

func (m *MockTierRepository) WithTx(tx pgx.Tx) tier.Repository {
	m.Called(tx)
	return m
}

type MockAccrualArchive struct {
	mock.Mock
}

func (m *MockAccrualArchive) Store(ctx context.Context, event *outbox.AccrualEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAccrualArchive) GetByOrderID(ctx context.Context, orderID string) (*outbox.AccrualEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.AccrualEvent), args.Error(1)
}

func (m *MockAccrualArchive) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*outbox.AccrualEvent, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.AccrualEvent), args.Error(1)
}
