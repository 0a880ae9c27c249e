package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"parcelhub.backend/internal/domain/entities"
	"parcelhub.backend/internal/infrastructure/paystack"
	"parcelhub.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context)
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*entities.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return m.account(m.Called(ctx, email))
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return m.account(m.Called(ctx, username))
}

func (m *MockAccountRepository) GetByVerificationTokenHash(ctx context.Context, hash string) (*entities.Account, error) {
	return m.account(m.Called(ctx, hash))
}

func (m *MockAccountRepository) GetByResetTokenHash(ctx context.Context, hash string) (*entities.Account, error) {
	return m.account(m.Called(ctx, hash))
}

func (m *MockAccountRepository) GetByVerificationTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error) {
	return m.account(m.Called(ctx, hash))
}

func (m *MockAccountRepository) GetByResetTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error) {
	return m.account(m.Called(ctx, hash))
}

func (m *MockAccountRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, hash, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, hash, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) MarkVerified(ctx context.Context, id uuid.UUID, tokenHash string) error {
	args := m.Called(ctx, id, tokenHash)
	return args.Error(0)
}

func (m *MockAccountRepository) ForceVerify(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) ConsumeResetToken(ctx context.Context, id uuid.UUID, tokenHash, newPasswordHash string, now time.Time) error {
	args := m.Called(ctx, id, tokenHash, newPasswordHash, now)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, newHash string) error {
	args := m.Called(ctx, id, newHash)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateProfile(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, email string, role entities.Role) error {
	args := m.Called(ctx, email, role)
	return args.Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context, search string, page utils.PaginationParams) ([]*entities.Account, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PackageRepository
type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) pkg(args mock.Arguments) (*entities.Package, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Package), args.Error(1)
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *entities.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Package, error) {
	return m.pkg(m.Called(ctx, id))
}

func (m *MockPackageRepository) GetByPaymentReference(ctx context.Context, reference string) (*entities.Package, error) {
	return m.pkg(m.Called(ctx, reference))
}

func (m *MockPackageRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPackageRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page utils.PaginationParams) ([]*entities.Package, int64, error) {
	args := m.Called(ctx, accountID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Package), args.Get(1).(int64), args.Error(2)
}

func (m *MockPackageRepository) List(ctx context.Context, page utils.PaginationParams) ([]*entities.Package, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Package), args.Get(1).(int64), args.Error(2)
}

func (m *MockPackageRepository) Update(ctx context.Context, pkg *entities.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	args := m.Called(ctx, id, reference)
	return args.Error(0)
}

func (m *MockPackageRepository) MarkPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) error {
	args := m.Called(ctx, id, reference, paidAt)
	return args.Error(0)
}

func (m *MockPackageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, account *entities.Account, link string) error {
	args := m.Called(ctx, account, link)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, account *entities.Account, link string) error {
	args := m.Called(ctx, account, link)
	return args.Error(0)
}

func (m *MockNotifier) SendTestEmail(ctx context.Context, to string) error {
	args := m.Called(ctx, to)
	return args.Error(0)
}

// Mock EmailLimiter
type MockEmailLimiter struct {
	mock.Mock
}

func (m *MockEmailLimiter) Allow(ctx context.Context, kind, email string) error {
	args := m.Called(ctx, kind, email)
	return args.Error(0)
}

// Mock PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.InitializeResponse), args.Error(1)
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Transaction), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}
