package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/domain/repositories"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/metrics"
	"parcelhub.backend/pkg/utils"
)

// AdminUsecase handles operator actions on accounts
type AdminUsecase struct {
	accountRepo     repositories.AccountRepository
	notifier        Notifier
	dispatchTimeout time.Duration
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(accountRepo repositories.AccountRepository, notifier Notifier, dispatchTimeout time.Duration) *AdminUsecase {
	if dispatchTimeout <= 0 {
		dispatchTimeout = defaultDispatchTimeout
	}
	return &AdminUsecase{
		accountRepo:     accountRepo,
		notifier:        notifier,
		dispatchTimeout: dispatchTimeout,
	}
}

// ListAccounts returns account profiles matching search
func (u *AdminUsecase) ListAccounts(ctx context.Context, search string, page utils.PaginationParams) ([]*entities.Profile, utils.PaginationMeta, error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	accounts, total, err := u.accountRepo.List(ctx, strings.TrimSpace(search), page)
	if err != nil {
		return nil, utils.PaginationMeta{}, storeError("list accounts", err)
	}

	profiles := make([]*entities.Profile, 0, len(accounts))
	for _, a := range accounts {
		profiles = append(profiles, a.Profile())
	}
	return profiles, utils.CalculateMeta(total, page), nil
}

// VerifyAccount marks an account verified without a token
func (u *AdminUsecase) VerifyAccount(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	account, err := u.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("verify account: lookup", err)
	}
	if account.IsVerified {
		return nil, domainerrors.ErrAlreadyVerified
	}
	if err := u.accountRepo.ForceVerify(ctx, id); err != nil {
		return nil, storeError("verify account", err)
	}

	logger.Info(ctx, "account verified by admin", zap.String("account_id", id.String()))
	account.IsVerified = true
	return account.Profile(), nil
}

// PromoteToAdmin grants the admin role to the account registered with email
func (u *AdminUsecase) PromoteToAdmin(ctx context.Context, email string) error {
	if err := u.accountRepo.UpdateRole(ctx, email, entities.RoleAdmin); err != nil {
		return storeError("promote admin", err)
	}
	return nil
}

// SendTestEmail checks the mail relay end to end
func (u *AdminUsecase) SendTestEmail(ctx context.Context, to string) error {
	to = entities.NormalizeEmail(to)
	if to == "" {
		return domainerrors.NewError("recipient is required", domainerrors.ErrInvalidInput)
	}

	dctx, cancel := context.WithTimeout(ctx, u.dispatchTimeout)
	defer cancel()
	err := u.notifier.SendTestEmail(dctx, to)
	metrics.RecordNotification(notifyTest, err)
	if err != nil {
		return domainerrors.Infra("send test email", err)
	}
	return nil
}
