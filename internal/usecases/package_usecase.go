package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"parcelhub.backend/internal/config"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/domain/repositories"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/utils"
)

// PackageUsecase handles shipment records
type PackageUsecase struct {
	packageRepo repositories.PackageRepository
	accountRepo repositories.AccountRepository
	uow         repositories.UnitOfWork
	pricing     config.PricingConfig
}

// NewPackageUsecase creates a new package usecase
func NewPackageUsecase(
	packageRepo repositories.PackageRepository,
	accountRepo repositories.AccountRepository,
	uow repositories.UnitOfWork,
	pricing config.PricingConfig,
) *PackageUsecase {
	return &PackageUsecase{
		packageRepo: packageRepo,
		accountRepo: accountRepo,
		uow:         uow,
		pricing:     pricing,
	}
}

// Create registers a package. An account's first package is billed at the
// discounted price.
func (u *PackageUsecase) Create(ctx context.Context, accountID uuid.UUID, input *entities.CreatePackageInput) (*entities.Package, error) {
	code, err := newPackageCode()
	if err != nil {
		return nil, domainerrors.Infra("create package: generate code", err)
	}

	pkg := &entities.Package{
		Code:          code,
		AccountID:     accountID,
		Pickup:        trimAddress(input.Pickup),
		Delivery:      trimAddress(input.Delivery),
		Description:   strings.TrimSpace(input.Description),
		WeightKg:      input.WeightKg,
		Status:        entities.PackageStatusPending,
		PaymentStatus: entities.PaymentStatusUnpaid,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// the account row lock serializes creates so only one can take the discount
		if _, err := u.accountRepo.GetByID(u.uow.WithLock(txCtx), accountID); err != nil {
			return err
		}
		count, err := u.packageRepo.CountByAccount(txCtx, accountID)
		if err != nil {
			return err
		}
		if count == 0 {
			pkg.HasPackageDiscount = true
			pkg.Price = u.pricing.FirstPackagePrice
		} else {
			pkg.Price = u.pricing.PackagePrice
		}
		return u.packageRepo.Create(txCtx, pkg)
	})
	if err != nil {
		return nil, storeError("create package", err)
	}

	logger.Info(ctx, "package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("code", pkg.Code),
		zap.Bool("discounted", pkg.HasPackageDiscount),
	)
	return pkg, nil
}

// Get returns a package visible to actor
func (u *PackageUsecase) Get(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID) (*entities.Package, error) {
	pkg, err := u.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get package", err)
	}
	if !canAccess(actor, pkg) {
		return nil, domainerrors.ErrNotFound
	}
	return pkg, nil
}

// ListMine returns the actor's packages, newest first
func (u *PackageUsecase) ListMine(ctx context.Context, accountID uuid.UUID, page utils.PaginationParams) ([]*entities.Package, utils.PaginationMeta, error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	items, total, err := u.packageRepo.ListByAccount(ctx, accountID, page)
	if err != nil {
		return nil, utils.PaginationMeta{}, storeError("list packages", err)
	}
	return items, utils.CalculateMeta(total, page), nil
}

// ListAll returns every package (admin)
func (u *PackageUsecase) ListAll(ctx context.Context, page utils.PaginationParams) ([]*entities.Package, utils.PaginationMeta, error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	items, total, err := u.packageRepo.List(ctx, page)
	if err != nil {
		return nil, utils.PaginationMeta{}, storeError("list all packages", err)
	}
	return items, utils.CalculateMeta(total, page), nil
}

// Update applies a partial update. Paid packages keep their content; only
// admins change status.
func (u *PackageUsecase) Update(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID, input *entities.UpdatePackageInput) (*entities.Package, error) {
	var updated *entities.Package
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		pkg, err := u.packageRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if !canAccess(actor, pkg) {
			return domainerrors.ErrNotFound
		}

		contentChange := input.Pickup != nil || input.Delivery != nil || input.Description != nil || input.WeightKg != nil
		if contentChange && pkg.IsPaid() {
			return domainerrors.ErrPackageLocked
		}
		if input.Status != "" && input.Status != pkg.Status {
			if actor.Role != entities.RoleAdmin {
				return domainerrors.ErrForbidden
			}
			if !input.Status.Valid() {
				return domainerrors.ErrInvalidInput
			}
			pkg.Status = input.Status
		}

		if input.Pickup != nil {
			pkg.Pickup = trimAddress(*input.Pickup)
		}
		if input.Delivery != nil {
			pkg.Delivery = trimAddress(*input.Delivery)
		}
		if input.Description != nil {
			pkg.Description = strings.TrimSpace(*input.Description)
		}
		if input.WeightKg != nil {
			if *input.WeightKg <= 0 {
				return domainerrors.ErrInvalidInput
			}
			pkg.WeightKg = *input.WeightKg
		}

		if err := u.packageRepo.Update(txCtx, pkg); err != nil {
			return err
		}
		updated = pkg
		return nil
	})
	if err != nil {
		return nil, storeError("update package", err)
	}
	return updated, nil
}

// Delete soft-deletes an unpaid package
func (u *PackageUsecase) Delete(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		pkg, err := u.packageRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if !canAccess(actor, pkg) {
			return domainerrors.ErrNotFound
		}
		if pkg.IsPaid() {
			return domainerrors.ErrPackageLocked
		}
		return u.packageRepo.SoftDelete(txCtx, id)
	})
	if err != nil {
		return storeError("delete package", err)
	}
	logger.Info(ctx, "package deleted", zap.String("package_id", id.String()))
	return nil
}

// other accounts' packages are reported as missing rather than forbidden
func canAccess(actor *entities.SessionClaims, pkg *entities.Package) bool {
	if actor == nil {
		return false
	}
	return actor.Role == entities.RoleAdmin || pkg.AccountID == actor.AccountID
}

func trimAddress(a entities.Address) entities.Address {
	return entities.Address{
		Address:       strings.TrimSpace(a.Address),
		ContactNumber: strings.TrimSpace(a.ContactNumber),
		Country:       strings.TrimSpace(a.Country),
		State:         strings.TrimSpace(a.State),
		City:          strings.TrimSpace(a.City),
	}
}
