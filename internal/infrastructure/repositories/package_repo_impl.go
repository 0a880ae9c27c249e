package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/infrastructure/models"
	"parcelhub.backend/pkg/utils"
)

// PackageRepository implements package data operations
type PackageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *entities.Package) error {
	if pkg.ID == uuid.Nil {
		pkg.ID = utils.GenerateUUIDv7()
	}
	now := r.now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	if err := scoped(ctx, r.db).Create(r.toModel(pkg)).Error; err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Package, error) {
	var m models.Package
	if err := scoped(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapDBError(err)
	}
	return r.toEntity(&m), nil
}

func (r *PackageRepository) GetByPaymentReference(ctx context.Context, reference string) (*entities.Package, error) {
	if reference == "" {
		return nil, domainerrors.ErrNotFound
	}
	var m models.Package
	if err := scoped(ctx, r.db).Where("payment_reference = ?", reference).First(&m).Error; err != nil {
		return nil, mapDBError(err)
	}
	return r.toEntity(&m), nil
}

// CountByAccount counts packages ever created by the account, including deleted ones
func (r *PackageRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Unscoped().Model(&models.Package{}).
		Where("account_id = ?", accountID).Count(&count).Error
	return count, mapDBError(err)
}

func (r *PackageRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page utils.PaginationParams) ([]*entities.Package, int64, error) {
	return r.list(scoped(ctx, r.db).Model(&models.Package{}).Where("account_id = ?", accountID), page)
}

func (r *PackageRepository) List(ctx context.Context, page utils.PaginationParams) ([]*entities.Package, int64, error) {
	return r.list(scoped(ctx, r.db).Model(&models.Package{}), page)
}

func (r *PackageRepository) list(query *gorm.DB, page utils.PaginationParams) ([]*entities.Package, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, mapDBError(err)
	}

	var rows []models.Package
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, mapDBError(err)
	}

	pkgs := make([]*entities.Package, 0, len(rows))
	for i := range rows {
		pkgs = append(pkgs, r.toEntity(&rows[i]))
	}
	return pkgs, total, nil
}

// Update writes the editable columns of an unpaid package; status is writable regardless
func (r *PackageRepository) Update(ctx context.Context, pkg *entities.Package) error {
	m := r.toModel(pkg)
	result := scoped(ctx, r.db).Model(&models.Package{}).Where("id = ?", pkg.ID).Updates(map[string]interface{}{
		"pickup_address":          m.PickupAddress,
		"pickup_contact_number":   m.PickupContactNumber,
		"pickup_country":          m.PickupCountry,
		"pickup_state":            m.PickupState,
		"pickup_city":             m.PickupCity,
		"delivery_address":        m.DeliveryAddress,
		"delivery_contact_number": m.DeliveryContactNumber,
		"delivery_country":        m.DeliveryCountry,
		"delivery_state":          m.DeliveryState,
		"delivery_city":           m.DeliveryCity,
		"description":             m.Description,
		"weight_kg":               m.WeightKg,
		"status":                  m.Status,
		"updated_at":              r.now(),
	})
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetPaymentReference records the gateway reference of an unpaid package
func (r *PackageRepository) SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	result := scoped(ctx, r.db).Model(&models.Package{}).
		Where("id = ? AND payment_status = ?", id, string(entities.PaymentStatusUnpaid)).
		Updates(map[string]interface{}{
			"payment_reference": reference,
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PackageRepository) MarkPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) error {
	result := scoped(ctx, r.db).Model(&models.Package{}).
		Where("id = ? AND payment_status = ?", id, string(entities.PaymentStatusUnpaid)).
		Updates(map[string]interface{}{
			"payment_status":    string(entities.PaymentStatusPaid),
			"payment_reference": reference,
			"paid_at":        paidAt.UTC(),
			"updated_at":     r.now(),
		})
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PackageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := scoped(ctx, r.db).Delete(&models.Package{}, "id = ?", id)
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PackageRepository) toModel(p *entities.Package) *models.Package {
	return &models.Package{
		ID:                    p.ID,
		Code:                  p.Code,
		AccountID:             p.AccountID,
		PickupAddress:         p.Pickup.Address,
		PickupContactNumber:   p.Pickup.ContactNumber,
		PickupCountry:         p.Pickup.Country,
		PickupState:           p.Pickup.State,
		PickupCity:            p.Pickup.City,
		DeliveryAddress:       p.Delivery.Address,
		DeliveryContactNumber: p.Delivery.ContactNumber,
		DeliveryCountry:       p.Delivery.Country,
		DeliveryState:         p.Delivery.State,
		DeliveryCity:          p.Delivery.City,
		Description:           p.Description,
		WeightKg:              p.WeightKg,
		HasPackageDiscount:    p.HasPackageDiscount,
		Price:                 p.Price,
		Status:                string(p.Status),
		PaymentStatus:         string(p.PaymentStatus),
		PaymentReference:      p.PaymentReference.Ptr(),
		PaidAt:                utcPtr(p.PaidAt.Ptr()),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (r *PackageRepository) toEntity(m *models.Package) *entities.Package {
	return &entities.Package{
		ID:        m.ID,
		Code:      m.Code,
		AccountID: m.AccountID,
		Pickup: entities.Address{
			Address:       m.PickupAddress,
			ContactNumber: m.PickupContactNumber,
			Country:       m.PickupCountry,
			State:         m.PickupState,
			City:          m.PickupCity,
		},
		Delivery: entities.Address{
			Address:       m.DeliveryAddress,
			ContactNumber: m.DeliveryContactNumber,
			Country:       m.DeliveryCountry,
			State:         m.DeliveryState,
			City:          m.DeliveryCity,
		},
		Description:        m.Description,
		WeightKg:           m.WeightKg,
		HasPackageDiscount: m.HasPackageDiscount,
		Price:              m.Price,
		Status:             entities.PackageStatus(m.Status),
		PaymentStatus:      entities.PaymentStatus(m.PaymentStatus),
		PaymentReference:   null.StringFromPtr(m.PaymentReference),
		PaidAt:             null.TimeFromPtr(m.PaidAt),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
