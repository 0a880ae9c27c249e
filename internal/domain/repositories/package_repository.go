package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	"parcelhub.backend/pkg/utils"
)

// PackageRepository defines package data operations
type PackageRepository interface {
	Create(ctx context.Context, pkg *entities.Package) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Package, error)
	GetByPaymentReference(ctx context.Context, reference string) (*entities.Package, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, page utils.PaginationParams) ([]*entities.Package, int64, error)
	List(ctx context.Context, page utils.PaginationParams) ([]*entities.Package, int64, error)
	Update(ctx context.Context, pkg *entities.Package) error
	SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error
	// MarkPaid flips an unpaid package to paid and records the settling
	// reference; ErrNotFound when the package is missing or already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
