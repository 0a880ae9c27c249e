package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	"parcelhub.backend/pkg/utils"
)

// AccountRepository is the credential store. Every lookup returns
// errors.ErrNotFound on a miss; every mutation bumps updated_at.
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)

	// Matches only while the stored expiry is in the future.
	GetByVerificationTokenHash(ctx context.Context, hash string) (*entities.Account, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*entities.Account, error)
	// Match on hash alone so callers can tell expired links from unknown ones.
	GetByVerificationTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error)
	GetByResetTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error)

	SetVerificationToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	// MarkVerified succeeds only while tokenHash is still the stored
	// verification hash and the account is unverified.
	MarkVerified(ctx context.Context, id uuid.UUID, tokenHash string) error
	// ForceVerify marks an account verified without a token (admin action).
	ForceVerify(ctx context.Context, id uuid.UUID) error
	// ConsumeResetToken replaces the password hash and clears the reset
	// fields in one conditional update; ErrNotFound if the token no longer
	// matches or has expired.
	ConsumeResetToken(ctx context.Context, id uuid.UUID, tokenHash, newPasswordHash string, now time.Time) error
	// UpdatePassword replaces the hash and drops any outstanding reset token.
	UpdatePassword(ctx context.Context, id uuid.UUID, newHash string) error
	UpdateProfile(ctx context.Context, account *entities.Account) error
	UpdateRole(ctx context.Context, email string, role entities.Role) error

	List(ctx context.Context, search string, page utils.PaginationParams) ([]*entities.Account, int64, error)
	// ClearStaleTokens nulls verification and reset fields that expired before cutoff.
	ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
