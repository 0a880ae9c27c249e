package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/infrastructure/models"
	"parcelhub.backend/pkg/utils"
)

// AccountRepository implements the credential store on GORM
type AccountRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new account. Unique indexes back up the caller's pre-checks.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	if account.ID == uuid.Nil {
		account.ID = utils.GenerateUUIDv7()
	}
	now := r.now()
	account.Email = entities.NormalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Role == "" {
		account.Role = entities.RoleUser
	}

	m := r.toModel(account)
	if err := scoped(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.duplicateCause(ctx, account)
		}
		return mapDBError(err)
	}
	return nil
}

func (r *AccountRepository) duplicateCause(ctx context.Context, account *entities.Account) error {
	if _, err := r.GetByEmail(ctx, account.Email); err == nil {
		return domainerrors.ErrDuplicateEmail
	}
	return domainerrors.ErrDuplicateUsername
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.first(ctx, "email = ?", entities.NormalizeEmail(email))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *AccountRepository) GetByVerificationTokenHash(ctx context.Context, hash string) (*entities.Account, error) {
	return r.byTokenHash(ctx, "verification", hash, true)
}

func (r *AccountRepository) GetByVerificationTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error) {
	return r.byTokenHash(ctx, "verification", hash, false)
}

func (r *AccountRepository) GetByResetTokenHash(ctx context.Context, hash string) (*entities.Account, error) {
	return r.byTokenHash(ctx, "reset", hash, true)
}

func (r *AccountRepository) GetByResetTokenHashIgnoringExpiry(ctx context.Context, hash string) (*entities.Account, error) {
	return r.byTokenHash(ctx, "reset", hash, false)
}

// byTokenHash looks up <kind>_token_hash, optionally requiring <kind>_expires_at in the future
func (r *AccountRepository) byTokenHash(ctx context.Context, kind, hash string, unexpired bool) (*entities.Account, error) {
	if hash == "" {
		return nil, domainerrors.ErrNotFound
	}
	if !unexpired {
		return r.first(ctx, kind+"_token_hash = ?", hash)
	}
	return r.first(ctx, kind+"_token_hash = ? AND "+kind+"_expires_at > ?", hash, r.now())
}

func (r *AccountRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Account, error) {
	var m models.Account
	if err := scoped(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		return nil, mapDBError(err)
	}
	return r.toEntity(&m), nil
}

// SetVerificationToken overwrites any previous verification token
func (r *AccountRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	return r.update(ctx, "id = ?", []interface{}{id}, map[string]interface{}{
		"verification_token_hash": hash,
		"verification_expires_at": expiresAt.UTC(),
	})
}

// SetResetToken overwrites any previous reset token
func (r *AccountRepository) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	return r.update(ctx, "id = ?", []interface{}{id}, map[string]interface{}{
		"reset_token_hash": hash,
		"reset_expires_at": expiresAt.UTC(),
	})
}

func (r *AccountRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "id = ?", []interface{}{id}, map[string]interface{}{
		"reset_token_hash": nil,
		"reset_expires_at": nil,
	})
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id uuid.UUID, tokenHash string) error {
	return r.update(ctx,
		"id = ? AND verification_token_hash = ? AND is_verified = ?",
		[]interface{}{id, tokenHash, false},
		verifiedColumns(),
	)
}

func (r *AccountRepository) ForceVerify(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "id = ?", []interface{}{id}, verifiedColumns())
}

func verifiedColumns() map[string]interface{} {
	return map[string]interface{}{
		"is_verified":             true,
		"verification_token_hash": nil,
		"verification_expires_at": nil,
	}
}

func (r *AccountRepository) ConsumeResetToken(ctx context.Context, id uuid.UUID, tokenHash, newPasswordHash string, now time.Time) error {
	return r.update(ctx,
		"id = ? AND reset_token_hash = ? AND reset_expires_at > ?",
		[]interface{}{id, tokenHash, now.UTC()},
		map[string]interface{}{
			"password_hash":    newPasswordHash,
			"reset_token_hash": nil,
			"reset_expires_at": nil,
		},
	)
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, newHash string) error {
	return r.update(ctx, "id = ?", []interface{}{id}, map[string]interface{}{
		"password_hash":    newHash,
		"reset_token_hash": nil,
		"reset_expires_at": nil,
	})
}

// UpdateProfile writes the editable profile columns only
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *entities.Account) error {
	return r.update(ctx, "id = ?", []interface{}{account.ID}, map[string]interface{}{
		"full_name":         account.FullName,
		"mobile":            account.Mobile,
		"business_name":     account.BusinessName,
		"business_location": account.BusinessLocation,
	})
}

func (r *AccountRepository) UpdateRole(ctx context.Context, email string, role entities.Role) error {
	return r.update(ctx, "email = ?", []interface{}{entities.NormalizeEmail(email)}, map[string]interface{}{
		"role": string(role),
	})
}

// update applies a conditional partial update; zero matched rows is ErrNotFound
func (r *AccountRepository) update(ctx context.Context, where string, args []interface{}, updates map[string]interface{}) error {
	updates["updated_at"] = r.now()
	result := scoped(ctx, r.db).Model(&models.Account{}).Where(where, args...).Updates(updates)
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists accounts with optional search filter
func (r *AccountRepository) List(ctx context.Context, search string, page utils.PaginationParams) ([]*entities.Account, int64, error) {
	query := scoped(ctx, r.db).Model(&models.Account{})
	if search = strings.TrimSpace(search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR email LIKE ? OR LOWER(full_name) LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, mapDBError(err)
	}

	var rows []models.Account
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, mapDBError(err)
	}

	accounts := make([]*entities.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, r.toEntity(&rows[i]))
	}
	return accounts, total, nil
}

// ClearStaleTokens drops verification and reset tokens that expired before cutoff
func (r *AccountRepository) ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	var cleared int64
	cutoff = cutoff.UTC()
	now := r.now()

	res := scoped(ctx, r.db).Model(&models.Account{}).
		Where("verification_token_hash IS NOT NULL AND verification_expires_at < ?", cutoff).
		Updates(map[string]interface{}{
			"verification_token_hash": nil,
			"verification_expires_at": nil,
			"updated_at":              now,
		})
	if res.Error != nil {
		return 0, mapDBError(res.Error)
	}
	cleared += res.RowsAffected

	res = scoped(ctx, r.db).Model(&models.Account{}).
		Where("reset_token_hash IS NOT NULL AND reset_expires_at < ?", cutoff).
		Updates(map[string]interface{}{
			"reset_token_hash": nil,
			"reset_expires_at": nil,
			"updated_at":       now,
		})
	if res.Error != nil {
		return cleared, mapDBError(res.Error)
	}
	return cleared + res.RowsAffected, nil
}

func (r *AccountRepository) toModel(a *entities.Account) *models.Account {
	return &models.Account{
		ID:                    a.ID,
		Username:              a.Username,
		Email:                 a.Email,
		FullName:              a.FullName,
		Mobile:                a.Mobile,
		BusinessName:          a.BusinessName,
		BusinessLocation:      a.BusinessLocation,
		PasswordHash:          a.PasswordHash,
		Role:                  string(a.Role),
		IsVerified:            a.IsVerified,
		VerificationTokenHash: a.VerificationTokenHash.Ptr(),
		VerificationExpiresAt: utcPtr(a.VerificationExpiresAt.Ptr()),
		ResetTokenHash:        a.ResetTokenHash.Ptr(),
		ResetExpiresAt:        utcPtr(a.ResetExpiresAt.Ptr()),
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func (r *AccountRepository) toEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:                    m.ID,
		Username:              m.Username,
		Email:                 m.Email,
		FullName:              m.FullName,
		Mobile:                m.Mobile,
		BusinessName:          m.BusinessName,
		BusinessLocation:      m.BusinessLocation,
		PasswordHash:          m.PasswordHash,
		Role:                  entities.Role(m.Role),
		IsVerified:            m.IsVerified,
		VerificationTokenHash: null.StringFromPtr(m.VerificationTokenHash),
		VerificationExpiresAt: null.TimeFromPtr(m.VerificationExpiresAt),
		ResetTokenHash:        null.StringFromPtr(m.ResetTokenHash),
		ResetExpiresAt:        null.TimeFromPtr(m.ResetExpiresAt),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
