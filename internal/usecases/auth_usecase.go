package usecases

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/domain/repositories"
	"parcelhub.backend/pkg/crypto"
	"parcelhub.backend/pkg/jwt"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/metrics"
	redispkg "parcelhub.backend/pkg/redis"
	"parcelhub.backend/pkg/utils"
)

const (
	VerifyEmailPath   = "/api/v1/auth/verify-email/"
	ResetPasswordPath = "/reset-password/"

	defaultVerificationExpiry = 24 * time.Hour
	defaultResetExpiry        = 60 * time.Minute
	defaultDispatchTimeout    = 15 * time.Second

	notifyVerification  = "verification"
	notifyPasswordReset = "password_reset"
	notifyTest          = "test"
)

// Notifier delivers account emails. Links are built by the caller.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, account *entities.Account, link string) error
	SendPasswordResetEmail(ctx context.Context, account *entities.Account, link string) error
	SendTestEmail(ctx context.Context, to string) error
}

// EmailLimiter bounds how often an address may trigger outbound email
type EmailLimiter interface {
	Allow(ctx context.Context, kind, email string) error
}

// AuthConfig holds link and token lifetime settings
type AuthConfig struct {
	AppURL             string
	VerificationExpiry time.Duration
	ResetExpiry        time.Duration
	DispatchTimeout    time.Duration
}

// AuthUsecase handles account lifecycle: signup, signin, email verification
// and password reset.
type AuthUsecase struct {
	accountRepo repositories.AccountRepository
	hasher      crypto.PasswordHasher
	tokens      *crypto.TokenGenerator
	jwtService  *jwt.JWTService
	notifier    Notifier
	limiter     EmailLimiter
	cfg         AuthConfig

	dummyOnce sync.Once
	dummyHash string
	inflight  sync.WaitGroup
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accountRepo repositories.AccountRepository,
	hasher crypto.PasswordHasher,
	tokens *crypto.TokenGenerator,
	jwtService *jwt.JWTService,
	notifier Notifier,
	cfg AuthConfig,
) *AuthUsecase {
	if cfg.VerificationExpiry <= 0 {
		cfg.VerificationExpiry = defaultVerificationExpiry
	}
	if cfg.ResetExpiry <= 0 {
		cfg.ResetExpiry = defaultResetExpiry
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = defaultDispatchTimeout
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	return &AuthUsecase{
		accountRepo: accountRepo,
		hasher:      hasher,
		tokens:      tokens,
		jwtService:  jwtService,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// SetEmailLimiter enables per-address throttling of resend and reset requests
func (u *AuthUsecase) SetEmailLimiter(l EmailLimiter) {
	u.limiter = l
}

// Drain blocks until detached signup notifications have finished
func (u *AuthUsecase) Drain() {
	u.inflight.Wait()
}

// VerificationLink returns the link emailed to confirm an address
func (u *AuthUsecase) VerificationLink(token string) string {
	return u.cfg.AppURL + VerifyEmailPath + token
}

// ResetLink returns the link emailed to reset a password
func (u *AuthUsecase) ResetLink(token string) string {
	return u.cfg.AppURL + ResetPasswordPath + token
}

// Signup registers an unverified account, emails a verification link and
// returns a session for immediate use.
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	email := entities.NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	if _, err := u.accountRepo.GetByEmail(ctx, email); err == nil {
		metrics.RecordAuthEvent("signup", "duplicate")
		return nil, domainerrors.ErrDuplicateEmail
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, u.fail(ctx, "signup", "lookup email", err)
	}
	if _, err := u.accountRepo.GetByUsername(ctx, username); err == nil {
		metrics.RecordAuthEvent("signup", "duplicate")
		return nil, domainerrors.ErrDuplicateUsername
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, u.fail(ctx, "signup", "lookup username", err)
	}

	passwordHash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, u.fail(ctx, "signup", "hash password", err)
	}
	token, err := u.tokens.GenerateOpaqueToken()
	if err != nil {
		return nil, u.fail(ctx, "signup", "generate token", err)
	}

	account := &entities.Account{
		ID:                    utils.GenerateUUIDv7(),
		Username:              username,
		Email:                 email,
		FullName:              strings.TrimSpace(input.FullName),
		Mobile:                strings.TrimSpace(input.Mobile),
		BusinessName:          strings.TrimSpace(input.BusinessName),
		BusinessLocation:      strings.TrimSpace(input.BusinessLocation),
		PasswordHash:          passwordHash,
		Role:                  entities.RoleUser,
		VerificationTokenHash: null.StringFrom(u.tokens.Hash(token)),
		VerificationExpiresAt: null.TimeFrom(u.tokens.ExpiryAt(u.cfg.VerificationExpiry)),
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateEmail) || errors.Is(err, domainerrors.ErrDuplicateUsername) {
			metrics.RecordAuthEvent("signup", "duplicate")
			return nil, err
		}
		return nil, u.fail(ctx, "signup", "create account", err)
	}

	resp, err := u.session(account)
	if err != nil {
		return nil, u.fail(ctx, "signup", "issue session", err)
	}

	u.dispatchVerification(ctx, account, u.VerificationLink(token))
	metrics.RecordAuthEvent("signup", "success")
	logger.Info(ctx, "account created", zap.String("account_id", account.ID.String()))
	return resp, nil
}

// dispatchVerification sends the signup email outside the request lifetime.
// Failures are logged and counted only.
func (u *AuthUsecase) dispatchVerification(ctx context.Context, account *entities.Account, link string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.cfg.DispatchTimeout)
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		defer cancel()
		err := u.notifier.SendVerificationEmail(dctx, account, link)
		metrics.RecordNotification(notifyVerification, err)
		if err != nil {
			logger.Error(dctx, "verification email dispatch failed",
				zap.String("account_id", account.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Signin authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (u *AuthUsecase) Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error) {
	account, err := u.accountRepo.GetByEmail(ctx, entities.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			// keep the response time close to that of a real comparison
			u.hasher.Verify(input.Password, u.dummyPasswordHash())
			metrics.RecordAuthEvent("signin", "invalid_credentials")
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, u.fail(ctx, "signin", "lookup email", err)
	}

	if !u.hasher.Verify(input.Password, account.PasswordHash) {
		metrics.RecordAuthEvent("signin", "invalid_credentials")
		return nil, domainerrors.ErrInvalidCredentials
	}

	resp, err := u.session(account)
	if err != nil {
		return nil, u.fail(ctx, "signin", "issue session", err)
	}
	metrics.RecordAuthEvent("signin", "success")
	return resp, nil
}

func (u *AuthUsecase) dummyPasswordHash() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("parcelhub-dummy-password")
		if err == nil {
			u.dummyHash = h
		}
	})
	return u.dummyHash
}

// GetProfile returns the public view of an account
func (u *AuthUsecase) GetProfile(ctx context.Context, accountID uuid.UUID) (*entities.Profile, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, u.fail(ctx, "get profile", "lookup account", err)
	}
	return account.Profile(), nil
}

// UpdateProfile applies the non-empty fields of input
func (u *AuthUsecase) UpdateProfile(ctx context.Context, accountID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Profile, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, u.fail(ctx, "update profile", "lookup account", err)
	}

	if v := strings.TrimSpace(input.FullName); v != "" {
		account.FullName = v
	}
	if v := strings.TrimSpace(input.Mobile); v != "" {
		account.Mobile = v
	}
	if v := strings.TrimSpace(input.BusinessName); v != "" {
		account.BusinessName = v
	}
	if v := strings.TrimSpace(input.BusinessLocation); v != "" {
		account.BusinessLocation = v
	}

	if err := u.accountRepo.UpdateProfile(ctx, account); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, u.fail(ctx, "update profile", "save account", err)
	}
	return account.Profile(), nil
}

// ChangePassword replaces the password of a signed-in account after checking the current one
func (u *AuthUsecase) ChangePassword(ctx context.Context, accountID uuid.UUID, input *entities.ChangePasswordInput) error {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrNotFound
		}
		return u.fail(ctx, "change password", "lookup account", err)
	}
	if !u.hasher.Verify(input.CurrentPassword, account.PasswordHash) {
		metrics.RecordAuthEvent("change_password", "invalid_credentials")
		return domainerrors.ErrInvalidCredentials
	}

	newHash, err := u.hasher.Hash(input.NewPassword)
	if err != nil {
		return u.fail(ctx, "change password", "hash password", err)
	}
	if err := u.accountRepo.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return u.fail(ctx, "change password", "save password", err)
	}
	metrics.RecordAuthEvent("change_password", "success")
	return nil
}

// VerifyEmail consumes a verification token
func (u *AuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainerrors.ErrInvalidLink
	}
	hash := u.tokens.Hash(token)

	account, err := u.accountRepo.GetByVerificationTokenHashIgnoringExpiry(ctx, hash)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordAuthEvent("verify_email", "invalid_link")
			return domainerrors.ErrInvalidLink
		}
		return u.fail(ctx, "verify email", "lookup token", err)
	}
	if u.expired(account.VerificationExpiresAt) {
		metrics.RecordAuthEvent("verify_email", "expired")
		return domainerrors.ErrTokenExpired
	}

	if err := u.accountRepo.MarkVerified(ctx, account.ID, hash); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordAuthEvent("verify_email", "invalid_link")
			return domainerrors.ErrInvalidLink
		}
		return u.fail(ctx, "verify email", "mark verified", err)
	}
	metrics.RecordAuthEvent("verify_email", "success")
	logger.Info(ctx, "email verified", zap.String("account_id", account.ID.String()))
	return nil
}

// ResendVerification replaces any outstanding verification token and emails a new link
func (u *AuthUsecase) ResendVerification(ctx context.Context, email string) error {
	account, err := u.accountRepo.GetByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrNotFound
		}
		return u.fail(ctx, "resend verification", "lookup email", err)
	}
	if account.IsVerified {
		return domainerrors.ErrAlreadyVerified
	}
	if !u.allowEmail(ctx, notifyVerification, account.Email) {
		metrics.RecordAuthEvent("resend_verification", "rate_limited")
		return domainerrors.ErrRateLimited
	}

	token, err := u.tokens.GenerateOpaqueToken()
	if err != nil {
		return u.fail(ctx, "resend verification", "generate token", err)
	}
	expiresAt := u.tokens.ExpiryAt(u.cfg.VerificationExpiry)
	if err := u.accountRepo.SetVerificationToken(ctx, account.ID, u.tokens.Hash(token), expiresAt); err != nil {
		return u.fail(ctx, "resend verification", "store token", err)
	}

	dctx, cancel := context.WithTimeout(ctx, u.cfg.DispatchTimeout)
	defer cancel()
	err = u.notifier.SendVerificationEmail(dctx, account, u.VerificationLink(token))
	metrics.RecordNotification(notifyVerification, err)
	if err != nil {
		return u.fail(ctx, "resend verification", "dispatch email", err)
	}
	metrics.RecordAuthEvent("resend_verification", "success")
	return nil
}

// ForgotPassword emails a reset link when the address belongs to an account.
// The outcome is identical whether or not it does.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	account, err := u.accountRepo.GetByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordAuthEvent("forgot_password", "unknown_email")
			return nil
		}
		return u.fail(ctx, "forgot password", "lookup email", err)
	}
	if !u.allowEmail(ctx, notifyPasswordReset, account.Email) {
		metrics.RecordAuthEvent("forgot_password", "rate_limited")
		return nil
	}

	token, err := u.tokens.GenerateOpaqueToken()
	if err != nil {
		return u.fail(ctx, "forgot password", "generate token", err)
	}
	expiresAt := u.tokens.ExpiryAt(u.cfg.ResetExpiry)
	if err := u.accountRepo.SetResetToken(ctx, account.ID, u.tokens.Hash(token), expiresAt); err != nil {
		return u.fail(ctx, "forgot password", "store token", err)
	}

	dctx, cancel := context.WithTimeout(ctx, u.cfg.DispatchTimeout)
	defer cancel()
	err = u.notifier.SendPasswordResetEmail(dctx, account, u.ResetLink(token))
	metrics.RecordNotification(notifyPasswordReset, err)
	if err != nil {
		// a link that never arrived must not stay redeemable
		if clearErr := u.accountRepo.ClearResetToken(context.WithoutCancel(ctx), account.ID); clearErr != nil {
			logger.Warn(ctx, "failed to clear undelivered reset token",
				zap.String("account_id", account.ID.String()),
				zap.Error(clearErr),
			)
		}
		return u.fail(ctx, "forgot password", "dispatch email", err)
	}
	metrics.RecordAuthEvent("forgot_password", "success")
	return nil
}

// ValidateResetToken reports the email a reset token belongs to
func (u *AuthUsecase) ValidateResetToken(ctx context.Context, token string) (string, error) {
	account, _, err := u.resolveResetToken(ctx, "validate reset token", token)
	if err != nil {
		return "", err
	}
	return account.Email, nil
}

// ResetPassword sets a new password and consumes the reset token. Concurrent
// uses of the same token have a single winner.
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	account, hash, err := u.resolveResetToken(ctx, "reset password", token)
	if err != nil {
		return err
	}

	newHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return u.fail(ctx, "reset password", "hash password", err)
	}
	if err := u.accountRepo.ConsumeResetToken(ctx, account.ID, hash, newHash, u.tokens.Now()); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordAuthEvent("reset_password", "invalid_link")
			return domainerrors.ErrInvalidLink
		}
		return u.fail(ctx, "reset password", "consume token", err)
	}
	metrics.RecordAuthEvent("reset_password", "success")
	logger.Info(ctx, "password reset", zap.String("account_id", account.ID.String()))
	return nil
}

func (u *AuthUsecase) resolveResetToken(ctx context.Context, op, token string) (*entities.Account, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", domainerrors.ErrInvalidLink
	}
	hash := u.tokens.Hash(token)
	outcome := strings.ReplaceAll(op, " ", "_")

	account, err := u.accountRepo.GetByResetTokenHashIgnoringExpiry(ctx, hash)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordAuthEvent(outcome, "invalid_link")
			return nil, "", domainerrors.ErrInvalidLink
		}
		return nil, "", u.fail(ctx, op, "lookup token", err)
	}
	if u.expired(account.ResetExpiresAt) {
		metrics.RecordAuthEvent(outcome, "expired")
		return nil, "", domainerrors.ErrTokenExpired
	}
	return account, hash, nil
}

// Authenticate verifies a session token and returns its identity claims
func (u *AuthUsecase) Authenticate(token string) (*entities.SessionClaims, error) {
	claims, err := u.jwtService.Verify(token)
	if err != nil {
		return nil, sessionError(err)
	}
	session := &entities.SessionClaims{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Username:  claims.Username,
		Role:      entities.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SessionExpiry reports when a session token lapses
func (u *AuthUsecase) SessionExpiry(token string) (*entities.SessionExpiry, error) {
	expiresAt, err := u.jwtService.ExpiresAt(token)
	if err != nil {
		return nil, sessionError(err)
	}
	remaining := int64(time.Until(expiresAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &entities.SessionExpiry{ExpiresAt: expiresAt, RemainingSeconds: remaining}, nil
}

func sessionError(err error) error {
	if errors.Is(err, jwt.ErrExpiredToken) {
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeTokenExpired, "Session expired, please sign in again", domainerrors.ErrUnauthorized)
	}
	return domainerrors.Unauthorized("Invalid session token")
}

func (u *AuthUsecase) session(account *entities.Account) (*entities.AuthResponse, error) {
	token, expiresAt, err := u.jwtService.Issue(account.ID, account.Email, account.Username, string(account.Role))
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account.Profile(),
	}, nil
}

func (u *AuthUsecase) expired(expiresAt null.Time) bool {
	return !expiresAt.Valid || u.tokens.IsExpired(expiresAt.Time)
}

// allowEmail fails open when the limiter store is unreachable
func (u *AuthUsecase) allowEmail(ctx context.Context, kind, email string) bool {
	if u.limiter == nil {
		return true
	}
	err := u.limiter.Allow(ctx, kind, email)
	switch {
	case err == nil:
		return true
	case errors.Is(err, redispkg.ErrLimitExceeded), errors.Is(err, domainerrors.ErrRateLimited):
		return false
	default:
		logger.Warn(ctx, "email limiter unavailable", zap.String("kind", kind), zap.Error(err))
		return true
	}
}

func (u *AuthUsecase) fail(ctx context.Context, operation, step string, err error) error {
	metrics.RecordAuthEvent(strings.ReplaceAll(operation, " ", "_"), "error")
	wrapped := domainerrors.Infra(operation+": "+step, err)
	logger.Error(ctx, "auth operation failed",
		zap.String("operation", operation),
		zap.String("step", step),
		zap.Error(err),
	)
	return wrapped
}
