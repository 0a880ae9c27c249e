package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Role represents account roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the credential-bearing identity. Secret and token fields are
// excluded from JSON so an Account can never leak them when rendered.
type Account struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Mobile           string    `json:"mobile"`
	BusinessName     string    `json:"businessName"`
	BusinessLocation string    `json:"businessLocation"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	IsVerified       bool      `json:"isVerified"`

	VerificationTokenHash null.String `json:"-"`
	VerificationExpiresAt null.Time   `json:"-"`
	ResetTokenHash        null.String `json:"-"`
	ResetExpiresAt        null.Time   `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// PendingVerification reports whether a verification link is outstanding
func (a *Account) PendingVerification() bool {
	return !a.IsVerified && a.VerificationTokenHash.Valid
}

// PasswordResetPending reports whether a reset link is outstanding
func (a *Account) PasswordResetPending() bool {
	return a.ResetTokenHash.Valid
}

// Profile is the outward representation of an account
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Mobile           string    `json:"mobile"`
	BusinessName     string    `json:"businessName"`
	BusinessLocation string    `json:"businessLocation"`
	Role             Role      `json:"role"`
	IsVerified       bool      `json:"isVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Profile returns the public view of the account
func (a *Account) Profile() *Profile {
	if a == nil {
		return nil
	}
	return &Profile{
		ID:               a.ID,
		Username:         a.Username,
		Email:            a.Email,
		FullName:         a.FullName,
		Mobile:           a.Mobile,
		BusinessName:     a.BusinessName,
		BusinessLocation: a.BusinessLocation,
		Role:             a.Role,
		IsVerified:       a.IsVerified,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupInput represents input for account registration
type SignupInput struct {
	Username         string `json:"username" binding:"required,username"`
	Email            string `json:"email" binding:"required,email,max=255"`
	Password         string `json:"password" binding:"required,password"`
	FullName         string `json:"fullName" binding:"required,min=2,max=100"`
	Mobile           string `json:"mobile" binding:"required,mobile"`
	BusinessName     string `json:"businessName" binding:"required,min=2,max=100"`
	BusinessLocation string `json:"businessLocation" binding:"required,min=2,max=200"`
}

// SigninInput represents input for signing in
type SigninInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EmailInput carries a single address (resend verification, forgot password)
type EmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput represents input for completing a password reset
type ResetPasswordInput struct {
	Password        string `json:"password" binding:"required,password"`
	ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
}

// ChangePasswordInput represents input for changing the password of a signed-in account
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// UpdateProfileInput represents editable profile fields; empty fields are left unchanged
type UpdateProfileInput struct {
	FullName         string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Mobile           string `json:"mobile" binding:"omitempty,mobile"`
	BusinessName     string `json:"businessName" binding:"omitempty,min=2,max=100"`
	BusinessLocation string `json:"businessLocation" binding:"omitempty,min=2,max=200"`
}

// AuthResponse is returned by signup and signin
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   *Profile  `json:"user"`
}

// SessionClaims is the identity asserted by a verified session token
type SessionClaims struct {
	AccountID uuid.UUID
	Email     string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// SessionExpiry describes the remaining lifetime of a session token
type SessionExpiry struct {
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds"`
}
