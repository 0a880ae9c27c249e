package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/interfaces/http/middleware"
	"parcelhub.backend/internal/interfaces/http/response"
)

const (
	msgForgotPassword = "If an account exists for that email, a password reset link has been sent"
	msgResendSent     = "Verification email sent"
)

// AuthService is the account lifecycle the auth routes drive
type AuthService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error)
	Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*entities.Profile, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Profile, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, input *entities.ChangePasswordInput) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	SessionExpiry(token string) (*entities.SessionExpiry, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles account registration
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if !bindJSON(c, &input) {
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":   "Account created. Please check your email to verify your account.",
		"token":     resp.Token,
		"expiresAt": resp.ExpiresAt,
		"user":      resp.Account,
	})
}

// Signin handles signing in with email and password
// POST /api/v1/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var input entities.SigninInput
	if !bindJSON(c, &input) {
		return
	}

	resp, err := h.authService.Signin(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":   "Signed in successfully",
		"token":     resp.Token,
		"expiresAt": resp.ExpiresAt,
		"user":      resp.Account,
	})
}

// GetProfile returns the signed-in account
// GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile edits the signed-in account's profile fields
// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), accountID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    profile,
	})
}

// ChangePassword changes the password of the signed-in account
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), accountID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Password changed successfully")
}

// VerifyEmail consumes the link emailed at signup
// GET /api/v1/auth/verify-email/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Email verified successfully")
}

// ResendVerification issues a fresh verification link
// POST /api/v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var input entities.EmailInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, msgResendSent)
}

// ForgotPassword answers identically whether or not the email is registered
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input entities.EmailInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, msgForgotPassword)
}

// ValidateResetToken lets the reset page check a link before showing the form
// GET /api/v1/auth/reset-password/:token
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	email, err := h.authService.ValidateResetToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Reset link is valid",
		"email":   email,
	})
}

// ResetPassword sets a new password through a reset link
// POST /api/v1/auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input entities.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), input.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Password has been reset, you can now sign in")
}

// GetSessionExpiry reports the remaining lifetime of the presented session
// GET /api/v1/auth/session-expiry
func (h *AuthHandler) GetSessionExpiry(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authorization header is required. Use: Bearer <token>"))
		return
	}

	expiry, err := h.authService.SessionExpiry(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, expiry)
}
