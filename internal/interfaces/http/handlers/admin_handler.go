package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	"parcelhub.backend/internal/interfaces/http/response"
	"parcelhub.backend/pkg/utils"
)

type AdminService interface {
	ListAccounts(ctx context.Context, search string, page utils.PaginationParams) ([]*entities.Profile, utils.PaginationMeta, error)
	VerifyAccount(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	SendTestEmail(ctx context.Context, to string) error
}

// AdminHandler handles admin endpoints
type AdminHandler struct {
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListAccounts lists accounts, optionally filtered by ?search=
// GET /api/v1/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, meta, err := h.adminService.ListAccounts(c.Request.Context(), c.Query("search"), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "users", accounts, meta)
}

// VerifyAccount marks an account verified without the email link
// POST /api/v1/admin/accounts/:id/verify
func (h *AdminHandler) VerifyAccount(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.adminService.VerifyAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Account verified",
		"user":    profile,
	})
}

// SendTestEmail checks mail delivery
// POST /api/v1/admin/test-email
func (h *AdminHandler) SendTestEmail(c *gin.Context) {
	var input entities.EmailInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.adminService.SendTestEmail(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Test email sent to "+input.Email)
}
