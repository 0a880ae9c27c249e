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

type PackageService interface {
	Create(ctx context.Context, accountID uuid.UUID, input *entities.CreatePackageInput) (*entities.Package, error)
	Get(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID) (*entities.Package, error)
	ListMine(ctx context.Context, accountID uuid.UUID, page utils.PaginationParams) ([]*entities.Package, utils.PaginationMeta, error)
	ListAll(ctx context.Context, page utils.PaginationParams) ([]*entities.Package, utils.PaginationMeta, error)
	Update(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID, input *entities.UpdatePackageInput) (*entities.Package, error)
	Delete(ctx context.Context, actor *entities.SessionClaims, id uuid.UUID) error
}

// PackageHandler handles package endpoints
type PackageHandler struct {
	packageService PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packageService PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// CreatePackage creates a package for the signed-in account
// POST /api/v1/packages
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var input entities.CreatePackageInput
	if !bindJSON(c, &input) {
		return
	}

	pkg, err := h.packageService.Create(c.Request.Context(), claims.AccountID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Package created",
		"package": pkg,
	})
}

// ListPackages lists the signed-in account's packages
// GET /api/v1/packages
func (h *PackageHandler) ListPackages(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	items, meta, err := h.packageService.ListMine(c.Request.Context(), claims.AccountID, paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "packages", items, meta)
}

// ListAllPackages lists every package
// GET /api/v1/admin/packages
func (h *PackageHandler) ListAllPackages(c *gin.Context) {
	items, meta, err := h.packageService.ListAll(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "packages", items, meta)
}

// GetPackage returns one package
// GET /api/v1/packages/:id
func (h *PackageHandler) GetPackage(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	pkg, err := h.packageService.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"package": pkg})
}

// UpdatePackage applies a partial update
// PUT /api/v1/packages/:id
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdatePackageInput
	if !bindJSON(c, &input) {
		return
	}

	pkg, err := h.packageService.Update(c.Request.Context(), claims, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Package updated",
		"package": pkg,
	})
}

// DeletePackage soft-deletes an unpaid package
// DELETE /api/v1/packages/:id
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.packageService.Delete(c.Request.Context(), claims, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Package deleted")
}
