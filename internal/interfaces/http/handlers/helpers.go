package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/interfaces/http/middleware"
	"parcelhub.backend/internal/interfaces/http/response"
	"parcelhub.backend/pkg/utils"
)

func paginationFromQuery(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return utils.GetPaginationParams(page, limit)
}

// uuidParam parses a path id, answering 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func requireClaims(c *gin.Context) (*entities.SessionClaims, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return nil, false
	}
	return claims, true
}
