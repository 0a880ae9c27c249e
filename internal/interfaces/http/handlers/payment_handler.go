package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/infrastructure/paystack"
	"parcelhub.backend/internal/interfaces/http/response"
)

// maxWebhookBody bounds the payload read from the gateway
const maxWebhookBody = 1 << 20

type PaymentService interface {
	InitiatePayment(ctx context.Context, actor *entities.SessionClaims, packageID uuid.UUID) (*entities.PaymentInitResponse, error)
	VerifyPayment(ctx context.Context, actor *entities.SessionClaims, reference string) (*entities.Package, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// PaymentHandler handles package payment and gateway webhook endpoints
type PaymentHandler struct {
	paymentService PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePayment starts a gateway checkout for a package
// POST /api/v1/packages/:id/pay
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	started, err := h.paymentService.InitiatePayment(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Payment initialized",
		"payment": started,
	})
}

// VerifyPayment reconciles a reference with the gateway
// GET /api/v1/payments/verify?reference=
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	pkg, err := h.paymentService.VerifyPayment(c.Request.Context(), claims, c.Query("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paymentStatus": pkg.PaymentStatus,
		"package":       pkg,
	})
}

// PaystackWebhook receives gateway events. The signature covers the raw
// body, so it is read before any decoding.
// POST /api/v1/webhooks/paystack
func (h *PaymentHandler) PaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Unable to read request body"))
		return
	}

	err = h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusOK)
}
