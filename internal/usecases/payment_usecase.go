package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/domain/repositories"
	"parcelhub.backend/internal/infrastructure/paystack"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/metrics"
)

const (
	paymentTypePackage   = "package"
	transactionSucceeded = "success"
)

// PaymentGateway initializes and confirms card payments
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
	VerifySignature(body []byte, signature string) bool
}

// PaymentUsecase settles package prices through the payment gateway
type PaymentUsecase struct {
	packageRepo repositories.PackageRepository
	accountRepo repositories.AccountRepository
	gateway     PaymentGateway
	callbackURL string
	now         func() time.Time
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(
	packageRepo repositories.PackageRepository,
	accountRepo repositories.AccountRepository,
	gateway PaymentGateway,
	callbackURL string,
) *PaymentUsecase {
	return &PaymentUsecase{
		packageRepo: packageRepo,
		accountRepo: accountRepo,
		gateway:     gateway,
		callbackURL: callbackURL,
		now:         time.Now,
	}
}

// InitiatePayment opens a gateway transaction for an unpaid package and
// returns the checkout URL.
func (u *PaymentUsecase) InitiatePayment(ctx context.Context, actor *entities.SessionClaims, packageID uuid.UUID) (*entities.PaymentInitResponse, error) {
	pkg, err := u.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, storeError("initiate payment: lookup package", err)
	}
	if !canAccess(actor, pkg) {
		return nil, domainerrors.ErrNotFound
	}
	if pkg.IsPaid() {
		return nil, domainerrors.ErrAlreadyPaid
	}

	owner, err := u.accountRepo.GetByID(ctx, pkg.AccountID)
	if err != nil {
		return nil, storeError("initiate payment: lookup owner", err)
	}

	suffix, err := generateRandomToken(6)
	if err != nil {
		return nil, domainerrors.Infra("initiate payment: generate reference", err)
	}
	reference := pkg.Code + "-" + suffix

	// the reference must exist before the gateway can report on it
	if err := u.packageRepo.SetPaymentReference(ctx, pkg.ID, reference); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrAlreadyPaid
		}
		return nil, storeError("initiate payment: store reference", err)
	}

	amount := toMinorUnits(pkg.Price)
	resp, err := u.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       owner.Email,
		Amount:      amount,
		Reference:   reference,
		CallbackURL: u.callbackURL,
		Metadata: map[string]string{
			"type":        paymentTypePackage,
			"packageId":   pkg.ID.String(),
			"packageCode": pkg.Code,
		},
	})
	if err != nil {
		metrics.RecordPaymentEvent("initialize", "error")
		return nil, domainerrors.Infra("initiate payment: gateway", err)
	}
	metrics.RecordPaymentEvent("initialize", "success")

	if resp.Reference != "" {
		reference = resp.Reference
	}
	return &entities.PaymentInitResponse{
		PackageID:        pkg.ID,
		Reference:        reference,
		AuthorizationURL: resp.AuthorizationURL,
		AccessCode:       resp.AccessCode,
		Amount:           amount,
	}, nil
}

// HandleWebhook authenticates and applies a gateway event. Events that do not
// concern packages are acknowledged and ignored.
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !u.gateway.VerifySignature(body, signature) {
		metrics.RecordPaymentEvent("", "invalid_signature")
		logger.Warn(ctx, "rejected webhook with invalid signature")
		return domainerrors.ErrInvalidSignature
	}

	ev, err := paystack.ParseEvent(body)
	if err != nil {
		metrics.RecordPaymentEvent("", "malformed")
		return domainerrors.NewError("malformed webhook payload", domainerrors.ErrInvalidInput)
	}

	if ev.Event != paystack.EventChargeSuccess {
		metrics.RecordPaymentEvent(ev.Event, "ignored")
		return nil
	}
	if kind := ev.Data.Metadata["type"]; kind != "" && kind != paymentTypePackage {
		metrics.RecordPaymentEvent(ev.Event, "ignored")
		return nil
	}
	if ev.Data.Status != "" && !strings.EqualFold(ev.Data.Status, transactionSucceeded) {
		metrics.RecordPaymentEvent(ev.Event, "ignored")
		return nil
	}

	outcome, err := u.settle(ctx, &ev.Data)
	metrics.RecordPaymentEvent(ev.Event, outcome)
	return err
}

// VerifyPayment asks the gateway for the state of a reference and settles
// the package if the charge went through.
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, actor *entities.SessionClaims, reference string) (*entities.Package, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domainerrors.NewError("reference is required", domainerrors.ErrInvalidInput)
	}

	pkg, err := u.packageRepo.GetByPaymentReference(ctx, reference)
	if err != nil {
		return nil, storeError("verify payment: lookup package", err)
	}
	if !canAccess(actor, pkg) {
		return nil, domainerrors.ErrNotFound
	}
	if pkg.IsPaid() {
		return pkg, nil
	}

	tx, err := u.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		metrics.RecordPaymentEvent("verify", "error")
		return nil, domainerrors.Infra("verify payment: gateway", err)
	}
	if !strings.EqualFold(tx.Status, transactionSucceeded) {
		metrics.RecordPaymentEvent("verify", "pending")
		return pkg, nil
	}
	if tx.Reference == "" {
		tx.Reference = reference
	}

	outcome, err := u.settle(ctx, tx)
	metrics.RecordPaymentEvent("verify", outcome)
	if err != nil {
		return nil, err
	}
	return u.packageRepo.GetByID(ctx, pkg.ID)
}

func (u *PaymentUsecase) settle(ctx context.Context, tx *paystack.Transaction) (string, error) {
	pkg, err := u.packageForTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "payment for unknown reference", zap.String("reference", tx.Reference))
			return "unknown_reference", nil
		}
		return "error", storeError("settle payment: lookup package", err)
	}
	if pkg.IsPaid() {
		return "duplicate", nil
	}
	if expected := toMinorUnits(pkg.Price); tx.Amount < expected {
		logger.Warn(ctx, "payment amount below package price",
			zap.String("package_id", pkg.ID.String()),
			zap.Int64("amount", tx.Amount),
			zap.Int64("expected", expected),
		)
		return "amount_mismatch", nil
	}

	paidAt := u.now()
	if tx.PaidAt != nil && !tx.PaidAt.IsZero() {
		paidAt = *tx.PaidAt
	}
	if err := u.packageRepo.MarkPaid(ctx, pkg.ID, tx.Reference, paidAt); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "duplicate", nil
		}
		return "error", storeError("settle payment: mark paid", err)
	}

	logger.Info(ctx, "package paid",
		zap.String("package_id", pkg.ID.String()),
		zap.String("reference", tx.Reference),
	)
	return "paid", nil
}

// packageForTransaction resolves the package a charge belongs to. A package
// only stores its latest reference, so a charge made through an earlier
// checkout is matched by the packageId it carried in its metadata.
func (u *PaymentUsecase) packageForTransaction(ctx context.Context, tx *paystack.Transaction) (*entities.Package, error) {
	pkg, err := u.packageRepo.GetByPaymentReference(ctx, tx.Reference)
	if err == nil || !errors.Is(err, domainerrors.ErrNotFound) {
		return pkg, err
	}

	id, parseErr := uuid.Parse(tx.Metadata["packageId"])
	if parseErr != nil {
		return nil, err
	}
	pkg, err = u.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(tx.Reference, pkg.Code+"-") {
		return nil, domainerrors.ErrNotFound
	}
	return pkg, nil
}
